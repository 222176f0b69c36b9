package api

import (
	"context"
	"net/url"
)

// ProfileUpdate is a partial update to the caller's account. Nil
// fields are left unchanged by the backend.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Image    *string `json:"image,omitempty"`
	Position *string `json:"position,omitempty"`
}

// OrganizationUpdate is a partial update to an organization record.
type OrganizationUpdate struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// UpdateProfile amends the caller's account.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return c.do(ctx, "PUT", "/user", nil, update, nil)
}

// UpdateOrganization amends the given organization.
func (c *Client) UpdateOrganization(ctx context.Context, organizationID string, update OrganizationUpdate) error {
	query := url.Values{"id": {organizationID}}
	return c.do(ctx, "PUT", "/organizations", query, update, nil)
}

// ChangePassword rotates the caller's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.do(ctx, "POST", "/change-password", nil, body, nil)
}
