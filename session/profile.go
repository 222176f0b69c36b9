package session

import (
	"time"

	"github.com/copracess/go-mobile-client/internal/utils"
	"github.com/copracess/go-mobile-client/token"
)

// UserProfile caches denormalized user attributes alongside the
// tokens. Fields are best-effort: taken from the backend's structured
// user object when present, from decoded token claims otherwise.
type UserProfile struct {
	ID                 string     `json:"id,omitempty"`
	Email              string     `json:"email,omitempty"`
	Name               string     `json:"name,omitempty"`
	Image              string     `json:"image,omitempty"`
	Role               string     `json:"role,omitempty"`
	OrganizationID     string     `json:"organizationId,omitempty"`
	IsActive           bool       `json:"isActive"`
	EmailVerified      *time.Time `json:"emailVerified,omitempty"`
	Position           string     `json:"position,omitempty"`
	IsTwoFactorEnabled bool       `json:"isTwoFactorEnabled"`
}

// BackendUser is the structured user object returned by the login
// endpoint. Every field is optional on the wire.
type BackendUser struct {
	ID                 *string    `json:"id"`
	Email              *string    `json:"email"`
	Name               *string    `json:"name"`
	Image              *string    `json:"image"`
	Role               *string    `json:"role"`
	OrganizationID     *string    `json:"organizationId"`
	IsActive           *bool      `json:"isActive"`
	EmailVerified      *time.Time `json:"emailVerified"`
	Position           *string    `json:"position"`
	IsTwoFactorEnabled *bool      `json:"isTwoFactorEnabled"`
}

// MergeProfile builds the profile cached at login. Precedence is
// field-by-field: the backend's user object wins, decoded token claims
// fill the gaps. Fields only the backend knows (image, position,
// verification state) come from the backend alone; IsActive defaults
// to true when the backend omits it.
func MergeProfile(user *BackendUser, claims *token.Claims) UserProfile {
	if user == nil {
		user = &BackendUser{}
	}
	var c token.Claims
	if claims != nil {
		c = *claims
	}

	p := UserProfile{
		ID:                 utils.First(utils.Value(user.ID), c.ID),
		Email:              utils.First(utils.Value(user.Email), c.Email),
		Name:               utils.First(utils.Value(user.Name), c.Name),
		Image:              utils.Value(user.Image),
		Role:               utils.First(utils.Value(user.Role), c.Role),
		OrganizationID:     utils.First(utils.Value(user.OrganizationID), c.OrganizationID),
		IsActive:           true,
		EmailVerified:      user.EmailVerified,
		Position:           utils.Value(user.Position),
		IsTwoFactorEnabled: utils.Value(user.IsTwoFactorEnabled),
	}
	if user.IsActive != nil {
		p.IsActive = *user.IsActive
	}
	return p
}

// WithClaims returns a copy of p updated from a freshly minted token.
// Claims override only the fields they carry; everything else keeps
// its previous value. Used after a refresh, where the backend returns
// tokens but no user object.
func (p UserProfile) WithClaims(claims *token.Claims) UserProfile {
	if claims == nil {
		return p
	}
	p.ID = utils.First(claims.ID, p.ID)
	p.Email = utils.First(claims.Email, p.Email)
	p.Name = utils.First(claims.Name, p.Name)
	p.Role = utils.First(claims.Role, p.Role)
	p.OrganizationID = utils.First(claims.OrganizationID, p.OrganizationID)
	return p
}
