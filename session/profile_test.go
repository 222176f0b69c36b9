package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/copracess/go-mobile-client/internal/utils"
	"github.com/copracess/go-mobile-client/session"
	"github.com/copracess/go-mobile-client/token"
)

func TestMergeProfile(t *testing.T) {
	verified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("backend fields win over claims", func(t *testing.T) {
		p := session.MergeProfile(
			&session.BackendUser{
				ID:    utils.Ptr("backend-id"),
				Email: utils.Ptr("backend@b.com"),
				Role:  utils.Ptr("OIL_MILL_MANAGER"),
			},
			&token.Claims{ID: "claim-id", Email: "claim@b.com", Role: "COPRA_BUYER", Name: "Claim Name"},
		)
		require.Equal(t, "backend-id", p.ID)
		require.Equal(t, "backend@b.com", p.Email)
		require.Equal(t, "OIL_MILL_MANAGER", p.Role)
		require.Equal(t, "Claim Name", p.Name, "claims fill fields the backend omitted")
	})

	t.Run("claims fill every gap", func(t *testing.T) {
		p := session.MergeProfile(nil, &token.Claims{
			ID: "u1", Email: "a@b.com", Name: "Ana", Role: "COPRA_BUYER", OrganizationID: "org-7",
		})
		require.Equal(t, "u1", p.ID)
		require.Equal(t, "a@b.com", p.Email)
		require.Equal(t, "Ana", p.Name)
		require.Equal(t, "COPRA_BUYER", p.Role)
		require.Equal(t, "org-7", p.OrganizationID)
	})

	t.Run("backend-only fields never come from claims", func(t *testing.T) {
		p := session.MergeProfile(
			&session.BackendUser{
				Image:              utils.Ptr("https://cdn/img.png"),
				Position:           utils.Ptr("Manager"),
				EmailVerified:      &verified,
				IsTwoFactorEnabled: utils.Ptr(true),
			},
			&token.Claims{ID: "u1"},
		)
		require.Equal(t, "https://cdn/img.png", p.Image)
		require.Equal(t, "Manager", p.Position)
		require.Equal(t, &verified, p.EmailVerified)
		require.True(t, p.IsTwoFactorEnabled)
	})

	t.Run("isActive defaults to true when omitted", func(t *testing.T) {
		require.True(t, session.MergeProfile(nil, nil).IsActive)
		p := session.MergeProfile(&session.BackendUser{IsActive: utils.Ptr(false)}, nil)
		require.False(t, p.IsActive)
	})
}

func TestWithClaims(t *testing.T) {
	base := session.UserProfile{
		ID: "u1", Email: "a@b.com", Name: "Ana", Role: "COPRA_BUYER",
		OrganizationID: "org-7", Position: "Manager", IsActive: true,
	}

	t.Run("claims override only the fields they carry", func(t *testing.T) {
		p := base.WithClaims(&token.Claims{Role: "OIL_MILL_MANAGER"})
		require.Equal(t, "OIL_MILL_MANAGER", p.Role)
		require.Equal(t, "u1", p.ID)
		require.Equal(t, "Ana", p.Name)
		require.Equal(t, "Manager", p.Position)
	})

	t.Run("nil claims change nothing", func(t *testing.T) {
		require.Equal(t, base, base.WithClaims(nil))
	})
}
