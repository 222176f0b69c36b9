package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/copracess/go-mobile-client/token"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestDecode(t *testing.T) {
	t.Run("full claim set", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		raw := signedToken(t, jwtlib.MapClaims{
			"id":             "u1",
			"email":          "a@b.com",
			"name":           "Ana Reyes",
			"role":           "COPRA_BUYER",
			"organizationId": "org-7",
			"exp":            exp.Unix(),
		})

		c := token.Decode(raw)
		require.NotNil(t, c)
		require.Equal(t, "u1", c.ID)
		require.Equal(t, "a@b.com", c.Email)
		require.Equal(t, "Ana Reyes", c.Name)
		require.Equal(t, "COPRA_BUYER", c.Role)
		require.Equal(t, "org-7", c.OrganizationID)
		require.True(t, c.ExpiresAt.Equal(exp))
	})

	t.Run("sub fills in for missing id", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "u2", "exp": time.Now().Add(time.Hour).Unix()})
		c := token.Decode(raw)
		require.NotNil(t, c)
		require.Equal(t, "u2", c.ID)
	})

	t.Run("non-string claims are ignored", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"id": 42, "exp": time.Now().Add(time.Hour).Unix()})
		c := token.Decode(raw)
		require.NotNil(t, c)
		require.Empty(t, c.ID)
	})

	t.Run("malformed inputs decode to nil", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"not.a.token",
			"onlyonesegment",
			"a.b",
			"!!!.@@@.###",
			"eyJhbGciOiJIUzI1NiJ9.%%%%.sig",
		} {
			require.Nil(t, token.Decode(raw), "input %q", raw)
		}
	})
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	token.NowTimeFunc = func() time.Time { return now }
	defer func() { token.NowTimeFunc = time.Now }()

	const skew = 60 * time.Second

	t.Run("well before expiry", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"exp": now.Add(time.Hour).Unix()})
		require.False(t, token.IsExpired(raw, skew))
	})

	t.Run("expired at exactly now plus skew", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"exp": now.Add(skew).Unix()})
		require.True(t, token.IsExpired(raw, skew))
	})

	t.Run("just outside the skew window", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"exp": now.Add(skew + time.Second).Unix()})
		require.False(t, token.IsExpired(raw, skew))
	})

	t.Run("already past expiry", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"exp": now.Add(-time.Minute).Unix()})
		require.True(t, token.IsExpired(raw, skew))
	})

	t.Run("missing exp claim fails closed", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"id": "u1"})
		require.True(t, token.IsExpired(raw, skew))
	})

	t.Run("malformed token fails closed", func(t *testing.T) {
		require.True(t, token.IsExpired("not.a.token", skew))
	})
}
