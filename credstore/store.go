// Package credstore persists the session's credentials across app
// restarts: the access token, the refresh token, and the cached user
// profile, each stored as an opaque string under its own key.
package credstore

// Keys under which the session's three persisted values live.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
	UserDataKey     = "userData"
)

// Store is a secure key-value store for credential material. Get
// returns an empty string (and no error) for a key that has never been
// set; errors are reserved for I/O or decryption failures. Delete is
// idempotent.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
