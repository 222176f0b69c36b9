package session

// State identifies where the session is in its lifecycle.
type State int

const (
	// StateUninitialized means the persisted store has not been
	// consulted yet; the session's authenticated flag is still unknown.
	StateUninitialized State = iota
	StateAnonymous
	StateAuthenticated
	// StateRefreshing is a sub-state of authenticated, entered only
	// while a token refresh is in flight.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateAnonymous:
		return "ANONYMOUS"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateRefreshing:
		return "REFRESHING"
	}
	return "UNKNOWN"
}

// Session is a point-in-time snapshot of the authentication state.
// Authenticated is nil until Initialize has consulted the persisted
// store once, matching the tri-state the UI needs to distinguish
// "still loading" from "signed out".
type Session struct {
	AccessToken   string
	RefreshToken  string
	Authenticated *bool
	Profile       UserProfile
}
