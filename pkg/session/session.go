package session

import "github.com/platinummonkey/warden/pkg/auth"

// Well-known navigation targets
const (
	LoginPath        = "/auth/login"
	UnauthorizedPath = "/unauthorized"
	DashboardPath    = "/admin/dashboard"
)

// Session is the process-wide authentication state.
// Authenticated is true exactly when User and AccessToken are both present.
type Session struct {
	Authenticated bool       `json:"is_authenticated"`
	User          *auth.User `json:"user"`
	AccessToken   string     `json:"-"`
	RefreshToken  string     `json:"-"`
}

// Empty returns the cleared session
func Empty() Session {
	return Session{}
}

// Established returns an authenticated session for user
func Established(user *auth.User, access, refresh string) Session {
	return Session{
		Authenticated: true,
		User:          user,
		AccessToken:   access,
		RefreshToken:  refresh,
	}
}

// Valid reports whether the session satisfies its invariant
func (s Session) Valid() bool {
	return s.Authenticated == (s.User != nil && s.AccessToken != "")
}

// WithAccessToken returns a copy with only the access token replaced
func (s Session) WithAccessToken(access string) Session {
	s.AccessToken = access
	return s
}

// clone deep-copies the user so snapshots never share role slices
func (s Session) clone() Session {
	s.User = s.User.Clone()
	return s
}
