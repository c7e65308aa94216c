package session

import "errors"

var (
	// ErrNoRefreshToken is returned by RefreshAccessToken when no refresh token is stored
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrSessionSuperseded means the session changed (for example a logout)
	// while the operation was in flight; its result was discarded
	ErrSessionSuperseded = errors.New("session changed while the request was in flight")

	// ErrRestoreFailed wraps any failure of RestoreSession
	ErrRestoreFailed = errors.New("session restore failed")

	// ErrTokenDue is returned by TokenClock.Arm when the refresh instant has already passed
	ErrTokenDue = errors.New("access token is already due for refresh")

	// ErrInvalidSession is returned when a write would break the session invariant
	ErrInvalidSession = errors.New("invalid session: authenticated must match user and access token presence")

	// ErrNotAuthenticated is returned by the token source when no session is established
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ErrIncompleteResponse is returned when the Directory answers 2xx without the expected tokens or user
var ErrIncompleteResponse = errors.New("incomplete response from directory")
