// Package directory is the HTTP client for the remote identity service.
//
// The token endpoints (login, refresh, logout) are called without
// credentials. Catalog endpoints (users, roles, permissions) attach the bearer
// token taken from an oauth2.TokenSource on every request, so a token renewed
// by the session manager is used from the next call on.
//
// Non-2xx responses are returned as *APIError; transport failures wrap
// ErrUnreachable.
package directory
