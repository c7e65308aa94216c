// Package auth defines the identity model shared by the warden client: users,
// roles, permissions and the claims carried inside access tokens.
//
// # Overview
//
// Values in this package are snapshots of what the Directory returned at login,
// refresh or profile fetch time. A Role owns its permissions by value, so a
// permission changed on the server does not alter a role held in memory until the
// user is fetched again.
//
//	user := &auth.User{
//		Username: "admin",
//		Roles: []auth.Role{{
//			Name:        "Admin",
//			Permissions: []auth.Permission{{Codename: "view_user"}},
//		}},
//	}
//
// # Tokens
//
// Access and refresh tokens are opaque, server-issued strings. The only thing the
// client reads from an access token is its expiry, used to schedule a silent
// refresh:
//
//	claims, err := auth.ParseClaims(accessToken)
//	if err != nil {
//		return err
//	}
//	refreshAt := claims.ExpiresAtTime().Add(-time.Minute)
//
// Signatures are never verified here; the Directory is the authority.
//
// # Related Packages
//
//   - pkg/rbac: role and permission checks over a User
//   - pkg/session: session lifecycle built on these types
//   - pkg/directory: REST client producing these types
package auth
