// Package rbac answers role and permission questions about a user snapshot.
//
// # Overview
//
// Every check is a pure function over an *auth.User: no network, no caching, no
// side effects. A missing user, a user without roles, or a role without
// permissions all produce a negative answer rather than an error.
//
//	rbac.HasRole(user, "Admin")           // any role named exactly "Admin"
//	rbac.HasPermission(user, "view_user") // any role holding codename "view_user"
//
// Names and codenames are compared case-sensitively.
//
// # Requirements
//
// A Requirement bundles an optional role and an optional permission. When both are
// set, both must hold:
//
//	req := rbac.Requirement{Role: "Admin", Permission: "add_user"}
//	switch req.Check(user) {
//	case rbac.DecisionAllow:
//	case rbac.DecisionMissingRole:
//	case rbac.DecisionMissingPermission:
//	}
//
// Navigation guards in pkg/guard turn these decisions into redirects.
package rbac
