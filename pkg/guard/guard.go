package guard

import (
	"github.com/platinummonkey/warden/pkg/rbac"
	"github.com/platinummonkey/warden/pkg/session"
)

// Outcome is the result of a guard evaluation
type Outcome int

const (
	// Allow lets the navigation proceed
	Allow Outcome = iota
	// RedirectToLogin sends an anonymous caller to the login page
	RedirectToLogin
	// RedirectToUnauthorized sends a signed-in caller lacking a grant away
	RedirectToUnauthorized
)

// Destination returns the redirect target, or "" for Allow
func (o Outcome) Destination() string {
	switch o {
	case RedirectToLogin:
		return session.LoginPath
	case RedirectToUnauthorized:
		return session.UnauthorizedPath
	}
	return ""
}

// Allowed reports whether the navigation may proceed
func (o Outcome) Allowed() bool {
	return o == Allow
}

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "login"
	case RedirectToUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// SessionSource yields the current session snapshot. *session.Store implements it.
type SessionSource interface {
	Current() session.Session
}

// Evaluate applies req to s: authentication first, then role, then permission
func Evaluate(s session.Session, req rbac.Requirement) Outcome {
	if !s.Authenticated {
		return RedirectToLogin
	}
	if !req.Check(s.User).Allowed() {
		return RedirectToUnauthorized
	}
	return Allow
}

// AuthGuard admits any signed-in caller
type AuthGuard struct {
	sessions SessionSource
}

// NewAuthGuard creates an AuthGuard over sessions
func NewAuthGuard(sessions SessionSource) *AuthGuard {
	return &AuthGuard{sessions: sessions}
}

// CanActivate evaluates the guard for a route
func (g *AuthGuard) CanActivate() Outcome {
	return Evaluate(g.sessions.Current(), rbac.Requirement{})
}

// CanActivateChild evaluates the guard for a child route
func (g *AuthGuard) CanActivateChild() Outcome {
	return g.CanActivate()
}

// PermissionGuard admits signed-in callers meeting a route's requirement
type PermissionGuard struct {
	sessions SessionSource
}

// NewPermissionGuard creates a PermissionGuard over sessions
func NewPermissionGuard(sessions SessionSource) *PermissionGuard {
	return &PermissionGuard{sessions: sessions}
}

// CanActivate evaluates req against the current session
func (g *PermissionGuard) CanActivate(req rbac.Requirement) Outcome {
	return Evaluate(g.sessions.Current(), req)
}

// CanActivateChild evaluates req for a child route
func (g *PermissionGuard) CanActivateChild(req rbac.Requirement) Outcome {
	return g.CanActivate(req)
}
