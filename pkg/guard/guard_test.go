package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/rbac"
	"github.com/platinummonkey/warden/pkg/session"
)

func adminUser() *auth.User {
	return &auth.User{
		ID:       1,
		Username: "admin",
		Roles: []auth.Role{
			{
				Name: "Admin",
				Permissions: []auth.Permission{
					{Codename: "view_user"},
					{Codename: "add_user"},
				},
			},
			{
				Name:        "Auditor",
				Permissions: []auth.Permission{{Codename: "view_role"}},
			},
		},
	}
}

func storeWith(t *testing.T, s session.Session) *session.Store {
	t.Helper()
	store := session.NewStore()
	_, err := store.Replace(s)
	require.NoError(t, err)
	return store
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "", Allow.Destination())
	assert.Equal(t, "/auth/login", RedirectToLogin.Destination())
	assert.Equal(t, "/unauthorized", RedirectToUnauthorized.Destination())

	assert.True(t, Allow.Allowed())
	assert.False(t, RedirectToLogin.Allowed())

	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "login", RedirectToLogin.String())
	assert.Equal(t, "unauthorized", RedirectToUnauthorized.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestEvaluate_UnauthenticatedAlwaysGoesToLogin(t *testing.T) {
	reqs := []rbac.Requirement{
		{},
		{Role: "Admin"},
		{Permission: "view_user"},
		{Role: "Admin", Permission: "view_user"},
		{Role: "Nope", Permission: "nope"},
	}
	for _, req := range reqs {
		t.Run(req.String(), func(t *testing.T) {
			assert.Equal(t, RedirectToLogin, Evaluate(session.Empty(), req))
		})
	}
}

func TestEvaluate_Requirements(t *testing.T) {
	s := session.Established(adminUser(), "access", "refresh")

	tests := []struct {
		name string
		req  rbac.Requirement
		want Outcome
	}{
		{"no requirement", rbac.Requirement{}, Allow},
		{"role held", rbac.Requirement{Role: "Admin"}, Allow},
		{"role missing", rbac.Requirement{Role: "Editor"}, RedirectToUnauthorized},
		{"role case differs", rbac.Requirement{Role: "admin"}, RedirectToUnauthorized},
		{"permission held", rbac.Requirement{Permission: "add_user"}, Allow},
		{"permission from second role", rbac.Requirement{Permission: "view_role"}, Allow},
		{"permission missing", rbac.Requirement{Permission: "delete_user"}, RedirectToUnauthorized},
		{"both held", rbac.Requirement{Role: "Admin", Permission: "view_user"}, Allow},
		{"both held on different roles", rbac.Requirement{Role: "Auditor", Permission: "add_user"}, Allow},
		{"role held permission missing", rbac.Requirement{Role: "Admin", Permission: "delete_user"}, RedirectToUnauthorized},
		{"permission held role missing", rbac.Requirement{Role: "Editor", Permission: "view_user"}, RedirectToUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(s, tt.req))
		})
	}
}

func TestEvaluate_MatchesRBAC(t *testing.T) {
	user := adminUser()
	s := session.Established(user, "access", "refresh")

	for _, role := range []string{"", "Admin", "Auditor", "Editor"} {
		for _, perm := range []string{"", "view_user", "add_user", "view_role", "delete_user"} {
			req := rbac.Requirement{Role: role, Permission: perm}
			want := (role == "" || rbac.HasRole(user, role)) && (perm == "" || rbac.HasPermission(user, perm))
			assert.Equal(t, want, Evaluate(s, req).Allowed(), req.String())
		}
	}
}

func TestAuthGuard(t *testing.T) {
	anon := NewAuthGuard(session.NewStore())
	assert.Equal(t, RedirectToLogin, anon.CanActivate())
	assert.Equal(t, RedirectToLogin, anon.CanActivateChild())

	signedIn := NewAuthGuard(storeWith(t, session.Established(&auth.User{Username: "bob"}, "a", "r")))
	assert.Equal(t, Allow, signedIn.CanActivate())
	assert.Equal(t, Allow, signedIn.CanActivateChild())
}

func TestPermissionGuard(t *testing.T) {
	store := storeWith(t, session.Established(adminUser(), "a", "r"))
	g := NewPermissionGuard(store)

	req := rbac.Requirement{Permission: "view_user"}
	assert.Equal(t, Allow, g.CanActivate(req))
	assert.Equal(t, Allow, g.CanActivateChild(req))

	denied := rbac.Requirement{Permission: "change_user"}
	assert.Equal(t, RedirectToUnauthorized, g.CanActivate(denied))
	assert.Equal(t, RedirectToUnauthorized, g.CanActivateChild(denied))

	// guards read the live store
	_, err := store.Replace(session.Empty())
	require.NoError(t, err)
	assert.Equal(t, RedirectToLogin, g.CanActivate(req))
}
