package console

import (
	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/rbac"
	"github.com/platinummonkey/warden/pkg/session"
)

// MenuItem is one sidebar entry
type MenuItem struct {
	Label string `json:"label"`
	Route string `json:"route"`

	Requirement rbac.Requirement `json:"-"`
}

var menuItems = []MenuItem{
	{Label: "Dashboard", Route: session.DashboardPath},
	{Label: "Users", Route: "/admin/users", Requirement: rbac.Requirement{Permission: "view_user"}},
	{Label: "Roles", Route: "/admin/roles", Requirement: rbac.Requirement{Permission: "view_role"}},
	{Label: "Permissions", Route: "/admin/permissions", Requirement: rbac.Requirement{Permission: "view_permission"}},
}

// Menu returns the sidebar entries visible to user
func Menu(user *auth.User) []MenuItem {
	if user == nil {
		return []MenuItem{}
	}
	visible := make([]MenuItem, 0, len(menuItems))
	for _, item := range menuItems {
		if item.Requirement.Check(user).Allowed() {
			visible = append(visible, item)
		}
	}
	return visible
}
