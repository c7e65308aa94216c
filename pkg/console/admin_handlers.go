package console

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/rbac"
)

// statsPageSize is large enough to count every entry of a small directory in one page
const statsPageSize = 1000

// DashboardStats summarises the directory
type DashboardStats struct {
	TotalUsers       int `json:"total_users"`
	ActiveUsers      int `json:"active_users"`
	TotalRoles       int `json:"total_roles"`
	TotalPermissions int `json:"total_permissions"`
}

func (s *Server) registerAdminRoutes() {
	r := s.router
	g := s.registry
	none := rbac.Requirement{}
	perm := func(codename string) rbac.Requirement { return rbac.Requirement{Permission: codename} }

	g.HandleFunc(r, "admin.dashboard", "/admin/dashboard", none, s.dashboard).Methods(http.MethodGet)
	g.HandleFunc(r, "admin.menu", "/admin/menu", none, s.menu).Methods(http.MethodGet)

	// Users
	g.HandleFunc(r, "users.list", "/admin/users", perm("view_user"), s.listUsers).Methods(http.MethodGet)
	g.HandleFunc(r, "users.create", "/admin/users", perm("add_user"), s.createUser).Methods(http.MethodPost)
	g.HandleFunc(r, "users.get", "/admin/users/{id:[0-9]+}", perm("change_user"), s.getUser).Methods(http.MethodGet)
	g.HandleFunc(r, "users.update", "/admin/users/{id:[0-9]+}", perm("change_user"), s.updateUser).Methods(http.MethodPatch)
	g.HandleFunc(r, "users.delete", "/admin/users/{id:[0-9]+}", perm("delete_user"), s.deleteUser).Methods(http.MethodDelete)
	g.HandleFunc(r, "users.activate", "/admin/users/{id:[0-9]+}/activate", perm("change_user"), s.activateUser).Methods(http.MethodPost)
	g.HandleFunc(r, "users.deactivate", "/admin/users/{id:[0-9]+}/deactivate", perm("change_user"), s.deactivateUser).Methods(http.MethodPost)

	// Roles
	g.HandleFunc(r, "roles.list", "/admin/roles", perm("view_role"), s.listRoles).Methods(http.MethodGet)
	g.HandleFunc(r, "roles.create", "/admin/roles", perm("add_role"), s.createRole).Methods(http.MethodPost)
	g.HandleFunc(r, "roles.get", "/admin/roles/{id:[0-9]+}", perm("change_role"), s.getRole).Methods(http.MethodGet)
	g.HandleFunc(r, "roles.update", "/admin/roles/{id:[0-9]+}", perm("change_role"), s.updateRole).Methods(http.MethodPatch)
	g.HandleFunc(r, "roles.delete", "/admin/roles/{id:[0-9]+}", perm("delete_role"), s.deleteRole).Methods(http.MethodDelete)
	g.HandleFunc(r, "roles.permissions", "/admin/roles/{id:[0-9]+}/permissions", perm("view_role"), s.rolePermissions).Methods(http.MethodGet)
	g.HandleFunc(r, "roles.permissions.assign", "/admin/roles/{id:[0-9]+}/permissions", perm("change_role"), s.assignPermissions).Methods(http.MethodPost)
	g.HandleFunc(r, "roles.permissions.remove", "/admin/roles/{id:[0-9]+}/permissions", perm("change_role"), s.removePermissions).Methods(http.MethodDelete)

	// Permissions
	g.HandleFunc(r, "permissions.list", "/admin/permissions", perm("view_permission"), s.listPermissions).Methods(http.MethodGet)
	g.HandleFunc(r, "permissions.create", "/admin/permissions", perm("add_permission"), s.createPermission).Methods(http.MethodPost)
	g.HandleFunc(r, "permissions.methods", "/admin/permissions/methods", perm("view_permission"), s.permissionMethods).Methods(http.MethodGet)
	g.HandleFunc(r, "permissions.get", "/admin/permissions/{id:[0-9]+}", perm("change_permission"), s.getPermission).Methods(http.MethodGet)
	g.HandleFunc(r, "permissions.update", "/admin/permissions/{id:[0-9]+}", perm("change_permission"), s.updatePermission).Methods(http.MethodPatch)
	g.HandleFunc(r, "permissions.delete", "/admin/permissions/{id:[0-9]+}", perm("delete_permission"), s.deletePermission).Methods(http.MethodDelete)
}

// dashboard handles GET /admin/dashboard
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	user := s.manager.CurrentUser()
	roles := "No roles assigned"
	if names := user.RoleNames(); len(names) > 0 {
		roles = strings.Join(names, ", ")
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"roles": roles,
		"stats": s.loadStats(r.Context()),
	})
}

// loadStats fetches the three listings concurrently. A failed listing leaves
// its counters at zero.
func (s *Server) loadStats(ctx context.Context) DashboardStats {
	var stats DashboardStats
	var g errgroup.Group
	all := directory.ListOptions{PageSize: statsPageSize}

	g.Go(func() error {
		page, err := s.client.ListUsers(ctx, directory.UserFilters{ListOptions: all})
		if err != nil {
			s.entry(ctx).WithError(err).Warn("failed to load users for dashboard")
			return nil
		}
		stats.TotalUsers = page.Count
		for _, u := range page.Results {
			if u.IsActive {
				stats.ActiveUsers++
			}
		}
		return nil
	})
	g.Go(func() error {
		page, err := s.catalog.ListRoles(ctx, directory.RoleFilters{ListOptions: all})
		if err != nil {
			s.entry(ctx).WithError(err).Warn("failed to load roles for dashboard")
			return nil
		}
		stats.TotalRoles = page.Count
		return nil
	})
	g.Go(func() error {
		page, err := s.catalog.ListPermissions(ctx, directory.PermissionFilters{ListOptions: all})
		if err != nil {
			s.entry(ctx).WithError(err).Warn("failed to load permissions for dashboard")
			return nil
		}
		stats.TotalPermissions = page.Count
		return nil
	})

	_ = g.Wait()
	return stats
}

// menu handles GET /admin/menu
func (s *Server) menu(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, Menu(s.manager.CurrentUser()))
}

// writeDirectoryError logs err and answers with its mapped status
func (s *Server) writeDirectoryError(w http.ResponseWriter, r *http.Request, err error, message string) {
	s.entry(r.Context()).WithError(err).Warn(message)
	httputil.WriteErrorMessage(w, statusFor(err), directoryMessage(err, message))
}

func listOptions(w http.ResponseWriter, r *http.Request) (directory.ListOptions, bool) {
	page, err := httputil.ParseQueryInt(r, "page", 1)
	if err != nil || page < 1 {
		httputil.WriteBadRequest(w, "invalid page")
		return directory.ListOptions{}, false
	}
	size, err := httputil.ParseQueryInt(r, "page_size", 10)
	if err != nil || size < 1 {
		httputil.WriteBadRequest(w, "invalid page_size")
		return directory.ListOptions{}, false
	}
	return directory.ListOptions{
		Page:     page,
		PageSize: size,
		Search:   httputil.ParseQueryString(r, "search", ""),
	}, true
}
