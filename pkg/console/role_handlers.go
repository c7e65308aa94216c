package console

import (
	"net/http"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
)

// permissionIDsRequest is the body of the role permission routes
type permissionIDsRequest struct {
	PermissionIDs []int64 `json:"permission_ids"`
}

// listRoles handles GET /admin/roles
func (s *Server) listRoles(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	page, err := s.catalog.ListRoles(r.Context(), directory.RoleFilters{ListOptions: opts})
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load roles. Please try again.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// createRole handles POST /admin/roles
func (s *Server) createRole(w http.ResponseWriter, r *http.Request) {
	var in directory.RoleCreate
	if !httputil.ParseJSONOrError(w, r, &in) {
		return
	}
	if !validateRoleCreate(w, in) {
		return
	}

	role, err := s.client.CreateRole(r.Context(), in)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to create role. Please try again.")
		return
	}
	s.catalog.InvalidateRoles()
	s.hub.Success("Role " + role.Name + " created")
	httputil.WriteCreated(w, role)
}

// getRole handles GET /admin/roles/{id}
func (s *Server) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	role, err := s.client.GetRole(r.Context(), id)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load role data")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

// updateRole handles PATCH /admin/roles/{id}
func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	var in directory.RoleUpdate
	if !httputil.ParseJSONOrError(w, r, &in) {
		return
	}
	if !validateRoleUpdate(w, in) {
		return
	}

	role, err := s.client.UpdateRole(r.Context(), id, in)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to update role. Please try again.")
		return
	}
	s.catalog.InvalidateRoles()
	s.hub.Success("Role " + role.Name + " updated")
	httputil.WriteJSON(w, http.StatusOK, role)
}

// deleteRole handles DELETE /admin/roles/{id}
func (s *Server) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	if err := s.client.DeleteRole(r.Context(), id); err != nil {
		s.writeDirectoryError(w, r, err, "Failed to delete role. Please try again.")
		return
	}
	s.catalog.InvalidateRoles()
	s.hub.Success("Role deleted")
	httputil.WriteNoContent(w)
}

// rolePermissions handles GET /admin/roles/{id}/permissions
func (s *Server) rolePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	perms, err := s.client.RolePermissions(r.Context(), id)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load role permissions")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perms)
}

// assignPermissions handles POST /admin/roles/{id}/permissions
func (s *Server) assignPermissions(w http.ResponseWriter, r *http.Request) {
	s.changeRolePermissions(w, r, true)
}

// removePermissions handles DELETE /admin/roles/{id}/permissions
func (s *Server) removePermissions(w http.ResponseWriter, r *http.Request) {
	s.changeRolePermissions(w, r, false)
}

func (s *Server) changeRolePermissions(w http.ResponseWriter, r *http.Request, assign bool) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	var in permissionIDsRequest
	if !httputil.ParseJSONOrError(w, r, &in) {
		return
	}
	if len(in.PermissionIDs) == 0 {
		httputil.WriteBadRequest(w, "permission_ids is required")
		return
	}

	call, verb := s.client.RemovePermissions, "removed from"
	if assign {
		call, verb = s.client.AssignPermissions, "assigned to"
	}
	role, err := call(r.Context(), id, in.PermissionIDs)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to update role permissions. Please try again.")
		return
	}
	s.catalog.InvalidateRoles()
	s.hub.Success("Permissions " + verb + " role " + role.Name)
	httputil.WriteJSON(w, http.StatusOK, role)
}
