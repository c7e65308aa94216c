package console

import (
	"net/http"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
)

// listPermissions handles GET /admin/permissions
func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	filters := directory.PermissionFilters{
		ListOptions: opts,
		APIEndpoint: httputil.ParseQueryString(r, "api_endpoint", ""),
		HTTPMethod:  httputil.ParseQueryString(r, "http_method", ""),
	}
	page, err := s.catalog.ListPermissions(r.Context(), filters)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load permissions. Please try again.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// permissionMethods handles GET /admin/permissions/methods
func (s *Server) permissionMethods(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, directory.AvailableHTTPMethods())
}

// createPermission handles POST /admin/permissions
func (s *Server) createPermission(w http.ResponseWriter, r *http.Request) {
	var in directory.PermissionCreate
	if !httputil.ParseJSONOrError(w, r, &in) {
		return
	}
	if !validatePermissionCreate(w, in) {
		return
	}

	perm, err := s.client.CreatePermission(r.Context(), in)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to create permission. Please try again.")
		return
	}
	s.catalog.InvalidatePermissions()
	s.hub.Success("Permission " + perm.Codename + " created")
	httputil.WriteCreated(w, perm)
}

// getPermission handles GET /admin/permissions/{id}
func (s *Server) getPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	perm, err := s.client.GetPermission(r.Context(), id)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load permission data")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, perm)
}

// updatePermission handles PATCH /admin/permissions/{id}
func (s *Server) updatePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	var in directory.PermissionUpdate
	if !httputil.ParseJSONOrError(w, r, &in) {
		return
	}
	if !validatePermissionUpdate(w, in) {
		return
	}

	perm, err := s.client.UpdatePermission(r.Context(), id, in)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to update permission. Please try again.")
		return
	}
	s.catalog.InvalidatePermissions()
	s.hub.Success("Permission " + perm.Codename + " updated")
	httputil.WriteJSON(w, http.StatusOK, perm)
}

// deletePermission handles DELETE /admin/permissions/{id}
func (s *Server) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	if err := s.client.DeletePermission(r.Context(), id); err != nil {
		s.writeDirectoryError(w, r, err, "Failed to delete permission. Please try again.")
		return
	}
	s.catalog.InvalidatePermissions()
	s.hub.Success("Permission deleted")
	httputil.WriteNoContent(w)
}
