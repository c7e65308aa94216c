package console

import (
	"net/http"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
)

// listUsers handles GET /admin/users
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	active, err := httputil.ParseQueryOptionalBool(r, "is_active")
	if err != nil {
		httputil.WriteBadRequest(w, "invalid is_active")
		return
	}

	page, err := s.client.ListUsers(r.Context(), directory.UserFilters{ListOptions: opts, IsActive: active})
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load users. Please try again.")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// createUser handles POST /admin/users
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var form userCreateForm
	if !httputil.ParseJSONOrError(w, r, &form) {
		return
	}
	if !form.validate(w) {
		return
	}

	user, err := s.client.CreateUser(r.Context(), form.UserCreate)
	if err != nil {
		s.entry(r.Context()).WithError(err).Warn("failed to create user")
		httputil.WriteErrorMessage(w, statusFor(err), userSaveMessage(err, "Failed to create user. Please try again."))
		return
	}
	s.hub.Success("User " + user.Username + " created")
	httputil.WriteCreated(w, user)
}

// getUser handles GET /admin/users/{id}
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	user, err := s.client.GetUser(r.Context(), id)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to load user data")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// updateUser handles PATCH /admin/users/{id}
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	var in directory.UserUpdate
	if !httputil.ParseJSONOrError(w, r, &in) {
		return
	}
	if !validateUserUpdate(w, in) {
		return
	}

	user, err := s.client.UpdateUser(r.Context(), id, in)
	if err != nil {
		s.entry(r.Context()).WithError(err).Warn("failed to update user")
		httputil.WriteErrorMessage(w, statusFor(err), userSaveMessage(err, "Failed to update user. Please try again."))
		return
	}
	s.hub.Success("User " + user.Username + " updated")
	httputil.WriteJSON(w, http.StatusOK, user)
}

// deleteUser handles DELETE /admin/users/{id}
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	if err := s.client.DeleteUser(r.Context(), id); err != nil {
		s.writeDirectoryError(w, r, err, "Failed to delete user. Please try again.")
		return
	}
	s.hub.Success("User deleted")
	httputil.WriteNoContent(w)
}

// activateUser handles POST /admin/users/{id}/activate
func (s *Server) activateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserActive(w, r, true)
}

// deactivateUser handles POST /admin/users/{id}/deactivate
func (s *Server) deactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserActive(w, r, false)
}

func (s *Server) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	action := "deactivate"
	call := s.client.DeactivateUser
	if active {
		action = "activate"
		call = s.client.ActivateUser
	}

	user, err := call(r.Context(), id)
	if err != nil {
		s.writeDirectoryError(w, r, err, "Failed to "+action+" user. Please try again.")
		return
	}
	s.hub.Success("User " + user.Username + " " + action + "d")
	httputil.WriteJSON(w, http.StatusOK, user)
}
