package console

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/rbac"
	"github.com/platinummonkey/warden/pkg/session"
)

// Login form constraints
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// SessionView is the console's rendering of the session
type SessionView struct {
	Authenticated bool       `json:"is_authenticated"`
	User          *auth.User `json:"user,omitempty"`
	FullName      string     `json:"full_name,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	Permissions   []string   `json:"permissions,omitempty"`
	Menu          []MenuItem `json:"menu"`
	RefreshAt     *time.Time `json:"refresh_at,omitempty"`
	Redirect      string     `json:"redirect,omitempty"`
}

func (s *Server) sessionView() SessionView {
	current := s.manager.Session()
	view := SessionView{
		Authenticated: current.Authenticated,
		Menu:          Menu(current.User),
	}
	if current.User != nil {
		view.User = current.User
		view.FullName = current.User.FullName()
		view.Roles = current.User.RoleNames()
		for _, p := range rbac.EffectivePermissions(current.User) {
			view.Permissions = append(view.Permissions, p.Codename)
		}
	}
	if at, ok := s.manager.ClockDeadline(); ok {
		view.RefreshAt = &at
	}
	return view
}

// loginPage handles GET /auth/login; a signed-in operator goes to the dashboard
func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.manager.IsAuthenticated() {
		http.Redirect(w, r, session.DashboardPath, http.StatusFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"is_authenticated": false,
		"fields": map[string]int{
			"username": MinUsernameLength,
			"password": MinPasswordLength,
		},
	})
}

// login handles POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.ValidateAll(w,
		httputil.RequireMinLength("username", req.Username, MinUsernameLength),
		httputil.RequireMinLength("password", req.Password, MinPasswordLength),
	) {
		return
	}

	ctx := contextkeys.WithUsername(r.Context(), req.Username)
	user, err := s.manager.Login(ctx, req.Username, req.Password)
	if err != nil {
		s.entry(ctx).WithError(err).Info("console login failed")
		httputil.WriteErrorMessage(w, statusFor(err), LoginErrorMessage(err))
		return
	}

	s.hub.Success("Welcome, " + user.FullName())
	view := s.sessionView()
	view.Redirect = session.DashboardPath
	httputil.WriteJSON(w, http.StatusOK, view)
}

// logout handles POST /auth/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.manager.Logout(r.Context())

	view := s.sessionView()
	view.Redirect = s.redirects.Take()
	httputil.WriteJSON(w, http.StatusOK, view)
}

// sessionInfo handles GET /auth/session
func (s *Server) sessionInfo(w http.ResponseWriter, r *http.Request) {
	view := s.sessionView()
	view.Redirect = s.redirects.Take()
	httputil.WriteJSON(w, http.StatusOK, view)
}

// unauthorized handles GET /unauthorized
func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":   "You do not have permission to access this page",
		"go_back": session.DashboardPath,
	})
}

// listNotifications handles GET /notifications
func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.hub.Active())
}

// dismissNotification handles DELETE /notifications/{id}
func (s *Server) dismissNotification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.hub.Dismiss(id) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "notification not found")
		return
	}
	httputil.WriteNoContent(w)
}
