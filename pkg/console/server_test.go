package console

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/notify"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/session"
	"github.com/platinummonkey/warden/pkg/tokenstore"
)

const testPassword = "secret1"

func perms(codenames ...string) []auth.Permission {
	out := make([]auth.Permission, 0, len(codenames))
	for i, c := range codenames {
		out = append(out, auth.Permission{ID: int64(i + 1), Codename: c, Name: c})
	}
	return out
}

func directoryUsers() map[string]*auth.User {
	return map[string]*auth.User{
		"admin": {
			ID: 1, Username: "admin", FirstName: "Alice", LastName: "Admin", IsActive: true,
			Roles: []auth.Role{{ID: 1, Name: "Admin", Permissions: perms(
				"view_user", "add_user", "change_user", "delete_user",
				"view_role", "add_role", "change_role", "delete_role",
				"view_permission", "add_permission", "change_permission", "delete_permission",
			)}},
		},
		"viewer": {
			ID: 2, Username: "viewer", IsActive: true,
			Roles: []auth.Role{{ID: 2, Name: "Viewer", Permissions: perms("view_user")}},
		},
		"norole": {ID: 3, Username: "norole", IsActive: false},
	}
}

// fakeDirectory serves the subset of the Directory API the console uses
type fakeDirectory struct {
	t   *testing.T
	srv *httptest.Server

	mu         sync.Mutex
	users      map[string]*auth.User
	current    *auth.User
	roleLists  int
	permLists  int
	userQuery  url.Values
	failUsers  bool
	logoutHits int
}

func newFakeDirectory(t *testing.T) *fakeDirectory {
	t.Helper()
	d := &fakeDirectory{t: t, users: directoryUsers()}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login/", d.login).Methods(http.MethodPost)
	api.HandleFunc("/logout/", d.logout).Methods(http.MethodPost)
	api.HandleFunc("/user/", d.me).Methods(http.MethodGet)
	api.HandleFunc("/users", d.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", d.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/", d.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/", d.updateUser).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id}/", d.noContent).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/{action}/", d.setActive).Methods(http.MethodPatch)
	api.HandleFunc("/roles", d.listRoles).Methods(http.MethodGet)
	api.HandleFunc("/roles", d.createRole).Methods(http.MethodPost)
	api.HandleFunc("/permissions", d.listPermissions).Methods(http.MethodGet)

	d.srv = httptest.NewServer(r)
	t.Cleanup(d.srv.Close)
	return d
}

func (d *fakeDirectory) URL() string {
	return d.srv.URL + "/api/"
}

func (d *fakeDirectory) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(d.t, json.NewEncoder(w).Encode(v))
}

func (d *fakeDirectory) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	assert.NoError(d.t, json.NewDecoder(r.Body).Decode(&req))

	d.mu.Lock()
	user, ok := d.users[req.Username]
	if ok && req.Password == testPassword {
		d.current = user
	}
	d.mu.Unlock()

	if !ok || req.Password != testPassword {
		d.write(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}
	d.write(w, http.StatusOK, auth.LoginResponse{
		Access:  auth.MintTestToken(time.Now().Add(15*time.Minute), auth.TokenTypeAccess),
		Refresh: auth.MintTestToken(time.Now().Add(24*time.Hour), auth.TokenTypeRefresh),
		User:    user,
	})
}

func (d *fakeDirectory) logout(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.logoutHits++
	d.mu.Unlock()
	w.WriteHeader(http.StatusResetContent)
}

func (d *fakeDirectory) me(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	user := d.current
	d.mu.Unlock()
	if user == nil {
		d.write(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}
	d.write(w, http.StatusOK, user)
}

func (d *fakeDirectory) listUsers(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.userQuery = r.URL.Query()
	fail := d.failUsers
	results := []auth.User{*d.users["admin"], *d.users["viewer"], *d.users["norole"]}
	d.mu.Unlock()

	if fail {
		d.write(w, http.StatusInternalServerError, map[string]string{"detail": "database offline"})
		return
	}
	d.write(w, http.StatusOK, directory.Page[auth.User]{Count: len(results), Results: results})
}

func (d *fakeDirectory) createUser(w http.ResponseWriter, r *http.Request) {
	var in directory.UserCreate
	assert.NoError(d.t, json.NewDecoder(r.Body).Decode(&in))
	if _, taken := d.users[in.Username]; taken {
		d.write(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
		return
	}
	d.write(w, http.StatusCreated, auth.User{ID: 10, Username: in.Username, Email: in.Email, IsActive: true})
}

func (d *fakeDirectory) getUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID == id {
			d.write(w, http.StatusOK, u)
			return
		}
	}
	d.write(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (d *fakeDirectory) updateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var in directory.UserUpdate
	assert.NoError(d.t, json.NewDecoder(r.Body).Decode(&in))

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if u.ID != id {
			continue
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		d.write(w, http.StatusOK, u)
		return
	}
	d.write(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (d *fakeDirectory) setActive(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	d.write(w, http.StatusOK, auth.User{ID: id, Username: "norole", IsActive: mux.Vars(r)["action"] == "activate"})
}

func (d *fakeDirectory) noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (d *fakeDirectory) listRoles(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.roleLists++
	d.mu.Unlock()
	d.write(w, http.StatusOK, directory.Page[auth.Role]{Count: 2, Results: []auth.Role{{ID: 1, Name: "Admin"}, {ID: 2, Name: "Viewer"}}})
}

func (d *fakeDirectory) createRole(w http.ResponseWriter, r *http.Request) {
	var in directory.RoleCreate
	assert.NoError(d.t, json.NewDecoder(r.Body).Decode(&in))
	d.write(w, http.StatusCreated, auth.Role{ID: 3, Name: in.Name, Description: in.Description})
}

func (d *fakeDirectory) listPermissions(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.permLists++
	d.mu.Unlock()
	d.write(w, http.StatusOK, directory.Page[auth.Permission]{Count: 12, Results: perms("view_user")})
}

func (d *fakeDirectory) failUserListing() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failUsers = true
}

func (d *fakeDirectory) lastUserQuery() url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.userQuery
}

func (d *fakeDirectory) logouts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logoutHits
}

func (d *fakeDirectory) counts() (roles, permissions int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roleLists, d.permLists
}

type harness struct {
	dir       *fakeDirectory
	manager   *session.Manager
	hub       *notify.Hub
	redirects *Redirects
	server    *Server
	handler   http.Handler
}

func newHarness(t *testing.T, configure ...func(*Options)) *harness {
	t.Helper()
	logger, _ := test.NewNullLogger()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	dir := newFakeDirectory(t)
	hub := notify.NewHub()
	redirects := NewRedirects()

	manager := session.NewManager(directory.NewClient(dir.URL()), tokenstore.NewMemoryStore(), logger,
		session.WithMetrics(metrics),
		session.WithNavigator(redirects),
		session.WithNotifier(hub),
	)
	client := directory.NewClient(dir.URL(), directory.WithTokenSource(manager.TokenSource()))

	opts := Options{
		Manager:   manager,
		Client:    client,
		Hub:       hub,
		Metrics:   metrics,
		Logger:    logger,
		Redirects: redirects,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	server := NewServer(opts)
	t.Cleanup(func() {
		server.Close()
		manager.Close()
		hub.Close()
	})

	return &harness{
		dir:       dir,
		manager:   manager,
		hub:       hub,
		redirects: redirects,
		server:    server,
		handler:   server.Handler(),
	}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T, username string) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/auth/login", auth.LoginRequest{Username: username, Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func toastMessages(hub *notify.Hub) []string {
	var out []string
	for _, toast := range hub.Active() {
		out = append(out, toast.Message)
	}
	return out
}

func TestServer_AnonymousIsSentToLogin(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/admin/dashboard", "/admin/menu", "/admin/users", "/admin/roles/1", "/admin/permissions"} {
		rec := h.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, session.LoginPath, rec.Header().Get("Location"), path)
	}

	rec := h.do(t, http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	view := decode[SessionView](t, h.do(t, http.MethodGet, "/auth/session", nil))
	assert.False(t, view.Authenticated)
	assert.Empty(t, view.Menu)
}

func TestServer_LoginValidation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/auth/login", auth.LoginRequest{Username: "ad", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[struct {
		Details map[string]string `json:"details"`
	}](t, rec)
	assert.Contains(t, resp.Details, "username")
	assert.Contains(t, resp.Details, "password")
	assert.False(t, h.manager.IsAuthenticated())
}

func TestServer_LoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/auth/login", auth.LoginRequest{Username: "admin", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInvalidCredentials)
	assert.False(t, h.manager.IsAuthenticated())
}

func TestServer_LoginThrottled(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.LoginLimiter = httputil.NewRateLimiter(1, 2)
	})

	bad := auth.LoginRequest{Username: "admin", Password: "wrong-password"}
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/auth/login", bad).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodPost, "/auth/login", bad).Code)

	rec := h.do(t, http.MethodPost, "/auth/login", auth.LoginRequest{Username: "admin", Password: testPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgTooManyAttempts)
	assert.False(t, h.manager.IsAuthenticated())

	// Other routes are not throttled
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/auth/session", nil).Code)
}

func TestServer_LoginSuccess(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/auth/login", auth.LoginRequest{Username: "admin", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[SessionView](t, rec)
	assert.True(t, view.Authenticated)
	assert.Equal(t, "Alice Admin", view.FullName)
	assert.Equal(t, []string{"Admin"}, view.Roles)
	assert.Equal(t, session.DashboardPath, view.Redirect)
	assert.Len(t, view.Menu, 4)
	require.NotNil(t, view.RefreshAt)
	assert.Contains(t, toastMessages(h.hub), "Welcome, Alice Admin")

	rec = h.do(t, http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, session.DashboardPath, rec.Header().Get("Location"))
}

func TestServer_Logout(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	rec := h.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[SessionView](t, rec)
	assert.False(t, view.Authenticated)
	assert.Equal(t, session.LoginPath, view.Redirect)
	assert.False(t, h.manager.IsAuthenticated())
	assert.Equal(t, 1, h.dir.logouts())

	rec = h.do(t, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestServer_PermissionDenied(t *testing.T) {
	h := newHarness(t)
	h.login(t, "viewer")

	rec := h.do(t, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, tt := range []struct{ method, path string }{
		{http.MethodPost, "/admin/users"},
		{http.MethodDelete, "/admin/users/3"},
		{http.MethodGet, "/admin/roles"},
		{http.MethodGet, "/admin/permissions"},
	} {
		rec := h.do(t, tt.method, tt.path, nil)
		assert.Equal(t, http.StatusFound, rec.Code, tt.path)
		assert.Equal(t, session.UnauthorizedPath, rec.Header().Get("Location"), tt.path)
	}

	rec = h.do(t, http.MethodGet, session.UnauthorizedPath, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_Menu(t *testing.T) {
	h := newHarness(t)
	h.login(t, "viewer")

	items := decode[[]MenuItem](t, h.do(t, http.MethodGet, "/admin/menu", nil))
	require.Len(t, items, 2)
	assert.Equal(t, "Dashboard", items[0].Label)
	assert.Equal(t, "Users", items[1].Label)
}

func TestServer_Dashboard(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	rec := h.do(t, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Roles string         `json:"roles"`
		Stats DashboardStats `json:"stats"`
	}](t, rec)
	assert.Equal(t, "Admin", resp.Roles)
	assert.Equal(t, DashboardStats{TotalUsers: 3, ActiveUsers: 2, TotalRoles: 2, TotalPermissions: 12}, resp.Stats)
}

func TestServer_DashboardToleratesFailures(t *testing.T) {
	h := newHarness(t)
	h.dir.failUserListing()
	h.login(t, "norole")

	rec := h.do(t, http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[struct {
		Roles string         `json:"roles"`
		Stats DashboardStats `json:"stats"`
	}](t, rec)
	assert.Equal(t, "No roles assigned", resp.Roles)
	assert.Equal(t, 0, resp.Stats.TotalUsers)
	assert.Equal(t, 2, resp.Stats.TotalRoles)
}

func TestServer_ListUsersForwardsFilters(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	rec := h.do(t, http.MethodGet, "/admin/users?page=2&page_size=5&search=ali&is_active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[directory.Page[auth.User]](t, rec)
	assert.Equal(t, 3, page.Count)

	query := h.dir.lastUserQuery()
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "5", query.Get("page_size"))
	assert.Equal(t, "ali", query.Get("search"))
	assert.Equal(t, "true", query.Get("is_active"))

	rec = h.do(t, http.MethodGet, "/admin/users?is_active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(t, http.MethodGet, "/admin/users?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateUser(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	form := map[string]any{
		"username":         "bob",
		"email":            "bob@example.com",
		"first_name":       "Bob",
		"last_name":        "Builder",
		"password":         "hunter22",
		"confirm_password": "hunter22",
	}

	rec := h.do(t, http.MethodPost, "/admin/users", form)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "bob", decode[auth.User](t, rec).Username)
	assert.Contains(t, toastMessages(h.hub), "User bob created")

	form["confirm_password"] = "different"
	rec = h.do(t, http.MethodPost, "/admin/users", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")

	form["confirm_password"] = "hunter22"
	form["username"] = "viewer"
	rec = h.do(t, http.MethodPost, "/admin/users", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists")
}

func TestServer_UserLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	rec := h.do(t, http.MethodGet, "/admin/users/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "viewer", decode[auth.User](t, rec).Username)

	rec = h.do(t, http.MethodGet, "/admin/users/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found.")

	rec = h.do(t, http.MethodPost, "/admin/users/3/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[auth.User](t, rec).IsActive)

	rec = h.do(t, http.MethodPost, "/admin/users/3/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[auth.User](t, rec).IsActive)

	rec = h.do(t, http.MethodDelete, "/admin/users/3", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, toastMessages(h.hub), "User deleted")
}

func TestServer_UserReadAndUpdateToasts(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")
	before := len(h.hub.Active())

	rec := h.do(t, http.MethodGet, "/admin/users/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, h.hub.Active(), before)

	rec = h.do(t, http.MethodPatch, "/admin/users/2", map[string]any{"email": "viewer@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "viewer@example.com", decode[auth.User](t, rec).Email)

	toasts := toastMessages(h.hub)
	require.Len(t, toasts, before+1)
	assert.Equal(t, "User viewer updated", toasts[len(toasts)-1])
}

func TestServer_RoleMutationsInvalidateCatalog(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	for i := 0; i < 2; i++ {
		rec := h.do(t, http.MethodGet, "/admin/roles", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	roles, _ := h.dir.counts()
	assert.Equal(t, 1, roles)

	rec := h.do(t, http.MethodPost, "/admin/roles", directory.RoleCreate{Name: "Auditor", Description: "Reads everything"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/admin/roles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roles, _ = h.dir.counts()
	assert.Equal(t, 2, roles)
}

func TestServer_RoleValidation(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	rec := h.do(t, http.MethodPost, "/admin/roles", directory.RoleCreate{Name: "A", Description: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/admin/roles/1/permissions", permissionIDsRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_PermissionValidation(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	rec := h.do(t, http.MethodPost, "/admin/permissions", directory.PermissionCreate{
		Name:        "View reports",
		Codename:    "View-Reports",
		Description: "Read the weekly reports",
		APIEndpoint: "reports",
		HTTPMethod:  "FETCH",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[struct {
		Details map[string]string `json:"details"`
	}](t, rec)
	assert.Contains(t, resp.Details, "codename")
	assert.Contains(t, resp.Details, "api_endpoint")
	assert.Contains(t, resp.Details, "http_method")

	methods := decode[[]string](t, h.do(t, http.MethodGet, "/admin/permissions/methods", nil))
	assert.Equal(t, directory.AvailableHTTPMethods(), methods)
}

func TestServer_CatalogPurgedOnIdentityChange(t *testing.T) {
	h := newHarness(t)
	h.login(t, "admin")

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/admin/permissions", nil).Code)
	_, permissions := h.dir.counts()
	assert.Equal(t, 1, permissions)

	h.do(t, http.MethodPost, "/auth/logout", nil)
	h.login(t, "admin")

	require.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/admin/permissions", nil).Code)
	_, permissions = h.dir.counts()
	assert.Equal(t, 2, permissions)
}

func TestServer_Notifications(t *testing.T) {
	h := newHarness(t)
	toast := h.hub.Info("maintenance at noon")

	toasts := decode[[]notify.Toast](t, h.do(t, http.MethodGet, "/notifications", nil))
	require.Len(t, toasts, 1)
	assert.Equal(t, toast.ID, toasts[0].ID)

	rec := h.do(t, http.MethodDelete, "/notifications/"+toast.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodDelete, "/notifications/"+toast.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/readyz", nil).Code)
}

func TestServer_RegistryCoversAdminRoutes(t *testing.T) {
	h := newHarness(t)

	route, ok := h.server.Registry().Lookup("users.delete")
	require.True(t, ok)
	assert.Equal(t, "delete_user", route.Requirement.Permission)

	route, ok = h.server.Registry().Lookup("admin.dashboard")
	require.True(t, ok)
	assert.True(t, route.Requirement.IsZero())

	_, ok = h.server.Registry().Lookup("auth.login")
	assert.False(t, ok)
}
