package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/config"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func staticTokens(access string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access, TokenType: "Bearer"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", WithTokenSource(staticTokens("catalog-token")), WithTimeout(2*time.Second))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, config.DefaultAPIURL, c.BaseURL())

	c = NewClient("http://directory.local/api/")
	assert.Equal(t, "http://directory.local/api", c.BaseURL())
}

func TestNewClientFromConfig(t *testing.T) {
	c := NewClientFromConfig(config.DirectoryConfig{APIURL: "http://d/api", Timeout: 3 * time.Second}, staticTokens("x"))
	assert.Equal(t, "http://d/api", c.BaseURL())
	assert.Equal(t, 3*time.Second, c.timeout)
	assert.NotNil(t, c.authed)
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req auth.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, auth.LoginRequest{Username: "alice", Password: "secret1"}, req)

		writeJSON(t, w, http.StatusOK, auth.LoginResponse{
			Access:  "access",
			Refresh: "refresh",
			User:    &auth.User{ID: 7, Username: "alice"},
		})
	})

	resp, err := c.Login(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "access", resp.Access)
	assert.Equal(t, "refresh", resp.Refresh)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "No active account found with the given credentials", apiErr.Detail)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "401 Unauthorized")
}

func TestClient_RefreshAndLogout(t *testing.T) {
	var logoutBody auth.RefreshRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/refresh/":
			var req auth.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "refresh-1", req.Refresh)
			writeJSON(t, w, http.StatusOK, auth.RefreshResponse{Access: "access-2"})
		case "/api/logout/":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&logoutBody))
			writeJSON(t, w, http.StatusOK, map[string]string{})
		default:
			http.NotFound(w, r)
		}
	})

	resp, err := c.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", resp.Access)

	require.NoError(t, c.Logout(context.Background(), "refresh-1"))
	assert.Equal(t, "refresh-1", logoutBody.Refresh)
}

func TestClient_CurrentUserUsesGivenToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/", r.URL.Path)
		assert.Equal(t, "Bearer restored-token", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, auth.User{ID: 1, Username: "alice"})
	})

	user, err := c.CurrentUser(context.Background(), "restored-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestClient_ListUsers(t *testing.T) {
	active := true
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer catalog-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("page_size"))
		assert.Equal(t, "ali", q.Get("search"))
		assert.Equal(t, "true", q.Get("is_active"))

		next := "http://d/api/users?page=3"
		writeJSON(t, w, http.StatusOK, Page[auth.User]{
			Count:   51,
			Next:    &next,
			Results: []auth.User{{ID: 1, Username: "alice"}},
		})
	})

	page, err := c.ListUsers(context.Background(), UserFilters{
		ListOptions: ListOptions{Page: 2, PageSize: 25, Search: "ali"},
		IsActive:    &active,
	})
	require.NoError(t, err)
	assert.Equal(t, 51, page.Count)
	assert.True(t, page.HasNext())
	require.Len(t, page.Results, 1)
	assert.Equal(t, "alice", page.Results[0].Username)
}

func TestClient_UserLifecycle(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost:
			var in UserCreate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, []int64{2, 3}, in.Roles)
			writeJSON(t, w, http.StatusCreated, auth.User{ID: 9, Username: in.Username})
		case r.URL.Path == "/api/users/9/deactivate/":
			writeJSON(t, w, http.StatusOK, auth.User{ID: 9, IsActive: false})
		case r.URL.Path == "/api/users/9/activate/":
			writeJSON(t, w, http.StatusOK, auth.User{ID: 9, IsActive: true})
		case r.Method == http.MethodPatch:
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"email":"bob@example.com"}`, string(body))
			writeJSON(t, w, http.StatusOK, auth.User{ID: 9, Email: "bob@example.com"})
		default:
			writeJSON(t, w, http.StatusOK, auth.User{ID: 9, Username: "bob"})
		}
	})
	ctx := context.Background()

	created, err := c.CreateUser(ctx, UserCreate{Username: "bob", Password: "secret1", Roles: []int64{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)

	got, err := c.GetUser(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	email := "bob@example.com"
	updated, err := c.UpdateUser(ctx, 9, UserUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)

	off, err := c.DeactivateUser(ctx, 9)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	on, err := c.ActivateUser(ctx, 9)
	require.NoError(t, err)
	assert.True(t, on.IsActive)

	require.NoError(t, c.DeleteUser(ctx, 9))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"POST /api/users",
		"GET /api/users/9/",
		"PATCH /api/users/9/",
		"PATCH /api/users/9/deactivate/",
		"PATCH /api/users/9/activate/",
		"DELETE /api/users/9/",
	}, seen)
}

func TestClient_RolePermissions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/roles/4/assign_permissions/", "/api/roles/4/remove_permissions/":
			assert.Equal(t, http.MethodPost, r.Method)
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"permissions":[1,2]}`, string(body))
			writeJSON(t, w, http.StatusOK, auth.Role{ID: 4, Name: "Editor"})
		case "/api/roles/4/permissions/":
			writeJSON(t, w, http.StatusOK, []auth.Permission{{ID: 1, Codename: "view_user"}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	role, err := c.AssignPermissions(ctx, 4, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "Editor", role.Name)

	_, err = c.RemovePermissions(ctx, 4, []int64{1, 2})
	require.NoError(t, err)

	perms, err := c.RolePermissions(ctx, 4)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "view_user", perms[0].Codename)
}

func TestClient_ListPermissionsFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/permissions", r.URL.Path)
		assert.Equal(t, "/api/users/", r.URL.Query().Get("api_endpoint"))
		assert.Equal(t, "GET", r.URL.Query().Get("http_method"))
		writeJSON(t, w, http.StatusOK, Page[auth.Permission]{Count: 0, Results: []auth.Permission{}})
	})

	page, err := c.ListPermissions(context.Background(), PermissionFilters{APIEndpoint: "/api/users/", HTTPMethod: "GET"})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Count)
	assert.False(t, page.HasNext())
}

func TestClient_ValidationErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{
			"message": []string{"Role with this name already exists."},
		})
	})

	_, err := c.CreateRole(context.Background(), RoleCreate{Name: "Admin"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Role with this name already exists.", apiErr.Message)
	assert.Empty(t, apiErr.Detail)
	assert.Contains(t, apiErr.Body, "already exists")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.Login(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, ErrUnreachable)

	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnreachable)
}

func TestClient_Ping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_CatalogWithoutCredentials(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	_, err := c.ListRoles(context.Background(), RoleFilters{})
	assert.ErrorIs(t, err, ErrNoCredentials)

	failing := oauth2.TokenSource(tokenSourceFunc(func() (*oauth2.Token, error) {
		return nil, errors.New("not authenticated")
	}))
	c = NewClient(srv.URL, WithTokenSource(failing))
	_, err = c.ListRoles(context.Background(), RoleFilters{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnreachable)

	assert.Equal(t, int32(0), calls.Load())
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

func TestAvailableHTTPMethods(t *testing.T) {
	assert.Equal(t, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}, AvailableHTTPMethods())
}
