package directory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/platinummonkey/warden/pkg/auth"
)

// ListUsers returns one page of users
func (c *Client) ListUsers(ctx context.Context, filters UserFilters) (*Page[auth.User], error) {
	var page Page[auth.User]
	if err := c.catalog(ctx, http.MethodGet, "/users", filters.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches one user
func (c *Client) GetUser(ctx context.Context, id int64) (*auth.User, error) {
	var user auth.User
	if err := c.catalog(ctx, http.MethodGet, userPath(id, ""), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user
func (c *Client) CreateUser(ctx context.Context, in UserCreate) (*auth.User, error) {
	var user auth.User
	if err := c.catalog(ctx, http.MethodPost, "/users", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial update
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*auth.User, error) {
	var user auth.User
	if err := c.catalog(ctx, http.MethodPatch, userPath(id, ""), nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.catalog(ctx, http.MethodDelete, userPath(id, ""), nil, nil, nil)
}

// ActivateUser marks a user active
func (c *Client) ActivateUser(ctx context.Context, id int64) (*auth.User, error) {
	return c.setUserActive(ctx, id, "activate/")
}

// DeactivateUser marks a user inactive
func (c *Client) DeactivateUser(ctx context.Context, id int64) (*auth.User, error) {
	return c.setUserActive(ctx, id, "deactivate/")
}

func (c *Client) setUserActive(ctx context.Context, id int64, action string) (*auth.User, error) {
	var user auth.User
	if err := c.catalog(ctx, http.MethodPatch, userPath(id, action), nil, struct{}{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func userPath(id int64, action string) string {
	return fmt.Sprintf("/users/%d/%s", id, action)
}
