package directory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/platinummonkey/warden/pkg/auth"
)

// ListPermissions returns one page of permissions
func (c *Client) ListPermissions(ctx context.Context, filters PermissionFilters) (*Page[auth.Permission], error) {
	var page Page[auth.Permission]
	if err := c.catalog(ctx, http.MethodGet, "/permissions", filters.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetPermission fetches one permission
func (c *Client) GetPermission(ctx context.Context, id int64) (*auth.Permission, error) {
	var perm auth.Permission
	if err := c.catalog(ctx, http.MethodGet, permissionPath(id), nil, nil, &perm); err != nil {
		return nil, err
	}
	return &perm, nil
}

// CreatePermission creates a permission
func (c *Client) CreatePermission(ctx context.Context, in PermissionCreate) (*auth.Permission, error) {
	var perm auth.Permission
	if err := c.catalog(ctx, http.MethodPost, "/permissions", nil, in, &perm); err != nil {
		return nil, err
	}
	return &perm, nil
}

// UpdatePermission applies a partial update
func (c *Client) UpdatePermission(ctx context.Context, id int64, in PermissionUpdate) (*auth.Permission, error) {
	var perm auth.Permission
	if err := c.catalog(ctx, http.MethodPatch, permissionPath(id), nil, in, &perm); err != nil {
		return nil, err
	}
	return &perm, nil
}

// DeletePermission removes a permission
func (c *Client) DeletePermission(ctx context.Context, id int64) error {
	return c.catalog(ctx, http.MethodDelete, permissionPath(id), nil, nil, nil)
}

func permissionPath(id int64) string {
	return fmt.Sprintf("/permissions/%d/", id)
}
