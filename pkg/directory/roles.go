package directory

import (
	"context"
	"fmt"
	"net/http"

	"github.com/platinummonkey/warden/pkg/auth"
)

// ListRoles returns one page of roles
func (c *Client) ListRoles(ctx context.Context, filters RoleFilters) (*Page[auth.Role], error) {
	var page Page[auth.Role]
	if err := c.catalog(ctx, http.MethodGet, "/roles", filters.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRole fetches one role
func (c *Client) GetRole(ctx context.Context, id int64) (*auth.Role, error) {
	var role auth.Role
	if err := c.catalog(ctx, http.MethodGet, rolePath(id, ""), nil, nil, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreateRole creates a role
func (c *Client) CreateRole(ctx context.Context, in RoleCreate) (*auth.Role, error) {
	var role auth.Role
	if err := c.catalog(ctx, http.MethodPost, "/roles", nil, in, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdateRole applies a partial update
func (c *Client) UpdateRole(ctx context.Context, id int64, in RoleUpdate) (*auth.Role, error) {
	var role auth.Role
	if err := c.catalog(ctx, http.MethodPatch, rolePath(id, ""), nil, in, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole removes a role
func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.catalog(ctx, http.MethodDelete, rolePath(id, ""), nil, nil, nil)
}

// AssignPermissions grants permissions to a role
func (c *Client) AssignPermissions(ctx context.Context, roleID int64, permissionIDs []int64) (*auth.Role, error) {
	return c.changeRolePermissions(ctx, roleID, "assign_permissions/", permissionIDs)
}

// RemovePermissions revokes permissions from a role
func (c *Client) RemovePermissions(ctx context.Context, roleID int64, permissionIDs []int64) (*auth.Role, error) {
	return c.changeRolePermissions(ctx, roleID, "remove_permissions/", permissionIDs)
}

// RolePermissions lists the permissions granted to a role
func (c *Client) RolePermissions(ctx context.Context, roleID int64) ([]auth.Permission, error) {
	var perms []auth.Permission
	if err := c.catalog(ctx, http.MethodGet, rolePath(roleID, "permissions/"), nil, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

func (c *Client) changeRolePermissions(ctx context.Context, roleID int64, action string, ids []int64) (*auth.Role, error) {
	if ids == nil {
		ids = []int64{}
	}
	var role auth.Role
	if err := c.catalog(ctx, http.MethodPost, rolePath(roleID, action), nil, permissionIDs{Permissions: ids}, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func rolePath(id int64, action string) string {
	return fmt.Sprintf("/roles/%d/%s", id, action)
}
