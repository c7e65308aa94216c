package directory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/warden/pkg/auth"
	"github.com/platinummonkey/warden/pkg/observability"
)

// Catalog names used in cache metrics
const (
	CatalogRoles       = "roles"
	CatalogPermissions = "permissions"
)

const defaultCacheSize = 128

// CachedCatalog caches role and permission listings. They change rarely and
// are read on every form render. Returned pages are shared and must not be
// modified.
type CachedCatalog struct {
	client  *Client
	roles   *lru.LRU[string, *Page[auth.Role]]
	perms   *lru.LRU[string, *Page[auth.Permission]]
	metrics *observability.Metrics
}

// NewCachedCatalog wraps client with size entries per catalog kept for ttl
func NewCachedCatalog(client *Client, size int, ttl time.Duration, metrics *observability.Metrics) *CachedCatalog {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &CachedCatalog{
		client:  client,
		roles:   lru.NewLRU[string, *Page[auth.Role]](size, nil, ttl),
		perms:   lru.NewLRU[string, *Page[auth.Permission]](size, nil, ttl),
		metrics: metrics,
	}
}

// ListRoles returns a cached role page, fetching it on a miss
func (c *CachedCatalog) ListRoles(ctx context.Context, filters RoleFilters) (*Page[auth.Role], error) {
	key := filters.values().Encode()
	if page, ok := c.roles.Get(key); ok {
		c.metrics.RecordCacheHit(CatalogRoles)
		return page, nil
	}
	c.metrics.RecordCacheMiss(CatalogRoles)

	page, err := c.client.ListRoles(ctx, filters)
	if err != nil {
		return nil, err
	}
	c.roles.Add(key, page)
	return page, nil
}

// ListPermissions returns a cached permission page, fetching it on a miss
func (c *CachedCatalog) ListPermissions(ctx context.Context, filters PermissionFilters) (*Page[auth.Permission], error) {
	key := filters.values().Encode()
	if page, ok := c.perms.Get(key); ok {
		c.metrics.RecordCacheHit(CatalogPermissions)
		return page, nil
	}
	c.metrics.RecordCacheMiss(CatalogPermissions)

	page, err := c.client.ListPermissions(ctx, filters)
	if err != nil {
		return nil, err
	}
	c.perms.Add(key, page)
	return page, nil
}

// InvalidateRoles drops every cached role page
func (c *CachedCatalog) InvalidateRoles() {
	c.roles.Purge()
}

// InvalidatePermissions drops every cached permission page. Roles embed
// their permissions, so role pages go too.
func (c *CachedCatalog) InvalidatePermissions() {
	c.perms.Purge()
	c.roles.Purge()
}

// Purge empties both caches
func (c *CachedCatalog) Purge() {
	c.InvalidatePermissions()
}

// Len returns the number of cached pages
func (c *CachedCatalog) Len() int {
	return c.roles.Len() + c.perms.Len()
}
