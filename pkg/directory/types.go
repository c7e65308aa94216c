package directory

import (
	"net/url"
	"strconv"
)

// Page is one page of a paginated listing
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page follows
func (p *Page[T]) HasNext() bool {
	return p != nil && p.Next != nil && *p.Next != ""
}

// ListOptions are the pagination and search parameters shared by all listings
type ListOptions struct {
	Page     int
	PageSize int
	Search   string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	return v
}

// UserFilters narrows a user listing
type UserFilters struct {
	ListOptions
	IsActive *bool
}

func (f UserFilters) values() url.Values {
	v := f.ListOptions.values()
	if f.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	return v
}

// RoleFilters narrows a role listing
type RoleFilters struct {
	ListOptions
}

func (f RoleFilters) values() url.Values {
	return f.ListOptions.values()
}

// PermissionFilters narrows a permission listing
type PermissionFilters struct {
	ListOptions
	APIEndpoint string
	HTTPMethod  string
}

func (f PermissionFilters) values() url.Values {
	v := f.ListOptions.values()
	if f.APIEndpoint != "" {
		v.Set("api_endpoint", f.APIEndpoint)
	}
	if f.HTTPMethod != "" {
		v.Set("http_method", f.HTTPMethod)
	}
	return v
}

// UserCreate is the payload for creating a user
type UserCreate struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Password  string  `json:"password"`
	Roles     []int64 `json:"roles,omitempty"`
}

// UserUpdate is a partial user update; nil fields are left unchanged
type UserUpdate struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	Roles     []int64 `json:"roles,omitempty"`
}

// RoleCreate is the payload for creating a role
type RoleCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Permissions []int64 `json:"permissions,omitempty"`
}

// RoleUpdate is a partial role update
type RoleUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Permissions []int64 `json:"permissions,omitempty"`
}

// PermissionCreate is the payload for creating a permission
type PermissionCreate struct {
	Name        string `json:"name"`
	Codename    string `json:"codename"`
	Description string `json:"description"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
	HTTPMethod  string `json:"http_method,omitempty"`
}

// PermissionUpdate is a partial permission update
type PermissionUpdate struct {
	Name        *string `json:"name,omitempty"`
	Codename    *string `json:"codename,omitempty"`
	Description *string `json:"description,omitempty"`
	APIEndpoint *string `json:"api_endpoint,omitempty"`
	HTTPMethod  *string `json:"http_method,omitempty"`
}

type permissionIDs struct {
	Permissions []int64 `json:"permissions"`
}

// AvailableHTTPMethods lists the methods a permission may be bound to
func AvailableHTTPMethods() []string {
	return []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
}
