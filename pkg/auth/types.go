package auth

import "time"

// Permission is a single grant identified by its codename
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Codename    string `json:"codename"`
	Description string `json:"description"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
	HTTPMethod  string `json:"http_method,omitempty"`
}

// Role groups permissions under a name
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions,omitempty"`
}

// User is an account known to the Directory
type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	IsActive   bool       `json:"is_active"`
	DateJoined *time.Time `json:"date_joined,omitempty"`
	Roles      []Role     `json:"roles,omitempty"`
}

// FullName returns "first last", falling back to the username
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// RoleNames lists the names of the user's roles in order
func (u *User) RoleNames() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Clone returns a deep copy so callers never share role or permission slices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.DateJoined != nil {
		t := *u.DateJoined
		c.DateJoined = &t
	}
	if u.Roles != nil {
		c.Roles = make([]Role, len(u.Roles))
		for i, r := range u.Roles {
			c.Roles[i] = r.Clone()
		}
	}
	return &c
}

// Clone returns a copy of the role with its own permission slice
func (r Role) Clone() Role {
	if r.Permissions != nil {
		perms := make([]Permission, len(r.Permissions))
		copy(perms, r.Permissions)
		r.Permissions = perms
	}
	return r
}

// LoginRequest is the body of POST /login/
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

// RefreshRequest is the body of POST /token/refresh/ and POST /logout/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries a freshly minted access token
type RefreshResponse struct {
	Access string `json:"access"`
}
