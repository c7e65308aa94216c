package console

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
)

var (
	codenamePattern    = regexp.MustCompile(`^[a-z_]+$`)
	apiEndpointPattern = regexp.MustCompile(`^/api/[a-zA-Z0-9_/\-]*/$`)
)

type userCreateForm struct {
	directory.UserCreate
	ConfirmPassword string `json:"confirm_password"`
}

func (f userCreateForm) validate(w http.ResponseWriter) bool {
	return httputil.ValidateAll(w,
		httputil.RequireMinLength("username", f.Username, 3),
		httputil.RequireEmail("email", f.Email),
		httputil.RequireNonEmpty("first_name", f.FirstName),
		httputil.RequireNonEmpty("last_name", f.LastName),
		httputil.RequireMinLength("password", f.Password, 6),
		httputil.RequireEqual("confirm_password", f.ConfirmPassword, f.Password, "Passwords do not match"),
	)
}

func validateUserUpdate(w http.ResponseWriter, in directory.UserUpdate) bool {
	var validators []httputil.Validator
	if in.Username != nil {
		validators = append(validators, httputil.RequireMinLength("username", *in.Username, 3))
	}
	if in.Email != nil {
		validators = append(validators, httputil.RequireEmail("email", *in.Email))
	}
	if in.FirstName != nil {
		validators = append(validators, httputil.RequireNonEmpty("first_name", *in.FirstName))
	}
	if in.LastName != nil {
		validators = append(validators, httputil.RequireNonEmpty("last_name", *in.LastName))
	}
	return httputil.ValidateAll(w, validators...)
}

func validateRoleCreate(w http.ResponseWriter, in directory.RoleCreate) bool {
	return httputil.ValidateAll(w,
		httputil.RequireMinLength("name", in.Name, 3),
		httputil.RequireMinLength("description", in.Description, 10),
	)
}

func validateRoleUpdate(w http.ResponseWriter, in directory.RoleUpdate) bool {
	var validators []httputil.Validator
	if in.Name != nil {
		validators = append(validators, httputil.RequireMinLength("name", *in.Name, 3))
	}
	if in.Description != nil {
		validators = append(validators, httputil.RequireMinLength("description", *in.Description, 10))
	}
	return httputil.ValidateAll(w, validators...)
}

func validatePermissionCreate(w http.ResponseWriter, in directory.PermissionCreate) bool {
	return httputil.ValidateAll(w,
		httputil.RequireMinLength("name", in.Name, 3),
		httputil.RequireNonEmpty("codename", in.Codename),
		httputil.RequirePattern("codename", in.Codename, codenamePattern, "codename may only contain lowercase letters and underscores"),
		httputil.RequireMinLength("description", in.Description, 10),
		httputil.RequirePattern("api_endpoint", in.APIEndpoint, apiEndpointPattern, "api_endpoint must look like /api/path/"),
		requireHTTPMethod(in.HTTPMethod),
	)
}

func validatePermissionUpdate(w http.ResponseWriter, in directory.PermissionUpdate) bool {
	var validators []httputil.Validator
	if in.Name != nil {
		validators = append(validators, httputil.RequireMinLength("name", *in.Name, 3))
	}
	if in.Codename != nil {
		validators = append(validators,
			httputil.RequireNonEmpty("codename", *in.Codename),
			httputil.RequirePattern("codename", *in.Codename, codenamePattern, "codename may only contain lowercase letters and underscores"),
		)
	}
	if in.Description != nil {
		validators = append(validators, httputil.RequireMinLength("description", *in.Description, 10))
	}
	if in.APIEndpoint != nil {
		validators = append(validators, httputil.RequirePattern("api_endpoint", *in.APIEndpoint, apiEndpointPattern, "api_endpoint must look like /api/path/"))
	}
	if in.HTTPMethod != nil {
		validators = append(validators, requireHTTPMethod(*in.HTTPMethod))
	}
	return httputil.ValidateAll(w, validators...)
}

func requireHTTPMethod(method string) httputil.Validator {
	return func() (string, string, bool) {
		if method == "" {
			return "http_method", "", true
		}
		for _, m := range directory.AvailableHTTPMethods() {
			if m == method {
				return "http_method", "", true
			}
		}
		return "http_method", "http_method must be one of " + strings.Join(directory.AvailableHTTPMethods(), ", "), false
	}
}

// fieldErrors returns the field names the Directory rejected in a 400 body
func fieldErrors(err error) map[string]json.RawMessage {
	var apiErr *directory.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return nil
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal([]byte(apiErr.Body), &fields) != nil {
		return nil
	}
	return fields
}

// userSaveMessage maps a failed user create/update to an operator message
func userSaveMessage(err error, fallback string) string {
	fields := fieldErrors(err)
	if _, ok := fields["username"]; ok {
		return "Username already exists"
	}
	if _, ok := fields["email"]; ok {
		return "Email already exists"
	}
	return directoryMessage(err, fallback)
}
