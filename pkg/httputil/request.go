package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/gorilla/mux"
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes error response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParsePathInt64 extracts and parses an int64 path parameter
func ParsePathInt64(r *http.Request, key string) (int64, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return 0, fmt.Errorf("missing path parameter: %s", key)
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %s", key, str)
	}
	return val, nil
}

// ParsePathInt64OrError extracts an int64 path parameter and writes error on failure
func ParsePathInt64OrError(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	val, err := ParsePathInt64(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return 0, false
	}
	return val, true
}

// ParseQueryInt extracts and parses an integer query parameter
func ParseQueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for query param %s: %s", key, str)
	}
	return val, nil
}

// ParseQueryString extracts a string query parameter
func ParseQueryString(r *http.Request, key string, defaultVal string) string {
	if str := r.URL.Query().Get(key); str != "" {
		return str
	}
	return defaultVal
}

// ParseQueryOptionalBool extracts a boolean query parameter, returning nil when absent
func ParseQueryOptionalBool(r *http.Request, key string) (*bool, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return nil, nil
	}
	val, err := strconv.ParseBool(str)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean for query param %s: %s", key, str)
	}
	return &val, nil
}

// Validator checks one field and reports the field name and message on failure
type Validator func() (field, message string, ok bool)

// RequireNonEmpty fails when value is empty
func RequireNonEmpty(field, value string) Validator {
	return func() (string, string, bool) {
		if value == "" {
			return field, field + " is required", false
		}
		return field, "", true
	}
}

// RequireMinLength fails when value is shorter than min characters
func RequireMinLength(field, value string, min int) Validator {
	return func() (string, string, bool) {
		if value == "" {
			return field, field + " is required", false
		}
		if utf8.RuneCountInString(value) < min {
			return field, fmt.Sprintf("%s must be at least %d characters", field, min), false
		}
		return field, "", true
	}
}

// RequireEmail fails when value is not a bare email address
func RequireEmail(field, value string) Validator {
	return func() (string, string, bool) {
		if value == "" {
			return field, field + " is required", false
		}
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return field, field + " must be a valid email address", false
		}
		return field, "", true
	}
}

// RequirePattern fails when a non-empty value does not match re.
// Pair it with RequireNonEmpty for mandatory fields.
func RequirePattern(field, value string, re *regexp.Regexp, message string) Validator {
	return func() (string, string, bool) {
		if value != "" && !re.MatchString(value) {
			return field, message, false
		}
		return field, "", true
	}
}

// RequireEqual fails when value differs from other
func RequireEqual(field, value, other, message string) Validator {
	return func() (string, string, bool) {
		if value != other {
			return field, message, false
		}
		return field, "", true
	}
}

// ValidateAll runs every validator and writes a 400 with per-field details
// when any of them fails. It returns true when all passed.
func ValidateAll(w http.ResponseWriter, validators ...Validator) bool {
	details := make(map[string]string)
	for _, v := range validators {
		if field, msg, ok := v(); !ok {
			details[field] = msg
		}
	}
	if len(details) == 0 {
		return true
	}
	WriteDetailedError(w, http.StatusBadRequest, "validation failed", details)
	return false
}
