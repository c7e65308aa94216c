package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnreachable wraps transport failures: refused connections, DNS, timeouts
var ErrUnreachable = errors.New("directory unreachable")

// ErrNoCredentials is returned by catalog calls on a client without a token source
var ErrNoCredentials = errors.New("directory client has no credentials")

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 4096

// APIError is a non-2xx response from the Directory
type APIError struct {
	StatusCode int
	Detail     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	text := http.StatusText(e.StatusCode)
	switch {
	case e.Detail != "":
		return fmt.Sprintf("directory: %d %s: %s", e.StatusCode, text, e.Detail)
	case e.Message != "":
		return fmt.Sprintf("directory: %d %s: %s", e.StatusCode, text, e.Message)
	}
	return fmt.Sprintf("directory: %d %s", e.StatusCode, text)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}

	var payload struct {
		Detail  any `json:"detail"`
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Detail = stringify(payload.Detail)
		apiErr.Message = stringify(payload.Message)
	}
	return apiErr
}

// stringify flattens the string or list-of-strings shapes the Directory uses
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}
