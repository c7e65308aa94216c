package console

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/session"
)

// Operator-facing login failure messages
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgUnreachable        = "Unable to connect to server"
	MsgUnexpected         = "An unexpected error occurred"
	MsgTooManyAttempts    = "Too many login attempts. Please try again later."
)

// LoginErrorMessage maps a login failure to the message shown to the operator
func LoginErrorMessage(err error) string {
	var apiErr *directory.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return MsgInvalidCredentials
	case errors.Is(err, directory.ErrUnreachable):
		return MsgUnreachable
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return MsgUnexpected
}

// statusFor picks the console status for a Directory error
func statusFor(err error) int {
	var apiErr *directory.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case errors.Is(err, directory.ErrUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, directory.ErrNoCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrSessionSuperseded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// directoryMessage extracts a displayable message from a Directory error
func directoryMessage(err error, fallback string) string {
	var apiErr *directory.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, directory.ErrUnreachable):
		return MsgUnreachable
	}
	return fallback
}
