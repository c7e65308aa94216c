// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across warden must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/platinummonkey/warden/pkg/contextkeys"
//	ctx = contextkeys.WithRequestID(ctx, id)
//	id := contextkeys.GetRequestID(ctx)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: observability.EntryFromContext, console handlers
	// Type: string
	RequestIDKey Key = "request_id"

	// UsernameKey contains the username of the signed-in operator
	// Set by: guard.Middleware after an Allow decision
	// Used by: request logging
	// Type: string
	UsernameKey Key = "username"

	// RouteNameKey contains the name of the matched console route
	// Set by: guard.Middleware
	// Used by: request logging, guard metrics
	// Type: string
	RouteNameKey Key = "route_name"
)

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithUsername adds the operator username to the context
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

// GetUsername retrieves the operator username from context
func GetUsername(ctx context.Context) string {
	if username, ok := ctx.Value(UsernameKey).(string); ok {
		return username
	}
	return ""
}

// WithRouteName adds the matched route name to the context
func WithRouteName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, RouteNameKey, name)
}

// GetRouteName retrieves the matched route name from context
func GetRouteName(ctx context.Context) string {
	if name, ok := ctx.Value(RouteNameKey).(string); ok {
		return name
	}
	return ""
}
