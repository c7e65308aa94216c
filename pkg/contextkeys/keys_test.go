package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUsername(ctx))
	assert.Empty(t, GetRouteName(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUsername(ctx, "admin")
	ctx = WithRouteName(ctx, "users.list")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "admin", GetUsername(ctx))
	assert.Equal(t, "users.list", GetRouteName(ctx))
}

func TestWrongTypeIgnored(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, 42)
	assert.Empty(t, GetRequestID(ctx))
}
