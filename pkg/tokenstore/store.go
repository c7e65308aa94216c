package tokenstore

import "context"

// Persisted key names shared by every backend
const (
	KeyAccess  = "access_token"
	KeyRefresh = "refresh_token"
)

// Tokens is the persisted credential pair. Empty strings mean absent.
type Tokens struct {
	Access  string `yaml:"access_token,omitempty"`
	Refresh string `yaml:"refresh_token,omitempty"`
}

// Complete reports whether both tokens are present
func (t Tokens) Complete() bool {
	return t.Access != "" && t.Refresh != ""
}

// IsZero reports whether neither token is present
func (t Tokens) IsZero() bool {
	return t.Access == "" && t.Refresh == ""
}

// Store is durable storage for the token pair.
// Load never fails for missing data; it returns zero Tokens instead.
type Store interface {
	Load(ctx context.Context) (Tokens, error)
	// Save overwrites both tokens
	Save(ctx context.Context, tokens Tokens) error
	// SaveAccess overwrites only the access token
	SaveAccess(ctx context.Context, access string) error
	// Clear removes both tokens
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
