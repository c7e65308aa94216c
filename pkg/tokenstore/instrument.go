package tokenstore

import (
	"context"

	"github.com/platinummonkey/warden/pkg/observability"
)

type instrumented struct {
	Store
	backend string
	metrics *observability.Metrics
}

// Instrument counts every call on store by backend, operation and status.
// A nil metrics returns store unchanged.
func Instrument(store Store, backend string, metrics *observability.Metrics) Store {
	if metrics == nil {
		return store
	}
	return &instrumented{Store: store, backend: backend, metrics: metrics}
}

func (s *instrumented) Load(ctx context.Context) (Tokens, error) {
	tokens, err := s.Store.Load(ctx)
	s.metrics.RecordTokenStoreOperation(s.backend, "load", err)
	return tokens, err
}

func (s *instrumented) Save(ctx context.Context, tokens Tokens) error {
	err := s.Store.Save(ctx, tokens)
	s.metrics.RecordTokenStoreOperation(s.backend, "save", err)
	return err
}

func (s *instrumented) SaveAccess(ctx context.Context, access string) error {
	err := s.Store.SaveAccess(ctx, access)
	s.metrics.RecordTokenStoreOperation(s.backend, "save_access", err)
	return err
}

func (s *instrumented) Clear(ctx context.Context) error {
	err := s.Store.Clear(ctx)
	s.metrics.RecordTokenStoreOperation(s.backend, "clear", err)
	return err
}
