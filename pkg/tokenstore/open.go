package tokenstore

import (
	"context"
	"fmt"

	"github.com/platinummonkey/warden/pkg/config"
	"github.com/platinummonkey/warden/pkg/observability"
)

// Open builds the backend selected by cfg, instrumented with metrics when non-nil
func Open(ctx context.Context, cfg config.TokenStoreConfig, metrics *observability.Metrics) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case config.BackendMemory:
		store = NewMemoryStore()
	case config.BackendFile:
		store = NewFileStore(cfg.FilePath)
	case config.BackendRedis:
		store, err = NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
	case config.BackendSQL:
		store, err = OpenSQLStore(ctx, cfg.SQLDriver, cfg.SQLDSN)
	default:
		return nil, fmt.Errorf("unknown token store backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(store, cfg.Backend, metrics), nil
}
