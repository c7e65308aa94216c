// Package tokenstore persists the access/refresh token pair between runs.
//
// The pair lives under the keys "access_token" and "refresh_token" and the two
// are always cleared together. Backends:
//
//   - MemoryStore: process-local, used by tests and the "memory" setting
//   - FileStore: YAML file written atomically with 0600 permissions
//   - RedisStore: two keys under a configurable prefix, written in MULTI/EXEC
//   - SQLStore: one table, upserted in a single transaction (sqlite3 or postgres)
//
// Open builds the backend selected in config.TokenStoreConfig; Instrument wraps
// any Store with Prometheus counters.
package tokenstore
