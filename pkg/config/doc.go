// Package config loads warden configuration from environment variables.
//
// # Configuration Structure
//
// Directory settings:
//
//	WARDEN_API_URL="http://localhost:8000/api"
//	WARDEN_HTTP_TIMEOUT="15s"
//	WARDEN_CACHE_TTL="5m"
//	WARDEN_CACHE_SIZE="256"
//
// Session settings:
//
//	WARDEN_REFRESH_LEEWAY="60s"
//
// Token store settings:
//
//	WARDEN_TOKEN_STORE="file"  # file, redis, sql, memory
//	WARDEN_TOKEN_FILE="$HOME/.config/warden/tokens.yaml"
//	WARDEN_REDIS_URL="redis://localhost:6379/0"
//	WARDEN_REDIS_KEY_PREFIX="warden:"
//	WARDEN_SQL_DRIVER="sqlite3"  # sqlite3, postgres
//	WARDEN_SQL_DSN="file:warden.db"
//
// Console settings:
//
//	WARDEN_CONSOLE_HOST="127.0.0.1"
//	WARDEN_CONSOLE_PORT="8088"
//	WARDEN_METRICS_PORT="9098"
//
// Observability settings:
//
//	WARDEN_LOG_LEVEL="info"
//	WARDEN_LOG_FORMAT="text"
//	WARDEN_METRICS_ENABLED="true"
//	WARDEN_OTEL_ENABLED="false"
//	WARDEN_OTEL_ENDPOINT="localhost:4317"
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// LoadConfig validates the result; CLI flags may override individual fields and
// call Validate again.
package config
