package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createTokensTable = `CREATE TABLE IF NOT EXISTS warden_tokens (
	token_key TEXT PRIMARY KEY,
	token_value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

const upsertToken = `INSERT INTO warden_tokens (token_key, token_value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (token_key) DO UPDATE SET token_value = excluded.token_value, updated_at = excluded.updated_at`

// SQLStore keeps tokens in the warden_tokens table
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLStore opens driver/dsn ("sqlite3" or "postgres") and prepares the schema
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	store, err := NewSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps db and creates the table if needed
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createTokensTable); err != nil {
		return nil, fmt.Errorf("failed to create warden_tokens table: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Load(ctx context.Context) (Tokens, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token_key, token_value FROM warden_tokens WHERE token_key IN ($1, $2)`,
		KeyAccess, KeyRefresh)
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens Tokens
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Tokens{}, fmt.Errorf("failed to scan token: %w", err)
		}
		switch key {
		case KeyAccess:
			tokens.Access = value
		case KeyRefresh:
			tokens.Refresh = value
		}
	}
	if err := rows.Err(); err != nil {
		return Tokens{}, fmt.Errorf("failed to read tokens: %w", err)
	}
	return tokens, nil
}

func (s *SQLStore) Save(ctx context.Context, tokens Tokens) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	if _, err := tx.ExecContext(ctx, upsertToken, KeyAccess, tokens.Access, now); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsertToken, KeyRefresh, tokens.Refresh, now); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tokens: %w", err)
	}
	return nil
}

func (s *SQLStore) SaveAccess(ctx context.Context, access string) error {
	if _, err := s.db.ExecContext(ctx, upsertToken, KeyAccess, access, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM warden_tokens WHERE token_key IN ($1, $2)`,
		KeyAccess, KeyRefresh); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
