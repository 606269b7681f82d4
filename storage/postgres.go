// Package storage provides a PostgreSQL-based implementation of the
// IdentityStore interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/botmint/chatstore"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const postgresCreateUsersSQL = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		is_bot BOOLEAN NOT NULL DEFAULT FALSE,
		first_name TEXT NOT NULL,
		last_name TEXT,
		username TEXT,
		language_code TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_users_username_lower
	ON users (lower(username));
`

// PostgresStore implements the IdentityStore interface using PostgreSQL.
// It is the authoritative identity backend: usernames are unique
// case-insensitively, enforced by nulling out the previous owner before each
// upsert.
type PostgresStore struct {
	identitySQL
}

// NewPostgresStore connects to PostgreSQL, verifies the connection and runs
// migrations. Construction fails hard when the database is unreachable;
// callers that want graceful degradation must guard this call themselves.
func NewPostgresStore(connString string, logger chatstore.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = chatstore.NewDefaultLogger()
	}

	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	store := &PostgresStore{identitySQL{
		db:     db,
		logger: logger,
		escape: pq.QuoteLiteral,
	}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(postgresCreateUsersSQL)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// CacheUser upserts a user record, resolving case-insensitive username
// collisions in favor of the incoming user. Fire-and-forget: query failures
// are logged and the call still reports success.
func (s *PostgresStore) CacheUser(ctx context.Context, user *chatstore.User) error {
	return s.cacheUser(ctx, user)
}

// UserID resolves a username ("@"-prefix optional, case-insensitive) to an
// id. Returns ErrNotFound on a miss.
func (s *PostgresStore) UserID(ctx context.Context, username string) (int64, error) {
	id, err := s.userID(ctx, username)
	if err != nil && err != chatstore.ErrNotFound {
		return 0, fmt.Errorf("postgres: %w", err)
	}
	return id, err
}

// SetKeepalive verifies the connection, returning it to the pool.
func (s *PostgresStore) SetKeepalive(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: keepalive failed: %w", err)
	}
	return nil
}

// ReusedTimes always reports the "Unknown" sentinel: database/sql does not
// expose connection-reuse statistics. This is a deliberate stub.
func (s *PostgresStore) ReusedTimes(_ context.Context) (string, error) {
	return reuseStatsUnknown, nil
}

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
