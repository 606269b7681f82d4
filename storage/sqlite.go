// Package storage provides a SQLite-based implementation of the
// IdentityStore interface.
package storage

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/botmint/chatstore"
)

const sqliteCreateUsersSQL = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		is_bot BOOLEAN NOT NULL DEFAULT 0,
		first_name TEXT NOT NULL,
		last_name TEXT,
		username TEXT,
		language_code TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_users_username_lower
	ON users (lower(username));
`

// SQLiteStore implements the IdentityStore interface using SQLite. It offers
// the same identity contract as PostgresStore for single-node deployments
// that have no PostgreSQL available.
type SQLiteStore struct {
	identitySQL
}

// NewSQLiteStore opens the SQLite database at the given path, verifies the
// connection and runs migrations. Construction fails hard on any error.
func NewSQLiteStore(dbPath string, logger chatstore.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = chatstore.NewDefaultLogger()
	}

	db, err := sqlOpenFunc("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	store := &SQLiteStore{identitySQL{
		db:     db,
		logger: logger,
		escape: quoteSQLiteLiteral,
	}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return store, nil
}

// quoteSQLiteLiteral escapes a string for inclusion in a SQLite statement by
// doubling embedded single quotes.
func quoteSQLiteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteCreateUsersSQL)
	if err != nil {
		return fmt.Errorf("sqlite: failed to execute create table statement: %w", err)
	}
	return nil
}

// CacheUser upserts a user record with the same collision resolution and
// fire-and-forget semantics as PostgresStore.CacheUser.
func (s *SQLiteStore) CacheUser(ctx context.Context, user *chatstore.User) error {
	return s.cacheUser(ctx, user)
}

// UserID resolves a username ("@"-prefix optional, case-insensitive) to an
// id. Returns ErrNotFound on a miss.
func (s *SQLiteStore) UserID(ctx context.Context, username string) (int64, error) {
	id, err := s.userID(ctx, username)
	if err != nil && err != chatstore.ErrNotFound {
		return 0, fmt.Errorf("sqlite: %w", err)
	}
	return id, err
}

// SetKeepalive verifies the connection.
func (s *SQLiteStore) SetKeepalive(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: keepalive failed: %w", err)
	}
	return nil
}

// ReusedTimes always reports the "Unknown" sentinel, matching the other
// relational store.
func (s *SQLiteStore) ReusedTimes(_ context.Context) (string, error) {
	return reuseStatsUnknown, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
