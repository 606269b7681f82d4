// identity.go holds the engine-independent identity operations shared by the
// relational stores. Each store supplies its own connection and literal
// escaping.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/botmint/chatstore"
)

const (
	selectOwnerSQL = `SELECT id FROM users WHERE lower(username) = lower({username})`

	clearUsernameSQL = `UPDATE users SET username = NULL WHERE lower(username) = lower({username}) AND id != {id}`
)

type identitySQL struct {
	db     *sql.DB
	logger chatstore.Logger
	escape func(string) string
}

// cacheUser upserts the user record. When the input carries a username that
// another row already owns case-insensitively, that row's username is nulled
// out first so the new owner can claim it; both statements run in one
// transaction. Query failures are logged and swallowed: the call always
// reports success, so callers must not use its return value for error
// detection.
func (s *identitySQL) cacheUser(ctx context.Context, user *chatstore.User) error {
	if user == nil {
		return chatstore.ErrInvalidInput
	}

	fields, cols := userFields(user, s.escape)

	var query string
	err := func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			query = ""
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if user.Username != "" {
			query = interpolate(selectOwnerSQL, fields)
			var owner int64
			switch err := tx.QueryRowContext(ctx, query).Scan(&owner); {
			case err == sql.ErrNoRows:
				// username is free
			case err != nil:
				return err
			case owner != user.ID:
				query = interpolate(clearUsernameSQL, fields)
				if _, err := tx.ExecContext(ctx, query); err != nil {
					return err
				}
			}
		}

		query = interpolate(userUpsertSQL(cols), fields)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
		return tx.Commit()
	}()
	if err != nil {
		s.logger.Error("user upsert failed", "query", query, "err", err)
	}
	return nil
}

// userID resolves a username, stripping a leading "@" and matching
// case-insensitively. A miss is reported as ErrNotFound.
func (s *identitySQL) userID(ctx context.Context, username string) (int64, error) {
	handle := strings.TrimPrefix(username, "@")
	query := interpolate(selectOwnerSQL, map[string]any{"username": s.escape(handle)})

	var id int64
	err := s.db.QueryRowContext(ctx, query).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, chatstore.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up username %q: %w", username, err)
	}
	return id, nil
}
