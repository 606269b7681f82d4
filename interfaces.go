// Package chatstore defines interfaces for the settings and identity storage backends.
package chatstore

import "context"

// IdentityStore defines the identity-related operations every backend
// provides. Relational backends implement only this subset.
type IdentityStore interface {
	// CacheUser records a user observed in an update. Implementations that
	// treat this as fire-and-forget must document it.
	CacheUser(ctx context.Context, user *User) error
	// UserID resolves a username to a numeric id. A miss is reported as
	// ErrNotFound, never as a zero id with a nil error.
	UserID(ctx context.Context, username string) (int64, error)
	// SetKeepalive returns the backend connection to its pool or refreshes
	// its liveness, per the underlying client's contract.
	SetKeepalive(ctx context.Context) error
	// ReusedTimes reports connection-reuse statistics as a decimal string,
	// or a fixed sentinel when the backend cannot measure them.
	ReusedTimes(ctx context.Context) (string, error)
	Close() error
}

// Store is the full settings-and-identity contract. It is implemented by the
// cache backends and by Composite.
type Store interface {
	IdentityStore

	// GetChatSetting returns the effective value of a chat setting, falling
	// back to the configured default when unset. The result is passed
	// through Coerce, so it is true/false for recognized tokens and the raw
	// stored value otherwise.
	GetChatSetting(ctx context.Context, chatID int64, setting string) (any, error)
	// SetChatSetting writes the raw value. Setting names are not validated
	// against a known set.
	SetChatSetting(ctx context.Context, chatID int64, setting, value string) error
	// GetUserSetting is GetChatSetting against the per-user hash and the
	// user default table.
	GetUserSetting(ctx context.Context, userID int64, setting string) (any, error)
	// GetAllUserSettings returns every setting in the user default table,
	// overlaid with whatever extra keys the stored hash carries. Every value
	// is coerced.
	GetAllUserSettings(ctx context.Context, userID int64) (map[string]any, error)
	// ToggleUserSetting writes "off" when the current effective value is
	// true, and "on" otherwise.
	ToggleUserSetting(ctx context.Context, userID int64, setting string) error
}
