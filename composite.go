// composite.go
package chatstore

import (
	"context"
)

// Composite prefers the relational backend for identity operations and
// degrades to the cache backend when the relational backend is absent or any
// call against it fails. All settings operations are delegated to the cache
// backend unchanged. Relational failures never escape a Composite method.
type Composite struct {
	cache      Store
	relational IdentityStore
	logger     Logger
}

// Option configures a Composite instance passed to New.
type Option func(*Composite)

// WithCache sets the required cache backend. Settings operations and the
// identity fallback path are served by it.
func WithCache(s Store) Option {
	return func(c *Composite) {
		c.cache = s
	}
}

// WithRelational sets the optional relational identity backend. A nil value
// leaves the Composite in cache-only mode.
func WithRelational(s IdentityStore) Option {
	return func(c *Composite) {
		c.relational = s
	}
}

// WithLogger sets the Logger used for degradation warnings.
func WithLogger(l Logger) Option {
	return func(c *Composite) {
		c.logger = l
	}
}

// New builds a Composite from the given options. It returns
// ErrCacheUnavailable when no cache backend was supplied.
func New(opts ...Option) (*Composite, error) {
	c := &Composite{
		logger: NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		return nil, ErrCacheUnavailable
	}
	return c, nil
}

// CacheUser records the user in the relational backend when one is present,
// falling back to the cache backend's reverse index on any failure.
//
// On relational success the cache reverse index is deliberately not written:
// while the relational backend is active the index only reflects writes made
// during earlier degraded periods.
func (c *Composite) CacheUser(ctx context.Context, user *User) error {
	if user == nil {
		return ErrInvalidInput
	}
	if c.relational != nil {
		err := c.relational.CacheUser(ctx, user)
		if err == nil {
			return nil
		}
		c.logger.Warn("relational cache_user failed, falling back to cache", "user_id", user.ID, "err", err)
	}
	return c.cache.CacheUser(ctx, user)
}

// UserID resolves a username via the relational backend first and falls back
// to the cache reverse index on any failure or miss. The username string is
// handed to the cache path exactly as supplied; callers must pass a form the
// servicing backend understands ("@"-prefixed and lower-cased for the cache).
func (c *Composite) UserID(ctx context.Context, username string) (int64, error) {
	if c.relational != nil {
		if id, err := c.relational.UserID(ctx, username); err == nil && id != 0 {
			return id, nil
		}
	}
	return c.cache.UserID(ctx, username)
}

// SetKeepalive refreshes the relational connection on a best-effort basis,
// then unconditionally refreshes the cache connection. Only the cache error
// is reported.
func (c *Composite) SetKeepalive(ctx context.Context) error {
	if c.relational != nil {
		if err := c.relational.SetKeepalive(ctx); err != nil {
			c.logger.Debug("relational keepalive failed", "err", err)
		}
	}
	return c.cache.SetKeepalive(ctx)
}

// ReusedTimes reports "Redis: <n>" from the cache backend, appending
// "\nPostgres: <m>" when a relational backend is present and its stat call
// returned a non-empty result without error. Relational backends that cannot
// measure reuse report a sentinel, which is still appended.
func (c *Composite) ReusedTimes(ctx context.Context) (string, error) {
	n, err := c.cache.ReusedTimes(ctx)
	if err != nil {
		return "", err
	}
	out := "Redis: " + n
	if c.relational != nil {
		if m, err := c.relational.ReusedTimes(ctx); err == nil && m != "" {
			out += "\nPostgres: " + m
		}
	}
	return out, nil
}

// Close closes both backends. The first error encountered is returned.
func (c *Composite) Close() error {
	var firstErr error
	if c.relational != nil {
		if err := c.relational.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// GetChatSetting delegates to the cache backend.
func (c *Composite) GetChatSetting(ctx context.Context, chatID int64, setting string) (any, error) {
	return c.cache.GetChatSetting(ctx, chatID, setting)
}

// SetChatSetting delegates to the cache backend.
func (c *Composite) SetChatSetting(ctx context.Context, chatID int64, setting, value string) error {
	return c.cache.SetChatSetting(ctx, chatID, setting, value)
}

// GetUserSetting delegates to the cache backend.
func (c *Composite) GetUserSetting(ctx context.Context, userID int64, setting string) (any, error) {
	return c.cache.GetUserSetting(ctx, userID, setting)
}

// GetAllUserSettings delegates to the cache backend.
func (c *Composite) GetAllUserSettings(ctx context.Context, userID int64) (map[string]any, error) {
	return c.cache.GetAllUserSettings(ctx, userID)
}

// ToggleUserSetting delegates to the cache backend.
func (c *Composite) ToggleUserSetting(ctx context.Context, userID int64, setting string) error {
	return c.cache.ToggleUserSetting(ctx, userID, setting)
}
