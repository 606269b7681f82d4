// cache/redis.go
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/botmint/chatstore"
)

// usernamesKey is the reverse index hash: "@handle" -> numeric id.
const usernamesKey = "bot:usernames"

func chatKey(chatID int64) string {
	return fmt.Sprintf("chat:%d:settings", chatID)
}

func userKey(userID int64) string {
	return fmt.Sprintf("user:%d:settings", userID)
}

// redisClient is the subset of redis.Client commands the store uses.
// It exists so tests can substitute a mock client.
type redisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore implements the Store interface over Redis hashes.
// Settings live in chat:<id>:settings and user:<id>:settings; the username
// reverse index lives in bot:usernames.
type RedisStore struct {
	client   redisClient
	stats    func() *redis.PoolStats
	defaults chatstore.Defaults
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
// The default tables are captured at construction and never mutated.
func NewRedisStore(addr, password string, db int, defaults chatstore.Defaults) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return &RedisStore{
		client:   client,
		stats:    client.PoolStats,
		defaults: defaults,
	}, nil
}

// GetChatSetting reads one field from the chat's settings hash, substituting
// the configured default when the field is absent. The result is coerced.
func (s *RedisStore) GetChatSetting(ctx context.Context, chatID int64, setting string) (any, error) {
	return s.getSetting(ctx, chatKey(chatID), setting, s.defaults.Chat)
}

// SetChatSetting writes the raw value into the chat's settings hash. Any
// setting name is accepted.
func (s *RedisStore) SetChatSetting(ctx context.Context, chatID int64, setting, value string) error {
	if err := s.client.HSet(ctx, chatKey(chatID), setting, value).Err(); err != nil {
		return fmt.Errorf("redis: failed to set chat setting %q: %w", setting, err)
	}
	return nil
}

// GetUserSetting reads one field from the user's settings hash, substituting
// the configured private-settings default when the field is absent.
func (s *RedisStore) GetUserSetting(ctx context.Context, userID int64, setting string) (any, error) {
	return s.getSetting(ctx, userKey(userID), setting, s.defaults.User)
}

func (s *RedisStore) getSetting(ctx context.Context, key, setting string, defaults map[string]string) (any, error) {
	v, err := s.client.HGet(ctx, key, setting).Result()
	if err == redis.Nil {
		if d, ok := defaults[setting]; ok {
			return chatstore.Coerce(d), nil
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get setting %q: %w", setting, err)
	}
	return chatstore.Coerce(v), nil
}

// GetAllUserSettings returns every setting in the user default table overlaid
// with the stored hash, which may carry extra keys. Every value is coerced.
func (s *RedisStore) GetAllUserSettings(ctx context.Context, userID int64) (map[string]any, error) {
	stored, err := s.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get settings for user %d: %w", userID, err)
	}

	out := make(map[string]any, len(s.defaults.User)+len(stored))
	for setting, d := range s.defaults.User {
		out[setting] = chatstore.Coerce(d)
	}
	for setting, v := range stored {
		out[setting] = chatstore.Coerce(v)
	}
	return out, nil
}

// ToggleUserSetting flips a user setting: "off" when the current effective
// value is true, "on" otherwise. An unset or unrecognized value therefore
// toggles to "on" unless its default coerces to true.
func (s *RedisStore) ToggleUserSetting(ctx context.Context, userID int64, setting string) error {
	cur, err := s.GetUserSetting(ctx, userID, setting)
	if err != nil {
		return err
	}
	next := "on"
	if chatstore.IsTrue(cur) {
		next = "off"
	}
	if err := s.client.HSet(ctx, userKey(userID), setting, next).Err(); err != nil {
		return fmt.Errorf("redis: failed to toggle setting %q: %w", setting, err)
	}
	return nil
}

// CacheUser records "@"+lowercased-username -> id in the reverse index.
// Users without a username are skipped.
func (s *RedisStore) CacheUser(ctx context.Context, user *chatstore.User) error {
	if user == nil {
		return chatstore.ErrInvalidInput
	}
	if user.Username == "" {
		return nil
	}
	handle := "@" + strings.ToLower(user.Username)
	if err := s.client.HSet(ctx, usernamesKey, handle, user.ID).Err(); err != nil {
		return fmt.Errorf("redis: failed to cache user %d: %w", user.ID, err)
	}
	return nil
}

// UserID looks up the reverse index by the exact key supplied. Normalization
// happens on write only; callers must pass the "@"-prefixed, lower-cased
// form. A missing or non-numeric entry is reported as ErrNotFound.
func (s *RedisStore) UserID(ctx context.Context, username string) (int64, error) {
	v, err := s.client.HGet(ctx, usernamesKey, username).Result()
	if err == redis.Nil {
		return 0, chatstore.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: failed to look up username %q: %w", username, err)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, chatstore.ErrNotFound
	}
	return id, nil
}

// SetKeepalive pings the server, returning the connection to the pool.
func (s *RedisStore) SetKeepalive(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: keepalive failed: %w", err)
	}
	return nil
}

// ReusedTimes reports the pool's connection-reuse count (pool hits) as a
// decimal string.
func (s *RedisStore) ReusedTimes(_ context.Context) (string, error) {
	if s.stats == nil {
		return "0", nil
	}
	return strconv.FormatUint(uint64(s.stats().Hits), 10), nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
