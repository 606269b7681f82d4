// Package cache provides the Redis-backed and in-memory settings stores.
package cache

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/botmint/chatstore"
)

// MemoryStore implements the Store interface using in-memory maps.
// It is useful for tests and cache-less deployments. Semantics mirror
// RedisStore, including the write-side-only username normalization.
type MemoryStore struct {
	mu        sync.RWMutex
	chats     map[int64]map[string]string
	users     map[int64]map[string]string
	usernames map[string]int64
	hits      uint64
	defaults  chatstore.Defaults
}

// NewMemoryStore creates an empty MemoryStore with the given default tables.
func NewMemoryStore(defaults chatstore.Defaults) *MemoryStore {
	return &MemoryStore{
		chats:     make(map[int64]map[string]string),
		users:     make(map[int64]map[string]string),
		usernames: make(map[string]int64),
		defaults:  defaults,
	}
}

// GetChatSetting returns the effective, coerced value of a chat setting.
func (s *MemoryStore) GetChatSetting(_ context.Context, chatID int64, setting string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	return effectiveSetting(s.chats[chatID], setting, s.defaults.Chat), nil
}

// SetChatSetting writes the raw value. Any setting name is accepted.
func (s *MemoryStore) SetChatSetting(_ context.Context, chatID int64, setting, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chats[chatID] == nil {
		s.chats[chatID] = make(map[string]string)
	}
	s.chats[chatID][setting] = value
	return nil
}

// GetUserSetting returns the effective, coerced value of a user setting.
func (s *MemoryStore) GetUserSetting(_ context.Context, userID int64, setting string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	return effectiveSetting(s.users[userID], setting, s.defaults.User), nil
}

// GetAllUserSettings returns the default table overlaid with the stored hash,
// every value coerced.
func (s *MemoryStore) GetAllUserSettings(_ context.Context, userID int64) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++

	stored := s.users[userID]
	out := make(map[string]any, len(s.defaults.User)+len(stored))
	for setting, d := range s.defaults.User {
		out[setting] = chatstore.Coerce(d)
	}
	for setting, v := range stored {
		out[setting] = chatstore.Coerce(v)
	}
	return out, nil
}

// ToggleUserSetting writes "off" when the current effective value is true,
// "on" otherwise.
func (s *MemoryStore) ToggleUserSetting(_ context.Context, userID int64, setting string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := effectiveSetting(s.users[userID], setting, s.defaults.User)
	next := "on"
	if chatstore.IsTrue(cur) {
		next = "off"
	}
	if s.users[userID] == nil {
		s.users[userID] = make(map[string]string)
	}
	s.users[userID][setting] = next
	return nil
}

// CacheUser records "@"+lowercased-username -> id. Users without a username
// are skipped.
func (s *MemoryStore) CacheUser(_ context.Context, user *chatstore.User) error {
	if user == nil {
		return chatstore.ErrInvalidInput
	}
	if user.Username == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames["@"+strings.ToLower(user.Username)] = user.ID
	return nil
}

// UserID looks up the reverse index by the exact key supplied.
func (s *MemoryStore) UserID(_ context.Context, username string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	id, ok := s.usernames[username]
	if !ok {
		return 0, chatstore.ErrNotFound
	}
	return id, nil
}

// SetKeepalive is a no-op; there is no connection to keep alive.
func (s *MemoryStore) SetKeepalive(_ context.Context) error {
	return nil
}

// ReusedTimes reports the number of reads served, as a decimal string.
func (s *MemoryStore) ReusedTimes(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.FormatUint(s.hits, 10), nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

func effectiveSetting(stored map[string]string, setting string, defaults map[string]string) any {
	if v, ok := stored[setting]; ok {
		return chatstore.Coerce(v)
	}
	if d, ok := defaults[setting]; ok {
		return chatstore.Coerce(d)
	}
	return nil
}
