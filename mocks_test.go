package chatstore

import (
	"context"
	"fmt"
)

// mockIdentityStore implements IdentityStore with injectable failures.
type mockIdentityStore struct {
	cachedUsers    []*User
	cacheUserErr   error
	ids            map[string]int64
	userIDErr      error
	keepaliveCalls int
	keepaliveErr   error
	reused         string
	reusedErr      error
	closed         bool
	closeErr       error
}

func (m *mockIdentityStore) CacheUser(_ context.Context, user *User) error {
	if m.cacheUserErr != nil {
		return m.cacheUserErr
	}
	m.cachedUsers = append(m.cachedUsers, user)
	return nil
}

func (m *mockIdentityStore) UserID(_ context.Context, username string) (int64, error) {
	if m.userIDErr != nil {
		return 0, m.userIDErr
	}
	id, ok := m.ids[username]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

func (m *mockIdentityStore) SetKeepalive(_ context.Context) error {
	m.keepaliveCalls++
	return m.keepaliveErr
}

func (m *mockIdentityStore) ReusedTimes(_ context.Context) (string, error) {
	return m.reused, m.reusedErr
}

func (m *mockIdentityStore) Close() error {
	m.closed = true
	return m.closeErr
}

// mockCacheStore implements the full Store interface over plain maps,
// recording writes so tests can assert delegation.
type mockCacheStore struct {
	mockIdentityStore
	settings map[string]any
	writes   []string
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{
		mockIdentityStore: mockIdentityStore{ids: make(map[string]int64)},
		settings:          make(map[string]any),
	}
}

func (m *mockCacheStore) GetChatSetting(_ context.Context, chatID int64, setting string) (any, error) {
	return m.settings[fmt.Sprintf("chat:%d:%s", chatID, setting)], nil
}

func (m *mockCacheStore) SetChatSetting(_ context.Context, chatID int64, setting, value string) error {
	key := fmt.Sprintf("chat:%d:%s", chatID, setting)
	m.settings[key] = value
	m.writes = append(m.writes, key+"="+value)
	return nil
}

func (m *mockCacheStore) GetUserSetting(_ context.Context, userID int64, setting string) (any, error) {
	return m.settings[fmt.Sprintf("user:%d:%s", userID, setting)], nil
}

func (m *mockCacheStore) GetAllUserSettings(_ context.Context, userID int64) (map[string]any, error) {
	out := make(map[string]any)
	prefix := fmt.Sprintf("user:%d:", userID)
	for k, v := range m.settings {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = v
		}
	}
	return out, nil
}

func (m *mockCacheStore) ToggleUserSetting(_ context.Context, userID int64, setting string) error {
	m.writes = append(m.writes, fmt.Sprintf("toggle:user:%d:%s", userID, setting))
	return nil
}
