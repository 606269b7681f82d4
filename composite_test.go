package chatstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*Composite)(nil)

func newTestComposite(t *testing.T, cache Store, relational IdentityStore) *Composite {
	t.Helper()
	opts := []Option{WithCache(cache)}
	if relational != nil {
		opts = append(opts, WithRelational(relational))
	}
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresCache(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrCacheUnavailable)

	_, err = New(WithRelational(&mockIdentityStore{}))
	assert.ErrorIs(t, err, ErrCacheUnavailable)
}

func TestComposite_CacheUser_PrefersRelational(t *testing.T) {
	cache := newMockCacheStore()
	relational := &mockIdentityStore{}
	c := newTestComposite(t, cache, relational)

	user := &User{ID: 7, FirstName: "Ada", Username: "ada"}
	require.NoError(t, c.CacheUser(context.Background(), user))

	assert.Len(t, relational.cachedUsers, 1)
	// Relational success must not also populate the cache reverse index.
	assert.Empty(t, cache.cachedUsers)
}

func TestComposite_CacheUser_FallsBackOnRelationalError(t *testing.T) {
	cache := newMockCacheStore()
	relational := &mockIdentityStore{cacheUserErr: errors.New("connection reset")}
	c := newTestComposite(t, cache, relational)

	user := &User{ID: 7, FirstName: "Ada", Username: "ada"}
	require.NoError(t, c.CacheUser(context.Background(), user))

	assert.Empty(t, relational.cachedUsers)
	assert.Len(t, cache.cachedUsers, 1)
}

func TestComposite_CacheUser_CacheOnlyMode(t *testing.T) {
	cache := newMockCacheStore()
	c := newTestComposite(t, cache, nil)

	require.NoError(t, c.CacheUser(context.Background(), &User{ID: 7, FirstName: "Ada"}))
	assert.Len(t, cache.cachedUsers, 1)
}

func TestComposite_CacheUser_NilUser(t *testing.T) {
	c := newTestComposite(t, newMockCacheStore(), nil)
	assert.ErrorIs(t, c.CacheUser(context.Background(), nil), ErrInvalidInput)
}

func TestComposite_UserID_PrefersRelational(t *testing.T) {
	cache := newMockCacheStore()
	cache.ids["@bob"] = 1
	relational := &mockIdentityStore{ids: map[string]int64{"@bob": 2}}
	c := newTestComposite(t, cache, relational)

	id, err := c.UserID(context.Background(), "@bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestComposite_UserID_FallsBackOnRelationalFailure(t *testing.T) {
	cache := newMockCacheStore()
	cache.ids["@bob"] = 42

	t.Run("relational error", func(t *testing.T) {
		relational := &mockIdentityStore{userIDErr: errors.New("query timeout")}
		c := newTestComposite(t, cache, relational)

		id, err := c.UserID(context.Background(), "@bob")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("relational miss", func(t *testing.T) {
		relational := &mockIdentityStore{ids: map[string]int64{}}
		c := newTestComposite(t, cache, relational)

		id, err := c.UserID(context.Background(), "@bob")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("no relational store", func(t *testing.T) {
		c := newTestComposite(t, cache, nil)

		id, err := c.UserID(context.Background(), "@bob")
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})
}

func TestComposite_UserID_MissEverywhere(t *testing.T) {
	c := newTestComposite(t, newMockCacheStore(), &mockIdentityStore{ids: map[string]int64{}})
	_, err := c.UserID(context.Background(), "@nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComposite_SetKeepalive(t *testing.T) {
	t.Run("relational failure is ignored", func(t *testing.T) {
		cache := newMockCacheStore()
		relational := &mockIdentityStore{keepaliveErr: errors.New("gone away")}
		c := newTestComposite(t, cache, relational)

		require.NoError(t, c.SetKeepalive(context.Background()))
		assert.Equal(t, 1, relational.keepaliveCalls)
		assert.Equal(t, 1, cache.keepaliveCalls)
	})

	t.Run("cache failure is returned", func(t *testing.T) {
		cache := newMockCacheStore()
		cache.keepaliveErr = errors.New("redis down")
		c := newTestComposite(t, cache, nil)

		assert.Error(t, c.SetKeepalive(context.Background()))
	})
}

func TestComposite_ReusedTimes(t *testing.T) {
	t.Run("cache only", func(t *testing.T) {
		cache := newMockCacheStore()
		cache.reused = "3"
		c := newTestComposite(t, cache, nil)

		out, err := c.ReusedTimes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Redis: 3", out)
	})

	t.Run("relational sentinel is appended", func(t *testing.T) {
		cache := newMockCacheStore()
		cache.reused = "3"
		relational := &mockIdentityStore{reused: "Unknown"}
		c := newTestComposite(t, cache, relational)

		out, err := c.ReusedTimes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Redis: 3\nPostgres: Unknown", out)
	})

	t.Run("relational error suppresses the line", func(t *testing.T) {
		cache := newMockCacheStore()
		cache.reused = "3"
		relational := &mockIdentityStore{reusedErr: errors.New("boom")}
		c := newTestComposite(t, cache, relational)

		out, err := c.ReusedTimes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Redis: 3", out)
	})

	t.Run("relational empty result suppresses the line", func(t *testing.T) {
		cache := newMockCacheStore()
		cache.reused = "3"
		relational := &mockIdentityStore{reused: ""}
		c := newTestComposite(t, cache, relational)

		out, err := c.ReusedTimes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Redis: 3", out)
	})

	t.Run("cache error propagates", func(t *testing.T) {
		cache := newMockCacheStore()
		cache.reusedErr = errors.New("redis down")
		c := newTestComposite(t, cache, nil)

		_, err := c.ReusedTimes(context.Background())
		assert.Error(t, err)
	})
}

func TestComposite_SettingsDelegation(t *testing.T) {
	cache := newMockCacheStore()
	c := newTestComposite(t, cache, &mockIdentityStore{})
	ctx := context.Background()

	require.NoError(t, c.SetChatSetting(ctx, 1, "welcome", "on"))
	v, err := c.GetChatSetting(ctx, 1, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "on", v)

	require.NoError(t, c.ToggleUserSetting(ctx, 9, "reports"))
	assert.Contains(t, cache.writes, "toggle:user:9:reports")

	all, err := c.GetAllUserSettings(ctx, 9)
	require.NoError(t, err)
	assert.NotNil(t, all)
}

func TestComposite_Close(t *testing.T) {
	cache := newMockCacheStore()
	relational := &mockIdentityStore{closeErr: errors.New("close failed")}
	c := newTestComposite(t, cache, relational)

	err := c.Close()
	assert.Error(t, err)
	assert.True(t, relational.closed)
	assert.True(t, cache.closed)
}
