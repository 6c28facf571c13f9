package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "evex:inflight:abc:register:7", Key("abc", "register", 7))
}

func TestRedisInflight(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := NewRedis(rdb)
	key := Key("abc", "register", 7)
	ctx := context.Background()

	mock.Regexp().ExpectSetNX(key, `.+`, 30*time.Second).SetVal(true)
	token, ok, err := r.Acquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	mock.Regexp().ExpectSetNX(key, `.+`, 30*time.Second).SetVal(false)
	_, ok, err = r.Acquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectEval(releaseScript, []string{key}, token).SetVal(int64(1))
	require.NoError(t, r.Release(ctx, key, token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisInflight_StaleTokenKeepsNewHolder(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	r := NewRedis(rdb)
	key := Key("abc", "register", 7)

	// the key now belongs to someone else, so the script deletes nothing
	mock.ExpectEval(releaseScript, []string{key}, "stale").SetVal(int64(0))
	require.NoError(t, r.Release(context.Background(), key, "stale"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryInflight(t *testing.T) {
	m := NewMemory()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	first, ok, _ := m.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)
	_, ok, _ = m.Acquire(ctx, "k", time.Minute)
	assert.False(t, ok)

	clock = clock.Add(2 * time.Minute)
	second, ok, _ := m.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok, "expired lock is reclaimed")
	assert.NotEqual(t, first, second)

	// the first holder finishing late must not free the second hold
	require.NoError(t, m.Release(ctx, "k", first))
	_, ok, _ = m.Acquire(ctx, "k", time.Minute)
	assert.False(t, ok)

	require.NoError(t, m.Release(ctx, "k", second))
	_, ok, _ = m.Acquire(ctx, "k", time.Minute)
	assert.True(t, ok)
}
