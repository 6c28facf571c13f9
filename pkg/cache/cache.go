package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect opens the shared redis client used by the token store and broker.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 3

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// Inflight marks an action as running so a second click is refused until
// the first call returns. Acquire hands back a token; Release only frees the
// key while that token still owns it.
type Inflight interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

func Key(sid, action string, id int) string {
	return fmt.Sprintf("evex:inflight:%s:%s:%d", sid, action, id)
}

// releaseScript deletes KEYS[1] only when it still holds ARGV[1].
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (r *Redis) Release(ctx context.Context, key, token string) error {
	return r.client.Eval(ctx, releaseScript, []string{key}, token).Err()
}

type hold struct {
	token   string
	expires time.Time
}

type Memory struct {
	mu    sync.Mutex
	held  map[string]hold
	now   func() time.Time
	token func() string
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]hold), now: time.Now, token: uuid.NewString}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if h, ok := m.held[key]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	h := hold{token: m.token(), expires: now.Add(ttl)}
	m.held[key] = h
	return h.token, true, nil
}

func (m *Memory) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.held[key]; ok && h.token == token {
		delete(m.held, key)
	}
	return nil
}
