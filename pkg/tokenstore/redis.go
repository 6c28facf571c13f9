package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "evex:session:"

// Redis keeps one hash per browser session so every portal instance sees
// the same tokens. The hash expires after ttl without writes.
type Redis struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

func NewRedis(rdb redis.Cmdable, sid string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, key: Key(sid), ttl: ttl}
}

func RedisFactory(rdb redis.Cmdable, ttl time.Duration) Factory {
	return func(sid string) Store { return NewRedis(rdb, sid, ttl) }
}

func Key(sid string) string {
	return keyPrefix + sid
}

func (r *Redis) Load(ctx context.Context) (Tokens, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Tokens{}, fmt.Errorf("tokenstore: hgetall %s: %w", r.key, err)
	}
	return Tokens{Access: vals[AccessKey], Refresh: vals[RefreshKey]}, nil
}

func (r *Redis) Save(ctx context.Context, t Tokens) error {
	if err := r.rdb.HSet(ctx, r.key, AccessKey, t.Access, RefreshKey, t.Refresh).Err(); err != nil {
		return fmt.Errorf("tokenstore: hset %s: %w", r.key, err)
	}
	return r.touch(ctx)
}

func (r *Redis) SetAccess(ctx context.Context, access string) error {
	if err := r.rdb.HSet(ctx, r.key, AccessKey, access).Err(); err != nil {
		return fmt.Errorf("tokenstore: hset %s: %w", r.key, err)
	}
	return r.touch(ctx)
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("tokenstore: del %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) touch(ctx context.Context) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.rdb.Expire(ctx, r.key, r.ttl).Err(); err != nil {
		return fmt.Errorf("tokenstore: expire %s: %w", r.key, err)
	}
	return nil
}
