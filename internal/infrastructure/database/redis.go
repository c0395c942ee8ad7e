package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct{ *redis.Client }

func NewRedis(addr, pass string, db int) *RedisClient {
	return &RedisClient{redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (c *RedisClient) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }

// Helpers
func SetNX(ctx context.Context, r *RedisClient, key string, val any, ttl time.Duration) (bool, error) {
	return r.SetNX(ctx, key, val, ttl).Result()
}

// releaseScript deletes the key only while it still holds the caller's value.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Release drops a lock taken with SetNX. It reports false when the lock had
// already expired or belongs to another holder.
func Release(ctx context.Context, r *RedisClient, key, val string) (bool, error) {
	n, err := releaseScript.Run(ctx, r.Client, []string{key}, val).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
