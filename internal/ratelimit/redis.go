package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then admits the hit only
// while the count stays under the limit. Runs atomically on the server.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// RedisLimiter shares counters between instances through a sorted set per key.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	policy Policy
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, name string, p Policy) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:" + name + ":",
		policy: p,
		now:    time.Now,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := slidingWindow.Run(ctx, r.client,
		[]string{r.prefix + key},
		r.now().UnixMilli(),
		r.policy.Window.Milliseconds(),
		r.policy.Max,
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit: %w", err)
	}
	return res == 1, nil
}
