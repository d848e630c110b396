package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisFixedWindowLimiter shares counters across replicas.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisFixedWindowLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if l.client == nil {
		return Decision{}, errors.New("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	windowMS := int64(window / time.Millisecond)
	if windowMS <= 0 {
		windowMS = 1000
	}
	raw, err := redisFixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, windowMS).Result()
	if err != nil {
		return Decision{}, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Decision{}, errors.New("unexpected redis script response type")
	}

	count, err := parseRedisInt64(values[0])
	if err != nil {
		return Decision{}, err
	}
	ttlMS, err := parseRedisInt64(values[1])
	if err != nil {
		return Decision{}, err
	}
	if ttlMS <= 0 {
		ttlMS = windowMS
	}
	ttl := time.Duration(ttlMS) * time.Millisecond
	d := Decision{
		Allowed:   count <= int64(limit),
		Remaining: int(max(int64(limit)-count, 0)),
		ResetAt:   l.now().Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}

func parseRedisInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("redis integer overflows int64: %d", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case string:
		return 0, fmt.Errorf("unexpected string redis response: %s", n)
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}
