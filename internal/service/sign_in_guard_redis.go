package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisSignInBumpScript = redis.NewScript(`
local now_ms = tonumber(ARGV[1])
local base_ms = tonumber(ARGV[2])
local multiplier = tonumber(ARGV[3])
local max_ms = tonumber(ARGV[4])
local reset_ms = tonumber(ARGV[5])
local free_attempts = tonumber(ARGV[6])

local key = KEYS[1]
local fail_count = tonumber(redis.call("HGET", key, "fail_count") or "0")
local last_failure_ms = tonumber(redis.call("HGET", key, "last_failure_ms") or "0")

if last_failure_ms == 0 or (now_ms - last_failure_ms) > reset_ms then
  fail_count = 0
end

fail_count = fail_count + 1
local delay = 0
if fail_count > free_attempts then
  delay = math.floor(base_ms * (multiplier ^ (fail_count - free_attempts - 1)))
end
if delay > max_ms then
  delay = max_ms
end

redis.call("HSET", key, "fail_count", tostring(fail_count), "last_failure_ms", tostring(now_ms), "cooldown_until_ms", tostring(now_ms + delay))
redis.call("PEXPIRE", key, reset_ms + delay + 60000)
return delay
`)

// RedisSignInGuard shares failure counters between API instances.
type RedisSignInGuard struct {
	client redis.UniversalClient
	prefix string
	policy SignInGuardPolicy
	now    func() time.Time
}

func NewRedisSignInGuard(client redis.UniversalClient, prefix string, policy SignInGuardPolicy) *RedisSignInGuard {
	if prefix == "" {
		prefix = "sign_in_guard"
	}
	return &RedisSignInGuard{
		client: client,
		prefix: prefix,
		policy: normalizeSignInGuardPolicy(policy),
		now:    time.Now,
	}
}

func (g *RedisSignInGuard) Check(ctx context.Context, email, ip string) (time.Duration, error) {
	now := g.now().UTC()
	emailDelay, err := g.cooldownForKey(ctx, g.stateKey("email", normalizeSignInEmail(email)), now)
	if err != nil {
		return 0, err
	}
	ipDelay, err := g.cooldownForKey(ctx, g.stateKey("ip", normalizeSignInIP(ip)), now)
	if err != nil {
		return 0, err
	}
	return max(emailDelay, ipDelay), nil
}

func (g *RedisSignInGuard) RegisterFailure(ctx context.Context, email, ip string) (time.Duration, error) {
	nowMS := g.now().UTC().UnixMilli()
	emailDelay, err := g.bumpKey(ctx, g.stateKey("email", normalizeSignInEmail(email)), nowMS)
	if err != nil {
		return 0, err
	}
	ipDelay, err := g.bumpKey(ctx, g.stateKey("ip", normalizeSignInIP(ip)), nowMS)
	if err != nil {
		return 0, err
	}
	return max(emailDelay, ipDelay), nil
}

func (g *RedisSignInGuard) Reset(ctx context.Context, email, _ string) error {
	return g.client.Del(ctx, g.stateKey("email", normalizeSignInEmail(email))).Err()
}

func (g *RedisSignInGuard) bumpKey(ctx context.Context, key string, nowMS int64) (time.Duration, error) {
	result, err := redisSignInBumpScript.Run(
		ctx,
		g.client,
		[]string{key},
		nowMS,
		g.policy.BaseDelay.Milliseconds(),
		g.policy.Multiplier,
		g.policy.MaxDelay.Milliseconds(),
		g.policy.ResetWindow.Milliseconds(),
		g.policy.FreeAttempts,
	).Result()
	if err != nil {
		return 0, err
	}
	delayMS, err := parseRedisInt64(result)
	if err != nil {
		return 0, err
	}
	return time.Duration(max(delayMS, 0)) * time.Millisecond, nil
}

func (g *RedisSignInGuard) cooldownForKey(ctx context.Context, key string, now time.Time) (time.Duration, error) {
	values, err := g.client.HMGet(ctx, key, "last_failure_ms", "cooldown_until_ms").Result()
	if err != nil {
		return 0, err
	}
	if len(values) != 2 || values[0] == nil || values[1] == nil {
		return 0, nil
	}
	lastFailureMS, err := parseRedisInt64(values[0])
	if err != nil {
		return 0, err
	}
	cooldownUntilMS, err := parseRedisInt64(values[1])
	if err != nil {
		return 0, err
	}
	nowMS := now.UnixMilli()
	if nowMS-lastFailureMS > g.policy.ResetWindow.Milliseconds() || cooldownUntilMS <= nowMS {
		return 0, nil
	}
	return time.Duration(cooldownUntilMS-nowMS) * time.Millisecond, nil
}

func (g *RedisSignInGuard) stateKey(dim, value string) string {
	return fmt.Sprintf("%s:%s:%s", g.prefix, dim, hashToken(value))
}

// parseRedisInt64 accepts script integers and the string fields HMGET returns.
func parseRedisInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("redis response overflows int64")
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case string:
		out, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse redis integer %q: %w", n, err)
		}
		return out, nil
	default:
		return 0, fmt.Errorf("unexpected redis response type %T", v)
	}
}
