package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partygames/waitlist/internal/ratelimit"
)

const (
	// rateLimitSubscribePrefix is the Redis key prefix for subscribe limits per IP.
	rateLimitSubscribePrefix = "ratelimit:subscribe:ip:"
	// rateLimitSubscribeTTL is the TTL for subscribe rate limit keys.
	rateLimitSubscribeTTL = 120 * time.Second
)

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// SubscribeLimiter is a token bucket per client IP stored in Redis, so the
// limit holds across replicas.
type SubscribeLimiter struct {
	client    *redis.Client
	perMinute int
	burst     int
}

// SubscribeLimiter returns a limiter refilling perMinute tokens per minute
// with a bucket of burst tokens.
func (c *Cache) SubscribeLimiter(perMinute, burst int) *SubscribeLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &SubscribeLimiter{client: c.client, perMinute: perMinute, burst: burst}
}

// Allow implements ratelimit.Limiter. The IP is hashed to avoid storing
// raw addresses.
func (l *SubscribeLimiter) Allow(ctx context.Context, ip string) (*ratelimit.Result, error) {
	key := rateLimitSubscribePrefix + hashIP(ip)
	rate := float64(l.perMinute) / 60.0
	now := time.Now()

	result, err := tokenBucketScript.Run(ctx, l.client,
		[]string{key},
		rate, l.burst, now.Unix(), int(rateLimitSubscribeTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("token bucket script: %w", err)
	}

	return &ratelimit.Result{
		Allowed:    result[0] == 1,
		Limit:      l.perMinute,
		Remaining:  result[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / rate)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// hashIP creates a truncated SHA256 hash of an IP address.
// This provides privacy while maintaining uniqueness.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}

var _ ratelimit.Limiter = (*SubscribeLimiter)(nil)
