package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/store/memory"
)

// Memory is a fixed-window limiter kept in process memory.
// Each replica counts on its own; use the Redis limiter when running more
// than one instance.
type Memory struct {
	limiter *limiter.Limiter
	limit   int
}

// NewMemory allows perMinute requests per key per minute.
func NewMemory(perMinute int) *Memory {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  int64(perMinute),
	}
	return &Memory{
		limiter: limiter.New(memory.NewStore(), rate),
		limit:   perMinute,
	}
}

// Allow implements Limiter.
func (m *Memory) Allow(ctx context.Context, key string) (*Result, error) {
	lctx, err := m.limiter.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("memory limiter: %w", err)
	}

	resetAt := time.Unix(lctx.Reset, 0)
	result := &Result{
		Allowed:   !lctx.Reached,
		Limit:     m.limit,
		Remaining: lctx.Remaining,
		ResetAt:   resetAt,
	}

	if lctx.Reached {
		retry := time.Until(resetAt)
		if retry < time.Second {
			retry = time.Second
		}
		result.RetryAfter = retry.Round(time.Second)
	}

	return result, nil
}
