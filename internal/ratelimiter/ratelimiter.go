package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiter keeps a minimum interval between consecutive requests to the
// same upstream. A zero interval disables it.
type RateLimiter struct {
	interval time.Duration
	lastSent time.Time
	mu       sync.Mutex
	now      func() time.Time
	log      *slog.Logger
}

func New(interval time.Duration, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		interval: max(interval, 0),
		now:      time.Now,
		log:      log,
	}
}

// Wait blocks until a request may be sent, then records it as sent.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.interval == 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if !rl.lastSent.IsZero() {
		delay := getDelay(rl.interval, rl.lastSent, rl.now())

		if delay > 0 {
			rl.log.DebugContext(ctx, "Rate limiting request",
				"delay", delay,
				"interval", rl.interval)

			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
	}

	rl.lastSent = rl.now()

	return nil
}

func getDelay(
	interval time.Duration,
	lastSent time.Time,
	now time.Time,
) time.Duration {
	elapsed := now.Sub(lastSent)

	return max(interval-elapsed, 0)
}
