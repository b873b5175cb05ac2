package accountkit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// resetLimiter enforces a fixed-window cap on password reset requests per
// email. The window lives in Redis so the cap holds across processes.
type resetLimiter struct {
	redis  redis.UniversalClient
	prefix string
	max    int
	window time.Duration
}

func newResetLimiter(client redis.UniversalClient, prefix string, cfg PasswordResetConfig) *resetLimiter {
	return &resetLimiter{
		redis:  client,
		prefix: prefix,
		max:    cfg.MaxRequests,
		window: cfg.ThrottleWindow,
	}
}

// Allow counts one request against the email's current window and fails with
// [ErrResetThrottled] once the cap is exceeded. The first request of a window
// sets its expiry.
func (l *resetLimiter) Allow(ctx context.Context, email string) error {
	key := l.prefix + ":rl:reset:" + strings.ToLower(email)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	if count > int64(l.max) {
		return ErrResetThrottled
	}

	return nil
}
