// internal/common/auth/limiter.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const attemptKeyPrefix = "pwd_attempts:"

// AttemptLimiter counts failed password checks per client in a fixed window.
type AttemptLimiter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

func NewAttemptLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func attemptKey(clientID string) string {
	return attemptKeyPrefix + clientID
}

// Allow reports whether clientID may try again and, if not, how long until
// the window resets.
func (l *AttemptLimiter) Allow(ctx context.Context, clientID string) (bool, time.Duration, error) {
	count, err := l.client.Get(ctx, attemptKey(clientID)).Int()
	if err == redis.Nil {
		return true, 0, nil
	}
	if err != nil {
		return true, 0, fmt.Errorf("read attempts: %w", err)
	}
	if count < l.maxAttempts {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, attemptKey(clientID)).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

// RecordFailure bumps the counter, starting the window on the first failure.
func (l *AttemptLimiter) RecordFailure(ctx context.Context, clientID string) (int64, error) {
	key := attemptKey(clientID)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr attempts: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return count, fmt.Errorf("expire attempts: %w", err)
		}
	}
	return count, nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, clientID string) error {
	return l.client.Del(ctx, attemptKey(clientID)).Err()
}
