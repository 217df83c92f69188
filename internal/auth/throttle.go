package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle counts failed logins per subject (client address or account) in
// Redis and locks the subject out once the limit is reached within the
// window. A nil Throttle, or one without a client, never blocks.
type Throttle struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewThrottle(rdb *redis.Client, maxAttempts int, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

func (t *Throttle) enabled() bool {
	return t != nil && t.rdb != nil && t.maxAttempts > 0
}

func throttleKey(subject string) string {
	return "login:fail:" + subject
}

// Blocked reports whether any of the subjects has used up its failed attempts.
func (t *Throttle) Blocked(ctx context.Context, subjects ...string) (bool, error) {
	if !t.enabled() {
		return false, nil
	}
	for _, s := range subjects {
		n, err := t.rdb.Get(ctx, throttleKey(s)).Int()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("throttle get: %w", err)
		}
		if n >= t.maxAttempts {
			return true, nil
		}
	}
	return false, nil
}

// Fail records one failed attempt against every subject. Each window starts
// at that subject's first failure.
func (t *Throttle) Fail(ctx context.Context, subjects ...string) error {
	if !t.enabled() {
		return nil
	}
	for _, s := range subjects {
		key := throttleKey(s)
		n, err := t.rdb.Incr(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("throttle incr: %w", err)
		}
		if n == 1 {
			if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
				return fmt.Errorf("throttle expire: %w", err)
			}
		}
	}
	return nil
}

// Reset forgets the failures of the subjects after a successful login.
func (t *Throttle) Reset(ctx context.Context, subjects ...string) error {
	if !t.enabled() || len(subjects) == 0 {
		return nil
	}
	keys := make([]string, len(subjects))
	for i, s := range subjects {
		keys[i] = throttleKey(s)
	}
	if err := t.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

// LoginSubjects returns the throttle subjects for one login attempt: the
// client address and the account. Counting per account keeps the lockout in
// place when the address changes between guesses.
func LoginSubjects(client, email string) []string {
	return []string{client, "email:" + strings.ToLower(strings.TrimSpace(email))}
}
