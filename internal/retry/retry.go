// Package retry implements the fixed-attempt exponential backoff used for
// calls against the directory and interaction-history APIs.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transient marks errors that are worth retrying (rate-limited or
// service-unavailable upstream responses).
type Transient interface {
	error
	Transient() bool
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var t Transient
	return errors.As(err, &t) && t.Transient()
}

// Policy retries transient failures with delay base * 2^attempt, attempt
// starting at 1. Non-transient errors fail immediately.
type Policy struct {
	MaxAttempts int
	Base        time.Duration

	// sleep is replaceable in tests; nil means ctx-aware time.Sleep.
	sleep func(ctx context.Context, d time.Duration) error
}

// Default matches the upstream throttling guidance: 5 attempts with delays
// 2s, 4s, 8s, 16s, 32s.
func Default() Policy {
	return Policy{MaxAttempts: 5, Base: time.Second}
}

// WithSleeper returns a copy of the policy using fn instead of real sleeps.
func (p Policy) WithSleeper(fn func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = fn
	return p
}

// Do runs fn once and retries transient failures up to MaxAttempts times.
// The returned error is the last failure, wrapped with the attempt count when
// the budget ran out.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	err := fn()
	if err == nil {
		return nil
	}
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if !IsTransient(err) {
			return err
		}
		delay := p.Base << attempt // 2^attempt * base
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%s: retries exhausted after %d attempts: %w", op, p.MaxAttempts, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
