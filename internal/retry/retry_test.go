package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransient struct{ msg string }

func (e fakeTransient) Error() string   { return e.msg }
func (e fakeTransient) Transient() bool { return true }

func TestDo_TransientFailuresThenSuccess(t *testing.T) {
	var delays []time.Duration
	p := Default().WithSleeper(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	calls := 0
	err := p.Do(context.Background(), "list users", func() error {
		calls++
		if calls <= 5 {
			return fakeTransient{"throttled"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 6, calls)
	assert.Equal(t, []time.Duration{
		2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second,
	}, delays)
}

func TestDo_SixthFailureIsFatal(t *testing.T) {
	p := Default().WithSleeper(func(ctx context.Context, d time.Duration) error { return nil })

	calls := 0
	err := p.Do(context.Background(), "list users", func() error {
		calls++
		return fakeTransient{"unavailable"}
	})

	require.Error(t, err)
	assert.Equal(t, 6, calls)
	assert.Contains(t, err.Error(), "retries exhausted after 5 attempts")
}

func TestDo_NonTransientFailsImmediately(t *testing.T) {
	p := Default().WithSleeper(func(ctx context.Context, d time.Duration) error {
		t.Fatal("must not sleep for a non-transient error")
		return nil
	})

	fatal := errors.New("forbidden")
	calls := 0
	err := p.Do(context.Background(), "list users", func() error {
		calls++
		return fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Default().WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	})

	err := p.Do(ctx, "list users", func() error { return fakeTransient{"throttled"} })
	require.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fakeTransient{"throttled"}))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
}
