package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFixedDelay_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithFixedDelay(context.Background(), func() error {
		calls++
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithFixedDelay_SucceedsOnThirdAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithFixedDelay(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithFixedDelay_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	wantErr := errors.New("always fails")
	err := WithFixedDelay(context.Background(), func() error {
		calls++
		return wantErr
	}, 5, time.Millisecond)

	require.Error(t, err)
	// After N consecutive failures there is no (N+1)th call.
	assert.Equal(t, 5, calls)
	assert.ErrorIs(t, err, wantErr)
	assert.Contains(t, err.Error(), "after 5 attempts")
}

func TestWithFixedDelay_RecoveryRunsBetweenAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	recoveries := 0
	err := WithFixedDelay(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond, WithRecovery(func(attempt int, err error) error {
		recoveries++
		assert.Error(t, err)
		assert.Equal(t, recoveries, attempt)
		return nil
	}))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// Recovery runs between attempts only, never after success.
	assert.Equal(t, 2, recoveries)
}

func TestWithFixedDelay_RecoveryFailureAborts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithFixedDelay(context.Background(), func() error {
		calls++
		return errors.New("transient")
	}, 5, time.Millisecond, WithRecovery(func(int, error) error {
		return errors.New("service restart failed")
	}))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "recovery before attempt 2 failed")
}

func TestWithExponentialBackoff_FatalNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WithExponentialBackoff(context.Background(), func() error {
		calls++
		return Fatal(errors.New("bad input"))
	}, WithInitialDelay(time.Millisecond))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "not retrying")
}

func TestWithExponentialBackoff_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithExponentialBackoff(ctx, func() error {
		return errors.New("transient")
	}, WithInitialDelay(50*time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithExponentialBackoff_DelayCapped(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   10.0,
	}

	start := time.Now()
	err := run(context.Background(), func() error { return errors.New("x") }, cfg)
	elapsed := time.Since(start)

	require.Error(t, err)
	// 3 sleeps, each capped at 2ms; generous upper bound for slow CI.
	assert.Less(t, elapsed, time.Second)
}

func TestFatal(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Fatal(nil))

	inner := errors.New("boom")
	err := Fatal(inner)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, inner)
	assert.False(t, IsFatal(inner))
	assert.False(t, IsFatal(nil))
}
