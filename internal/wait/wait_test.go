package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readyAfter returns a probe that reports ready on the n-th call and counts
// calls in *calls.
func readyAfter(n int, calls *int) Probe {
	return func(context.Context) (bool, error) {
		*calls++
		return *calls >= n, nil
	}
}

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, Interval: time.Millisecond}
}

func TestWait_ReadyFirstAttempt(t *testing.T) {
	calls := 0
	err := Wait(context.Background(), fastPolicy(3), "app", readyAfter(1, &calls), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWait_ReadyLater(t *testing.T) {
	calls := 0
	var notified []int
	notify := func(attempt int, err error) {
		notified = append(notified, attempt)
		assert.ErrorIs(t, err, ErrNotReady)
	}

	err := Wait(context.Background(), fastPolicy(5), "app", readyAfter(3, &calls), notify)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

// TestWait_Exhausted verifies the probe is called exactly MaxAttempts
// times before a TimeoutError.
func TestWait_Exhausted(t *testing.T) {
	calls := 0
	err := Wait(context.Background(), fastPolicy(4), "app container", readyAfter(100, &calls), nil)
	require.Error(t, err)
	assert.Equal(t, 4, calls)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 4, timeout.Attempts)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, "app container not ready after 4 attempts", err.Error())
}

func TestWait_SingleAttempt(t *testing.T) {
	calls := 0
	err := Wait(context.Background(), fastPolicy(1), "app", readyAfter(2, &calls), nil)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 1, calls)
}

// TestWait_ProbeErrorCountsAsNotReady verifies probe errors are retried
// and surfaced as the last cause.
func TestWait_ProbeErrorCountsAsNotReady(t *testing.T) {
	boom := errors.New("docker compose ps failed")
	calls := 0
	probe := func(context.Context) (bool, error) {
		calls++
		return false, boom
	}

	err := Wait(context.Background(), fastPolicy(3), "app", probe, nil)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Contains(t, err.Error(), "docker compose ps failed")
}

func TestWait_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	probe := func(context.Context) (bool, error) {
		calls++
		cancel()
		return false, nil
	}

	err := Wait(ctx, Policy{MaxAttempts: 10, Interval: time.Hour}, "app", probe, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Equal(t, Policy{MaxAttempts: 30, Interval: 2 * time.Second}, DefaultPolicy())

	assert.Error(t, Policy{MaxAttempts: 0, Interval: time.Second}.Validate())
	assert.Error(t, Policy{MaxAttempts: 1, Interval: -time.Second}.Validate())

	err := Wait(context.Background(), Policy{}, "app", readyAfter(1, new(int)), nil)
	assert.Error(t, err)
}
