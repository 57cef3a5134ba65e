// Package wait implements the bounded readiness policy used after
// containers are started.
//
// A Policy is "at most MaxAttempts probes, Interval apart". It knows
// nothing about what it polls; callers supply a Probe.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Defaults used when the config file does not override them.
const (
	DefaultMaxAttempts = 30
	DefaultInterval    = 2 * time.Second
)

// ErrNotReady matches every *TimeoutError via errors.Is.
var ErrNotReady = errors.New("not ready")

// Policy bounds a readiness wait.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPolicy returns 30 attempts, 2 seconds apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval}
}

// Validate checks that the policy allows at least one attempt.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Interval < 0 {
		return fmt.Errorf("interval must not be negative, got %s", p.Interval)
	}
	return nil
}

// Probe reports whether the awaited condition holds. An error counts as
// "not ready" and is kept as the last failure cause.
type Probe func(ctx context.Context) (bool, error)

// Notify is called after each failed attempt, before sleeping.
type Notify func(attempt int, err error)

// TimeoutError reports that every attempt of a policy failed.
type TimeoutError struct {
	What     string
	Attempts int
	Last     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s not ready after %d attempts", e.What, e.Attempts)
	if e.Last != nil && !errors.Is(e.Last, ErrNotReady) {
		msg += ": " + e.Last.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrNotReady) true for any TimeoutError.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrNotReady
}

// Unwrap returns the last probe failure.
func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// Wait runs probe until it reports ready, the policy is exhausted, or ctx
// is done. what names the awaited thing in the TimeoutError. notify may be
// nil.
func Wait(ctx context.Context, policy Policy, what string, probe Probe, notify Notify) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	attempt := 0
	operation := func() error {
		attempt++
		ready, err := probe(ctx)
		if err != nil {
			return err
		}
		if !ready {
			return ErrNotReady
		}
		return nil
	}

	// MaxRetries counts retries after the first attempt.
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Interval), uint64(policy.MaxAttempts-1)),
		ctx,
	)

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, _ time.Duration) { notify(attempt, err) }
	}

	err := backoff.RetryNotify(operation, b, onRetry)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &TimeoutError{What: what, Attempts: attempt, Last: err}
}
