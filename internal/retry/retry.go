package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted matches every error returned by Do after the last attempt failed.
var ErrExhausted = errors.New("retries exhausted")

// ExhaustedError carries the attempt count and the last failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempt(s): %v", ErrExhausted, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Hooks let callers surface retries to the operator. Both are optional.
type Hooks struct {
	// OnFailure runs right after a failed attempt that will be retried.
	OnFailure func(ctx context.Context, attempt int, err error)
	// OnWait runs after the pause, just before the backoff wait.
	OnWait func(ctx context.Context, attempt int, wait time.Duration)
}

type Retrier struct {
	Policy Policy
	Sleep  Sleeper
	Hooks  Hooks
}

func New(policy Policy, hooks Hooks) Retrier {
	return Retrier{Policy: policy, Sleep: SleepContext, Hooks: hooks}
}

// Do calls op until it succeeds, the policy runs out of attempts or ctx is
// done. Cancellation is returned as is and never retried.
func Do[T any](
	ctx context.Context,
	r Retrier,
	op func(ctx context.Context, attempt int) (T, error),
) (T, error) {
	var zero T

	if err := r.Policy.Validate(); err != nil {
		return zero, fmt.Errorf("validate policy: %w", err)
	}

	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error

	for attempt := 1; attempt <= r.Policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		lastErr = err
		if attempt == r.Policy.MaxAttempts {
			break
		}

		if r.Hooks.OnFailure != nil {
			r.Hooks.OnFailure(ctx, attempt, err)
		}

		if err = sleep(ctx, r.Policy.Pause); err != nil {
			return zero, err
		}

		wait := r.Policy.Delay(attempt)
		if r.Hooks.OnWait != nil {
			r.Hooks.OnWait(ctx, attempt, wait)
		}

		if err = sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, &ExhaustedError{Attempts: r.Policy.MaxAttempts, Last: lastErr}
}

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
