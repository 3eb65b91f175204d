package retry

import (
	"errors"
	"fmt"
	"time"
)

type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// Policy encapsulates retry/backoff settings for a flaky call.
// It is immutable after construction.
type Policy struct {
	Mode        BackoffMode   // fixed|linear|exponential
	MaxAttempts int           // total attempts, the first one included
	Pause       time.Duration // short hold after a failure, before the wait is announced
	Initial     time.Duration // base wait
	Max         time.Duration // cap for growth
}

// FixedPolicy waits pause+wait between attempts, every time.
func FixedPolicy(maxAttempts int, pause, wait time.Duration) Policy {
	return Policy{
		Mode:        BackoffFixed,
		MaxAttempts: maxAttempts,
		Pause:       pause,
		Initial:     wait,
		Max:         wait,
	}
}

// NewPolicy builds a policy from raw config fields; an unknown mode falls
// back to fixed and initial is clamped to maxWait.
func NewPolicy(mode BackoffMode, maxAttempts int, pause, initial, maxWait time.Duration) Policy {
	p := Policy{
		Mode:        BackoffFixed,
		MaxAttempts: maxAttempts,
		Pause:       pause,
		Initial:     initial,
		Max:         maxWait,
	}

	switch mode {
	case BackoffFixed, BackoffLinear, BackoffExponential:
		p.Mode = mode
	default:
	}

	if p.Max < p.Initial {
		p.Max = p.Initial
	}

	return p
}

// Delay returns the wait before the given retry (1-based: first retry => 1).
// Pause is not included.
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}

	switch p.Mode {
	case BackoffLinear:
		return min(time.Duration(retryCount)*p.Initial, p.Max)
	case BackoffExponential:
		d := p.Initial
		for i := 1; i < retryCount && d > 0 && d < p.Max; i++ {
			d *= 2
		}
		return min(d, p.Max)
	default:
		return p.Initial
	}
}

func (p Policy) Validate() error {
	var errs []error

	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be positive (maxAttempts = %d)", p.MaxAttempts))
	}
	if p.Pause < 0 || p.Initial < 0 || p.Max < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}

	return errors.Join(errs...)
}
