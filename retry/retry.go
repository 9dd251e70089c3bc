// Package retry wraps a blocking operation with bounded, table-driven retry.
//
// The table of retryable errors is supplied by the call site, so the package
// can guard any operation regardless of the error types it produces.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts is the number of invocations made by DefaultPolicy.
	DefaultMaxAttempts = 3

	// DefaultDelay is the wait between attempts made by DefaultPolicy.
	DefaultDelay = 500 * time.Millisecond
)

// Classifier reports whether err belongs to a class of failures.
type Classifier func(err error) bool

// Rule marks one class of failures as retryable. When Contains is set the
// failure's message must also contain it.
type Rule struct {
	Name     string
	Match    Classifier
	Contains string
}

func (r Rule) matches(err error) bool {
	if r.Match == nil || !r.Match(err) {
		return false
	}
	return r.Contains == "" || strings.Contains(err.Error(), r.Contains)
}

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of invocations. Values below 1 are
	// treated as 1.
	MaxAttempts int

	// Delay is the wait between two attempts.
	Delay time.Duration

	// Retryable lists the failures worth another attempt. Anything else is
	// returned to the caller after the first failure.
	Retryable []Rule

	// OnRetry, when set, is called after a failed attempt that will be
	// retried.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns a policy of DefaultMaxAttempts attempts spaced by
// DefaultDelay that retries the given rules.
func DefaultPolicy(rules ...Rule) Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Retryable:   rules,
	}
}

// WithAttempts returns a copy of p with MaxAttempts set to n.
func (p Policy) WithAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// WithDelay returns a copy of p with Delay set to d.
func (p Policy) WithDelay(d time.Duration) Policy {
	p.Delay = d
	return p
}

// WithRules returns a copy of p that also retries rules.
func (p Policy) WithRules(rules ...Rule) Policy {
	merged := make([]Rule, 0, len(p.Retryable)+len(rules))
	merged = append(merged, p.Retryable...)
	p.Retryable = append(merged, rules...)
	return p
}

// ShouldRetry reports whether err matches one of the policy's rules. It does
// not look at the attempt budget.
func (p Policy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	for _, rule := range p.Retryable {
		if rule.matches(err) {
			return true
		}
	}
	return false
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do invokes op until it succeeds, fails with an error the policy does not
// retry, or the attempt budget is spent. The last error is returned as is.
//
// If ctx is done while waiting between attempts, Do stops without another
// attempt and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	maxAttempts := p.attempts()

	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if attempt >= maxAttempts || !p.ShouldRetry(err) {
			return result, err
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		if err := wait(ctx, p.Delay); err != nil {
			var zero T
			return zero, err
		}
	}
}

// Run is Do for operations without a result.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Is classifies errors matching target with errors.Is.
func Is(target error) Classifier {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

// As classifies errors whose chain holds an E.
func As[E error]() Classifier {
	return func(err error) bool {
		var target E
		return errors.As(err, &target)
	}
}

// Any classifies every error.
func Any() Classifier {
	return func(error) bool { return true }
}
