// Package retry provides the uniform retry policy applied to every external
// provider call. Provider-level transient failures are retried here; semantic
// outcomes (e.g. "no answer") are never routed through this package.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxAttempts is the total attempt bound, including the first call.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the initial backoff delay.
	DefaultBaseDelay = 500 * time.Millisecond

	jitter   = 50 * time.Millisecond
	maxDelay = 10 * time.Second
)

// Policy is an explicit retry policy: exponential backoff with jitter,
// bounded at MaxAttempts total attempts. Any error is retried; the policy
// does not distinguish retryable from non-retryable failures.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default returns the standard provider retry policy.
func Default() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Do runs fn, retrying on any error until the attempt bound is reached.
// The final error is returned unwrapped from retry bookkeeping. Context
// cancellation stops the loop between attempts.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}

	backoff := retry.NewExponential(base)
	backoff = retry.WithJitter(jitter, backoff)
	backoff = retry.WithCappedDuration(maxDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
