package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"portfolio-assistant-be/internal/apperror"
)

// Policy is a reusable exponential-backoff retry policy. One policy object
// replaces the per-call-site retry loops that tend to multiply around
// upstream API clients.
type Policy struct {
	MaxAttempts uint64        // total attempts, including the first
	BaseDelay   time.Duration // initial backoff interval, doubled per attempt
}

// QueryPath keeps user-facing latency bounded: one retry, short delay.
func QueryPath() Policy {
	return Policy{MaxAttempts: 2, BaseDelay: 200 * time.Millisecond}
}

// IngestPath is generous; offline ingestion prefers completion over latency.
func IngestPath() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: time.Second}
}

// Do runs op, retrying only errors classified as transient upstream failures.
// Any other error aborts immediately.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.1
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !apperror.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx))
}
