package retry

import (
	"context"
	"errors"
	"net"
	"time"
)

// Kind classifies an error for retry purposes.
type Kind int

const (
	// Fatal errors must not be retried (validation, auth, not found).
	Fatal Kind = iota
	// Retryable errors are transient network/server faults.
	Retryable
)

// Classifier maps an error to a Kind. A nil classifier treats every error
// as Fatal.
type Classifier func(error) Kind

// Do runs fn up to 1+retries times, sleeping backoff between attempts.
// Only errors classified as Retryable trigger another attempt; the last
// error is returned when attempts are exhausted. Context cancellation stops
// the loop between attempts.
func Do(ctx context.Context, retries int, backoff time.Duration, classify Classifier, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if classify == nil || classify(lastErr) == Fatal {
			return lastErr
		}
	}
	return lastErr
}

// IsTransient is the default classifier predicate for infrastructure
// errors: timeouts and network faults are retryable, everything else is
// not. Callers layer their own domain classification on top.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
