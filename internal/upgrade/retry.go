package upgrade

import (
	"context"
	"errors"
	"time"
)

// DefaultBackoff is the delay before the first retry; it doubles per attempt.
const DefaultBackoff = 500 * time.Millisecond

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// permanent marks err as not worth retrying.
func permanent(err error) error {
	return &permanentError{err: err}
}

// withRetry runs fn up to attempts times, sleeping backoff (doubling)
// between attempts. It stops early on a permanent error or when ctx ends.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	delay := backoff
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		var pe *permanentError
		if errors.As(err, &pe) {
			return pe.err
		}
		if ctx.Err() != nil || attempt == attempts-1 {
			break
		}
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
			delay *= 2
		}
	}
	return err
}

// retryableStatus reports whether an HTTP status is worth another attempt.
func retryableStatus(code int) bool {
	return code >= 500 || code == 429 || code == 408
}
