package core

import (
	"context"
	"time"
)

const (
	retryMaxAttempts = 3
	retryBaseDelay   = 100 * time.Millisecond
)

// Retry runs fn up to retryMaxAttempts times, backing off exponentially
// between attempts, as long as fn keeps failing with a TransientError.
// Any other error aborts immediately. The last error is returned once
// attempts are exhausted or ctx is done.
func Retry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if attempt >= retryMaxAttempts {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
}
