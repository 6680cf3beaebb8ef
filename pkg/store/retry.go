package store

import (
	"context"
	"time"
)

// Backend pings are retried with backoff before Open gives up.
var (
	pingAttempts = 3
	pingDelay    = 500 * time.Millisecond
)

// retry calls fn until it succeeds or the attempts run out, doubling the
// wait after each failure. It returns the last error, or ctx.Err() when ctx
// ends while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
