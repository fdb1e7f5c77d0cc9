// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the client and the
// dataset driver.
package httputil

import (
	"context"
	"fmt"
	"time"
)

// DefaultRetryDelay is the sleep between attempts when a Policy leaves
// Delay unset.
var DefaultRetryDelay = 1 * time.Second

// Policy describes a fixed sleep-and-retry loop. There is no back-off: every
// wait lasts Delay.
type Policy struct {
	// Delay is the wait between attempts. Zero uses DefaultRetryDelay.
	Delay time.Duration

	// MaxAttempts bounds the total number of calls. Zero means unlimited.
	MaxAttempts int

	// Retryable decides whether an error warrants another attempt. Errors it
	// rejects are returned immediately.
	Retryable func(error) bool

	// OnRetry is called before each sleep with the attempt that just failed
	// (1-based) and its error.
	OnRetry func(attempt int, err error)
}

// Retry calls fn until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts, or ctx is cancelled. After exhausting attempts the last
// retryable error is returned wrapped, so errors.Is still matches it.
func Retry(ctx context.Context, p Policy, fn func(context.Context) error) error {
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
