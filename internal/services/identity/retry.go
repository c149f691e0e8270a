// File: internal/services/identity/retry.go
package identity

import (
	"context"
	"errors"
	"time"
)

// RetryConfig defines simple retry behavior
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       500 * time.Millisecond,
	}
}

// ErrPermanent marks a delivery failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent delivery failure")

// RetryWithBackoff runs fn until it succeeds, fails permanently, or the
// attempts run out. The delay doubles after each failure.
func RetryWithBackoff(ctx context.Context, config RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := config.Delay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrPermanent) {
			return err
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return lastErr
}

// RetryingNotifier retries transient delivery failures of the wrapped notifier.
type RetryingNotifier struct {
	next   Notifier
	config RetryConfig
}

func NewRetryingNotifier(next Notifier, config RetryConfig) *RetryingNotifier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	return &RetryingNotifier{next: next, config: config}
}

func (n *RetryingNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	return RetryWithBackoff(ctx, n.config, func(ctx context.Context) error {
		return n.next.SendVerificationCode(ctx, email, code)
	})
}
