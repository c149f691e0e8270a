package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyNotifier struct {
	failures int
	err      error
	calls    int
}

func (f *flakyNotifier) SendVerificationCode(context.Context, string, string) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func TestRetryingNotifierRecovers(t *testing.T) {
	inner := &flakyNotifier{failures: 2, err: errors.New("relay busy")}
	n := NewRetryingNotifier(inner, RetryConfig{MaxAttempts: 3, Delay: time.Millisecond})

	require.NoError(t, n.SendVerificationCode(context.Background(), "a@example.com", "123456"))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingNotifierGivesUp(t *testing.T) {
	inner := &flakyNotifier{failures: 5, err: errors.New("relay busy")}
	n := NewRetryingNotifier(inner, RetryConfig{MaxAttempts: 2, Delay: time.Millisecond})

	assert.EqualError(t, n.SendVerificationCode(context.Background(), "a@example.com", "123456"), "relay busy")
	assert.Equal(t, 2, inner.calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	inner := &flakyNotifier{failures: 5, err: fmt.Errorf("mailbox rejected: %w", ErrPermanent)}
	n := NewRetryingNotifier(inner, RetryConfig{MaxAttempts: 3, Delay: time.Millisecond})

	assert.ErrorIs(t, n.SendVerificationCode(context.Background(), "a@example.com", "123456"), ErrPermanent)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inner := &flakyNotifier{failures: 5, err: errors.New("relay busy")}

	err := RetryWithBackoff(ctx, RetryConfig{MaxAttempts: 3, Delay: time.Hour}, func(ctx context.Context) error {
		return inner.SendVerificationCode(ctx, "", "")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}
