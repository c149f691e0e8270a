package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLimiterPerIdentifier(t *testing.T) {
	l := NewKeyedLimiter(&Config{Burst: 2, Every: time.Minute, IdleTTL: time.Hour})
	defer l.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a").Allowed)
	assert.True(t, l.Allow("a").Allowed)
	blocked := l.Allow("a")
	assert.False(t, blocked.Allowed)
	assert.Greater(t, blocked.RetryAfter, time.Duration(0))

	assert.True(t, l.Allow("b").Allowed, "other identifiers are unaffected")

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("a").Allowed, "a token refills")

	l.Reset("a")
	assert.Equal(t, 1, l.Allow("a").Remaining)
}

func TestKeyedLimiterCleanup(t *testing.T) {
	l := NewKeyedLimiter(&Config{Burst: 1, Every: time.Minute, IdleTTL: time.Minute})
	defer l.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * time.Minute)
	l.cleanup()
	assert.Empty(t, l.buckets)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "192.168.1.9, 10.0.0.3")
	assert.Equal(t, "192.168.1.9", GetClientIP(r))
}
