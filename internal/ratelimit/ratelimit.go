// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration
type Config struct {
	Burst         int           // requests allowed back to back
	Every         time.Duration // one token refills per Every
	IdleTTL       time.Duration // buckets unused this long are dropped
	CleanupPeriod time.Duration
}

// DefaultAuthConfig allows 5 quick attempts, then one every 3 minutes.
func DefaultAuthConfig() *Config {
	return &Config{
		Burst:         5,
		Every:         3 * time.Minute,
		IdleTTL:       30 * time.Minute,
		CleanupPeriod: 30 * time.Minute,
	}
}

// DefaultChatConfig bounds message sends per client.
func DefaultChatConfig() *Config {
	return &Config{
		Burst:         10,
		Every:         2 * time.Second,
		IdleTTL:       10 * time.Minute,
		CleanupPeriod: 10 * time.Minute,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one token bucket per identifier.
type KeyedLimiter struct {
	config  *Config
	buckets map[string]*bucket
	mu      sync.Mutex
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

// NewKeyedLimiter creates a limiter and starts its cleanup loop; call Close to stop it.
func NewKeyedLimiter(config *Config) *KeyedLimiter {
	l := &KeyedLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if config.CleanupPeriod > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Info describes the state of one identifier after a call to Allow.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Allow consumes one token for identifier if one is available.
func (l *KeyedLimiter) Allow(identifier string) Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[identifier]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(l.config.Every), l.config.Burst)}
		l.buckets[identifier] = b
	}
	b.lastSeen = now

	info := Info{Limit: l.config.Burst}
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return info
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		info.RetryAfter = delay
		return info
	}
	info.Allowed = true
	info.Remaining = int(b.limiter.TokensAt(now))
	return info
}

// Reset forgets identifier, used after a successful authentication.
func (l *KeyedLimiter) Reset(identifier string) {
	l.mu.Lock()
	delete(l.buckets, identifier)
	l.mu.Unlock()
}

func (l *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *KeyedLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.config.IdleTTL {
			delete(l.buckets, id)
		}
	}
}

// Close stops the cleanup goroutine
func (l *KeyedLimiter) Close() {
	l.once.Do(func() { close(l.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
