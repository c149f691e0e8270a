// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/iyunix/go-onyom/internal/ratelimit"
)

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(limiter *ratelimit.KeyedLimiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)
			info := limiter.Allow(name + ":" + clientIP)

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))

			if !info.Allowed {
				log.Printf("[RateLimit] Blocked %s request from %s", name, clientIP)
				retry := int(math.Ceil(info.RetryAfter.Seconds()))
				if retry > 0 {
					w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":      "Too many attempts. Please try again later.",
					"retryAfter": retry,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthSuccessMiddleware clears the caller's bucket after a successful authentication.
func AuthSuccessMiddleware(limiter *ratelimit.KeyedLimiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			if wrapper.statusCode >= 200 && wrapper.statusCode < 300 {
				clientIP := ratelimit.GetClientIP(r)
				limiter.Reset(name + ":" + clientIP)
				log.Printf("[RateLimit] Reset attempts for %s from %s (successful auth)", name, clientIP)
			}
		})
	}
}
