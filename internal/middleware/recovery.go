// File: internal/middleware/recovery.go
package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				w.Header().Set("Connection", "close")
				writeAuthError(w, http.StatusInternalServerError, "Something went wrong on our end.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
