// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/iyunix/go-onyom/internal/app"
)

// TokenFromRequest reads a bearer token, falling back to the auth cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// ClientFromContext returns the client RequireSession attached.
func ClientFromContext(ctx context.Context) (*app.Client, bool) {
	c, ok := ctx.Value(ClientKey).(*app.Client)
	return c, ok && c != nil
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenKey).(string)
	return token
}

// RequireSession resolves the caller's client from their token and rejects
// requests without an authenticated session.
func RequireSession(clients *app.Clients) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "not signed in")
				return
			}

			client, err := clients.Resolve(r.Context(), token)
			if err != nil {
				log.Printf("[AuthMiddleware] Session restore failed: %v", err)
				writeAuthError(w, http.StatusServiceUnavailable, "could not restore session, please try again")
				return
			}
			if !client.Session.Current().IsAuthenticated() {
				log.Printf("[AuthMiddleware] Rejected token for %s", r.URL.Path)
				client.Close()
				writeAuthError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, client)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
