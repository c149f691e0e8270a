// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/middleware"
	"github.com/iyunix/go-onyom/internal/ratelimit"
)

// Limiters are the keyed rate limiters the router applies; a nil field
// disables that limit.
type Limiters struct {
	Auth *ratelimit.KeyedLimiter
	Chat *ratelimit.KeyedLimiter
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limit(l *ratelimit.KeyedLimiter, name string, h http.HandlerFunc) http.Handler {
	if l == nil {
		return h
	}
	return middleware.RateLimitMiddleware(l, name)(h)
}

func limitAuth(l *ratelimit.KeyedLimiter, h http.HandlerFunc) http.Handler {
	if l == nil {
		return h
	}
	return middleware.RateLimitMiddleware(l, "auth")(middleware.AuthSuccessMiddleware(l, "auth")(h))
}

// NewRouter builds the JSON API over rt.
func NewRouter(rt *app.Runtime, limiters Limiters) *mux.Router {
	authHandler := NewAuthHandler(rt.Clients, rt.Config.TokenTTL, rt.Config.IsProduction())
	chatHandler := NewChatHandler(rt.Store)
	navHandler := NewNavigationHandler(rt.Clients)
	logHandler := NewLogHandler(rt.Logger)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/log", logHandler.LogFrontendEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/navigation", navHandler.Decide).Methods(http.MethodGet)
	r.Handle("/api/auth/signin", limitAuth(limiters.Auth, authHandler.SignIn)).Methods(http.MethodPost)
	r.Handle("/api/auth/signup", limit(limiters.Auth, "auth", authHandler.SignUp)).Methods(http.MethodPost)
	r.Handle("/api/auth/verify", limitAuth(limiters.Auth, authHandler.Verify)).Methods(http.MethodPost)
	r.Handle("/api/auth/resend", limit(limiters.Auth, "auth", authHandler.Resend)).Methods(http.MethodPost)

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireSession(rt.Clients))
	api.HandleFunc("/auth/signout", authHandler.SignOut).Methods(http.MethodPost)
	api.HandleFunc("/session", authHandler.Session).Methods(http.MethodGet)
	api.HandleFunc("/profile", authHandler.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/chats", chatHandler.GetUserChats).Methods(http.MethodGet)
	api.Handle("/chats", limit(limiters.Chat, "chat", chatHandler.CreateChat)).Methods(http.MethodPost)
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.RenameChat).Methods(http.MethodPatch)
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods(http.MethodDelete)
	api.HandleFunc("/chats/{id:[0-9]+}/active", chatHandler.SelectChat).Methods(http.MethodPut)
	api.HandleFunc("/chats/{id:[0-9]+}/stats", chatHandler.GetChatStats).Methods(http.MethodGet)
	api.HandleFunc("/chats/{id:[0-9]+}/messages", chatHandler.GetChatMessages).Methods(http.MethodGet)
	api.Handle("/chats/{id:[0-9]+}/messages", limit(limiters.Chat, "chat", chatHandler.SendMessage)).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
	return r
}
