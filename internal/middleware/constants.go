// File: internal/middleware/constants.go
package middleware

// Context keys for middleware communication
type contextKey string

const (
	ClientKey contextKey = "client"
	TokenKey  contextKey = "token"
)

// AuthCookieName is the cookie browsers carry the session token in.
const AuthCookieName = "auth_token"
