// File: internal/services/session/interface.go
package session

import (
	"context"

	"github.com/iyunix/go-onyom/internal/domain"
)

// IdentityProvider is the remote authority for credentials and tokens.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	SignUp(ctx context.Context, email, password string) (domain.SignUpResult, error)
	GetSession(ctx context.Context, token string) (domain.Identity, error)
	SignOut(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ConfirmVerification(ctx context.Context, email, code string) (domain.Identity, error)
}

// ProfileStore reads and writes the per-user profile row.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	CreateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.Profile, error)
}

// Logger interface for the session package.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
