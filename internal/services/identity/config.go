// File: internal/services/identity/config.go
package identity

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	SecretKey           []byte
	TokenTTL            time.Duration
	RequireVerification bool
	BcryptCost          int
	CodeTTL             time.Duration
	CodeMaxAttempts     int
	ResendCooldown      time.Duration

	// MaxFailedLogins consecutive wrong passwords lock the account for
	// LockoutDuration; zero disables lockout.
	MaxFailedLogins int
	LockoutDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		TokenTTL:            7 * 24 * time.Hour,
		RequireVerification: true,
		BcryptCost:          bcrypt.DefaultCost,
		CodeTTL:             10 * time.Minute,
		CodeMaxAttempts:     3,
		ResendCooldown:      time.Minute,
		MaxFailedLogins:     5,
		LockoutDuration:     15 * time.Minute,
	}
}

func (c Config) Validate() error {
	if len(c.SecretKey) == 0 {
		return errors.New("identity: secret key is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("identity: token TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return errors.New("identity: bcrypt cost out of range")
	}
	if c.CodeTTL <= 0 || c.CodeMaxAttempts <= 0 {
		return errors.New("identity: verification code settings must be positive")
	}
	if c.MaxFailedLogins > 0 && c.LockoutDuration <= 0 {
		return errors.New("identity: lockout duration must be positive")
	}
	return nil
}
