// File: internal/domain/account.go
package domain

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account is the identity provider's credential record. It is separate from
// Profile: an account exists from sign-up, a profile only once provisioned.
type Account struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null;size:254"`
	Password   string     `json:"-" gorm:"not null"`
	IsVerified bool       `json:"is_verified" gorm:"default:false"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LastFailedLoginAt   *time.Time `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLocked reports whether sign-in is refused at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// HashPassword securely hashes the account password at the given bcrypt cost.
func (a *Account) HashPassword(password string, cost int) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return errors.New("password must be 72 characters or less")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	a.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the stored hash.
func (a *Account) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password))
}

// RevokedToken records a signed-out session token until it would have expired anyway.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
