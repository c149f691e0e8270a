// File: internal/domain/verification_code.go
package domain

import (
	"time"

	"gorm.io/gorm"
)

// VerificationCodeType defines different types of verification codes
type VerificationCodeType string

const (
	VerificationTypeEmail    VerificationCodeType = "email"
	VerificationTypePassword VerificationCodeType = "password_reset"
)

// VerificationCode handles all temporary verification codes
type VerificationCode struct {
	ID    uint                 `gorm:"primaryKey"`
	Email string               `gorm:"index;not null;size:254"`
	Code  string               `gorm:"not null;size:10"`
	Type  VerificationCodeType `gorm:"not null;size:20;index"`

	ExpiresAt   time.Time `gorm:"index;not null"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:3"`

	UsedAt *time.Time `gorm:"default:null"`
	IsUsed bool       `gorm:"default:false;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValid checks if the verification code is still valid at now.
func (v *VerificationCode) IsValid(now time.Time) bool {
	return !v.IsUsed && v.Attempts < v.MaxAttempts && now.Before(v.ExpiresAt)
}

// CanAttempt checks if more attempts are allowed
func (v *VerificationCode) CanAttempt() bool {
	return v.Attempts < v.MaxAttempts && !v.IsUsed
}

// UseCode marks the code as used
func (v *VerificationCode) UseCode(now time.Time) {
	v.IsUsed = true
	v.UsedAt = &now
}

// IncrementAttempt increments the attempt counter
func (v *VerificationCode) IncrementAttempt() {
	v.Attempts++
}
