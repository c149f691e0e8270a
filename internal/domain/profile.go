// File: internal/domain/profile.go
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type ThemePreference string

const (
	ThemeDark   ThemePreference = "dark"
	ThemeLight  ThemePreference = "light"
	ThemeSystem ThemePreference = "system"
)

const (
	DefaultTypingSpeed = 50
	MinTypingSpeed     = 10
	MaxTypingSpeed     = 100
)

var namePattern = regexp.MustCompile(`^[\p{L}\s'-]+$`)

// Profile is the per-user record that must exist before any chat can be created.
type Profile struct {
	UserID      string          `json:"id" gorm:"primaryKey;size:36"`
	Email       string          `json:"email" gorm:"not null;size:254"`
	Name        string          `json:"name" gorm:"size:50"`
	Tone        TherapistTone   `json:"therapist_tone" gorm:"size:20;default:supportive"`
	Theme       ThemePreference `json:"theme_preference" gorm:"size:10;default:system"`
	TypingSpeed int             `json:"typing_speed" gorm:"default:50"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProfileUpdate carries the fields a user may change; nil fields are left alone.
type ProfileUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Tone        *TherapistTone   `json:"therapist_tone,omitempty"`
	Theme       *ThemePreference `json:"theme_preference,omitempty"`
	TypingSpeed *int             `json:"typing_speed,omitempty"`
}

// Validate checks the update against the profile rules.
func (u ProfileUpdate) Validate() error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		n := utf8.RuneCountInString(name)
		if n < 2 || n > 50 {
			return errors.New("name must be between 2 and 50 characters")
		}
		if !namePattern.MatchString(name) {
			return errors.New("name can only contain letters, spaces, hyphens, and apostrophes")
		}
	}
	if u.Tone != nil && !u.Tone.Valid() {
		return errors.New("unknown therapist tone")
	}
	if u.Theme != nil {
		switch *u.Theme {
		case ThemeDark, ThemeLight, ThemeSystem:
		default:
			return errors.New("unknown theme preference")
		}
	}
	if u.TypingSpeed != nil && (*u.TypingSpeed < MinTypingSpeed || *u.TypingSpeed > MaxTypingSpeed) {
		return errors.New("typing speed must be between 10 and 100")
	}
	return nil
}

// Apply returns a copy of p with the update applied.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Tone != nil {
		p.Tone = *u.Tone
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.TypingSpeed != nil {
		p.TypingSpeed = *u.TypingSpeed
	}
	return p
}
