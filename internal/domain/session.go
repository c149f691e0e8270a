// File: internal/domain/session.go
package domain

import "strings"

// AuthPhase is where the current identity stands with the provider.
type AuthPhase int

const (
	Unauthenticated AuthPhase = iota
	PendingVerification
	Authenticated
)

func (p AuthPhase) String() string {
	switch p {
	case Unauthenticated:
		return "unauthenticated"
	case PendingVerification:
		return "pending_verification"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the identity snapshot the client renders against. It is replaced
// wholesale on every successful mutation, never patched in place.
type Session struct {
	UserID             string
	Email              string
	DisplayName        string // empty when the profile has no name yet
	Phase              AuthPhase
	OnboardingComplete bool
	Tone               TherapistTone
	Token              string
	Initialized        bool
}

// NewSession builds an authenticated session from a profile, deriving the
// onboarding flag from the display name.
func NewSession(profile Profile, token string) Session {
	return Session{
		UserID:             profile.UserID,
		Email:              profile.Email,
		DisplayName:        profile.Name,
		Phase:              Authenticated,
		OnboardingComplete: OnboardingComplete(profile.Name, profile.Email),
		Tone:               profile.Tone,
		Token:              token,
		Initialized:        true,
	}
}

// OnboardingComplete reports whether the user has chosen a real display name.
// A missing name, or one equal to the account email, means onboarding is pending.
func OnboardingComplete(displayName, email string) bool {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return false
	}
	return !strings.EqualFold(name, strings.TrimSpace(email))
}

// IsAuthenticated reports whether the session carries a signed-in user.
func (s Session) IsAuthenticated() bool {
	return s.Phase == Authenticated && s.UserID != ""
}
