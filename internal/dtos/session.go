// File: internal/dtos/session.go
package dtos

import (
	"github.com/iyunix/go-onyom/internal/domain"
)

// SessionResponseDTO is the session as the view layer sees it. The token is
// only filled in on responses that issue one.
type SessionResponseDTO struct {
	UserID             string `json:"user_id,omitempty"`
	Email              string `json:"email,omitempty"`
	DisplayName        string `json:"display_name,omitempty"`
	Phase              string `json:"phase"`
	OnboardingComplete bool   `json:"onboarding_complete"`
	TherapistTone      string `json:"therapist_tone,omitempty"`
	Initialized        bool   `json:"initialized"`
	Token              string `json:"token,omitempty"`
}

// CredentialsRequestDTO is the sign-in and sign-up payload.
type CredentialsRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerificationRequestDTO struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendRequestDTO struct {
	Email string `json:"email"`
}

// NavigationResponseDTO answers where a client on Path should go.
type NavigationResponseDTO struct {
	Path     string `json:"path"`
	Redirect string `json:"redirect,omitempty"`
	Navigate bool   `json:"navigate"`
}

// FromSession maps a session without its token.
func FromSession(s domain.Session) SessionResponseDTO {
	dto := SessionResponseDTO{
		UserID:             s.UserID,
		Email:              s.Email,
		Phase:              s.Phase.String(),
		OnboardingComplete: s.OnboardingComplete,
		Initialized:        s.Initialized,
	}
	if s.IsAuthenticated() {
		dto.DisplayName = s.DisplayName
		dto.TherapistTone = string(s.Tone)
	}
	return dto
}

// FromSessionWithToken maps a session including the token it was issued.
func FromSessionWithToken(s domain.Session) SessionResponseDTO {
	dto := FromSession(s)
	dto.Token = s.Token
	return dto
}
