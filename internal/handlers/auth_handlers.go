// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/dtos"
	"github.com/iyunix/go-onyom/internal/middleware"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	clients       *app.Clients
	tokenTTL      time.Duration
	secureCookies bool
}

func NewAuthHandler(clients *app.Clients, tokenTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{clients: clients, tokenTTL: tokenTTL, secureCookies: secureCookies}
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

// issued registers the client that now holds a token and returns it to the caller.
func (h *AuthHandler) issued(w http.ResponseWriter, c *app.Client, s domain.Session, status int) {
	h.clients.Register(c)
	h.setAuthCookie(w, s.Token, time.Now().Add(h.tokenTTL))
	writeJSON(w, status, dtos.FromSessionWithToken(s))
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dtos.CredentialsRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, "Email and password are required.", http.StatusBadRequest)
		return
	}

	c := h.clients.New()
	s, err := c.SignIn(r.Context(), email, req.Password)
	if err != nil {
		c.Close()
		writeDomainError(w, err, nil)
		return
	}
	h.issued(w, c, s, http.StatusOK)
}

// SignUp handles POST /api/auth/signup. When the email must be confirmed
// first the response is 202 with a pending_verification session.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dtos.CredentialsRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	c := h.clients.New()
	s, err := c.SignUp(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		c.Close()
		writeDomainError(w, err, nil)
		return
	}
	if s.Phase == domain.PendingVerification {
		c.Close()
		writeJSON(w, http.StatusAccepted, dtos.FromSession(s))
		return
	}
	h.issued(w, c, s, http.StatusCreated)
}

// Verify handles POST /api/auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dtos.VerificationRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	c := h.clients.New()
	s, err := c.ConfirmVerification(r.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Code))
	if err != nil {
		c.Close()
		writeDomainError(w, err, nil)
		return
	}
	h.issued(w, c, s, http.StatusOK)
}

// Resend handles POST /api/auth/resend. It answers 204 whether or not the
// email belongs to an account.
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResendRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	c := h.clients.New()
	defer c.Close()
	if err := c.ResendVerification(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		writeDomainError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SignOut handles POST /api/auth/signout. The local session is always cleared.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClientFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	c.SignOut(r.Context())
	h.clients.Remove(middleware.TokenFromContext(r.Context()))
	h.setAuthCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClientFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromSession(c.Session.Current()))
}

// UpdateProfile handles PUT /api/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClientFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var update domain.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	s, err := c.UpdateProfile(r.Context(), update)
	if err != nil {
		writeDomainError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromSession(s))
}
