// File: internal/services/session/store.go
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
)

type Config struct {
	IdentityTimeout time.Duration
	ProfileTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{IdentityTimeout: 10 * time.Second, ProfileTimeout: 15 * time.Second}
}

// Store holds the current session. Every mutator either replaces the
// session whole or leaves it untouched; subscribers see each replacement.
type Store struct {
	identity IdentityProvider
	profiles ProfileStore
	cfg      Config
	logger   Logger

	mu      sync.RWMutex
	current domain.Session

	subMu   sync.Mutex
	subs    map[int]func(domain.Session)
	nextSub int
}

func NewStore(identity IdentityProvider, profiles ProfileStore, cfg Config, logger Logger) *Store {
	return &Store{
		identity: identity,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
		subs:     make(map[int]func(domain.Session)),
	}
}

func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn for every session replacement and returns the
// function that removes it.
func (s *Store) Subscribe(fn func(domain.Session)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) replace(next domain.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(domain.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(next)
	}
}

// Initialize restores the session behind token. It always leaves the store
// initialized; a failure other than a rejected token is also returned.
func (s *Store) Initialize(ctx context.Context, token string) error {
	const op = "Initialize"
	signedOut := domain.Session{Phase: domain.Unauthenticated, Initialized: true}
	if token == "" {
		s.replace(signedOut)
		return nil
	}

	id, err := s.callIdentity(ctx, func(ctx context.Context) (domain.Identity, error) {
		return s.identity.GetSession(ctx, token)
	})
	if err != nil {
		s.replace(signedOut)
		if domain.IsKind(err, domain.KindInvalidCredentials) {
			s.logger.Info("stored session no longer valid")
			return nil
		}
		s.logger.Warn("session restore failed", "error", err)
		return mapRemote(op, err)
	}

	next, err := s.establish(ctx, id)
	if err != nil {
		s.replace(signedOut)
		s.logger.Warn("profile load failed during restore", "user_id", id.UserID, "error", err)
		return mapRemote(op, err)
	}
	s.replace(next)
	return nil
}

// SignIn is fail-closed: on any failure the current session is unchanged.
func (s *Store) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	const op = "SignIn"
	id, err := s.callIdentity(ctx, func(ctx context.Context) (domain.Identity, error) {
		return s.identity.SignIn(ctx, email, password)
	})
	if err != nil {
		return s.Current(), mapRemote(op, err)
	}
	next, err := s.establish(ctx, id)
	if err != nil {
		s.logger.Warn("profile load failed after sign-in", "user_id", id.UserID, "error", err)
		return s.Current(), mapRemote(op, err)
	}
	s.replace(next)
	s.logger.Info("signed in", "user_id", next.UserID, "onboarding_complete", next.OnboardingComplete)
	return next, nil
}

// SignUp returns a PendingVerification session, not an error, when the
// provider wants the email confirmed first.
func (s *Store) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	const op = "SignUp"
	ictx, cancel := context.WithTimeout(ctx, s.cfg.IdentityTimeout)
	res, err := s.identity.SignUp(ictx, email, password)
	cancel()
	if err != nil {
		return s.Current(), mapRemote(op, err)
	}

	if res.NeedsVerification || res.Identity == nil {
		next := domain.Session{Email: email, Phase: domain.PendingVerification, Initialized: true}
		s.replace(next)
		return next, nil
	}

	next, err := s.establish(ctx, *res.Identity)
	if err != nil {
		return s.Current(), mapRemote(op, err)
	}
	s.replace(next)
	return next, nil
}

// ConfirmVerification completes a pending sign-up. An empty email falls
// back to the address the pending session was created for.
func (s *Store) ConfirmVerification(ctx context.Context, email, code string) (domain.Session, error) {
	const op = "ConfirmVerification"
	if email == "" {
		email = s.Current().Email
	}
	if email == "" || code == "" {
		return s.Current(), domain.NewValidationError(op, "email and code are required")
	}

	id, err := s.callIdentity(ctx, func(ctx context.Context) (domain.Identity, error) {
		return s.identity.ConfirmVerification(ctx, email, code)
	})
	if err != nil {
		return s.Current(), mapRemote(op, err)
	}
	next, err := s.establish(ctx, id)
	if err != nil {
		return s.Current(), mapRemote(op, err)
	}
	s.replace(next)
	return next, nil
}

func (s *Store) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		email = s.Current().Email
	}
	if email == "" {
		return domain.NewValidationError("ResendVerification", "email is required")
	}
	ictx, cancel := context.WithTimeout(ctx, s.cfg.IdentityTimeout)
	defer cancel()
	return mapRemote("ResendVerification", s.identity.ResendVerification(ictx, email))
}

func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Session, error) {
	const op = "UpdateProfile"
	cur := s.Current()
	if !cur.IsAuthenticated() {
		return cur, domain.NewNotAuthenticatedError(op)
	}
	if err := update.Validate(); err != nil {
		return cur, domain.NewValidationError(op, err.Error())
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
	defer cancel()
	p, err := s.profiles.UpdateProfile(pctx, cur.UserID, update)
	if err != nil {
		return s.Current(), mapRemote(op, err)
	}

	// a sign-out may have raced the write
	if latest := s.Current(); latest.UserID != cur.UserID {
		return latest, domain.NewNotAuthenticatedError(op)
	}
	next := domain.NewSession(p, cur.Token)
	s.replace(next)
	return next, nil
}

// SignOut clears the local session regardless of whether the provider
// acknowledged the revoke.
func (s *Store) SignOut(ctx context.Context) {
	cur := s.Current()
	if cur.Token != "" {
		ictx, cancel := context.WithTimeout(ctx, s.cfg.IdentityTimeout)
		if err := s.identity.SignOut(ictx, cur.Token); err != nil {
			s.logger.Warn("remote sign-out failed, clearing local session anyway", "user_id", cur.UserID, "error", err)
		}
		cancel()
	}
	s.replace(domain.Session{Phase: domain.Unauthenticated, Initialized: true})
	s.logger.Info("signed out", "user_id", cur.UserID)
}

func (s *Store) callIdentity(ctx context.Context, call func(context.Context) (domain.Identity, error)) (domain.Identity, error) {
	ictx, cancel := context.WithTimeout(ctx, s.cfg.IdentityTimeout)
	defer cancel()
	return call(ictx)
}

// establish loads the profile for id, provisioning one named after the
// email when none exists yet.
func (s *Store) establish(ctx context.Context, id domain.Identity) (domain.Session, error) {
	pctx, cancel := context.WithTimeout(ctx, s.cfg.ProfileTimeout)
	defer cancel()

	p, err := s.profiles.GetProfile(pctx, id.UserID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		p, err = s.profiles.CreateProfile(pctx, domain.Profile{
			UserID:      id.UserID,
			Email:       id.Email,
			Name:        id.Email,
			Tone:        domain.ToneSupportive,
			Theme:       domain.ThemeSystem,
			TypingSpeed: domain.DefaultTypingSpeed,
		})
		if err == nil {
			s.logger.Info("profile provisioned", "user_id", id.UserID)
		}
	}
	if err != nil {
		return domain.Session{}, err
	}
	if p.Email == "" {
		p.Email = id.Email
	}
	return domain.NewSession(p, id.Token), nil
}

func mapRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != "" {
		return err
	}
	return domain.NewRemoteError(op, "service unavailable, please try again", err)
}
