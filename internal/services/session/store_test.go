package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/services"
)

type fakeIdentity struct {
	signIn      func(ctx context.Context, email, password string) (domain.Identity, error)
	signUp      domain.SignUpResult
	signUpErr   error
	sessionErr  error
	signOutErr  error
	signOutHits int
	confirmed   string
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	if f.signIn != nil {
		return f.signIn(ctx, email, password)
	}
	return domain.Identity{UserID: "u1", Email: email, Token: "tok"}, nil
}

func (f *fakeIdentity) SignUp(context.Context, string, string) (domain.SignUpResult, error) {
	return f.signUp, f.signUpErr
}

func (f *fakeIdentity) GetSession(_ context.Context, token string) (domain.Identity, error) {
	if f.sessionErr != nil {
		return domain.Identity{}, f.sessionErr
	}
	return domain.Identity{UserID: "u1", Email: "ada@example.com", Token: token}, nil
}

func (f *fakeIdentity) SignOut(context.Context, string) error {
	f.signOutHits++
	return f.signOutErr
}

func (f *fakeIdentity) ResendVerification(context.Context, string) error { return nil }

func (f *fakeIdentity) ConfirmVerification(_ context.Context, email, code string) (domain.Identity, error) {
	f.confirmed = email + ":" + code
	return domain.Identity{UserID: "u1", Email: email, Token: "tok"}, nil
}

type fakeProfiles struct {
	mu        sync.Mutex
	rows      map[string]domain.Profile
	updateErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[string]domain.Profile{}}
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) CreateProfile(_ context.Context, p domain.Profile) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[p.UserID] = p
	return p, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, userID string, u domain.ProfileUpdate) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.Profile{}, f.updateErr
	}
	p := u.Apply(f.rows[userID])
	f.rows[userID] = p
	return p, nil
}

func newTestStore(id *fakeIdentity, profiles *fakeProfiles) *Store {
	cfg := Config{IdentityTimeout: 50 * time.Millisecond, ProfileTimeout: 50 * time.Millisecond}
	return NewStore(id, profiles, cfg, &services.NoOpLogger{})
}

func TestSignInProvisionsProfile(t *testing.T) {
	profiles := newFakeProfiles()
	s := newTestStore(&fakeIdentity{}, profiles)

	sess, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.Authenticated, sess.Phase)
	assert.False(t, sess.OnboardingComplete, "name defaults to the email")
	assert.Equal(t, "ada@example.com", profiles.rows["u1"].Name)
	assert.Equal(t, sess, s.Current())
}

func TestSignInFailureLeavesSessionUnchanged(t *testing.T) {
	id := &fakeIdentity{signIn: func(context.Context, string, string) (domain.Identity, error) {
		return domain.Identity{}, domain.NewInvalidCredentialsError("SignIn", "invalid email or password", nil)
	}}
	s := newTestStore(id, newFakeProfiles())
	before := s.Current()

	_, err := s.SignIn(context.Background(), "ada@example.com", "bad")
	assert.True(t, domain.IsKind(err, domain.KindInvalidCredentials))
	assert.Equal(t, before, s.Current())
}

func TestSignInTimeoutIsRetryable(t *testing.T) {
	id := &fakeIdentity{signIn: func(ctx context.Context, _, _ string) (domain.Identity, error) {
		<-ctx.Done()
		return domain.Identity{}, ctx.Err()
	}}
	s := newTestStore(id, newFakeProfiles())
	before := s.Current()

	_, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.Error(t, err)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindRemoteUnavailable, de.Kind)
	assert.True(t, de.Retryable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, before, s.Current())
}

func TestSignUpPendingVerification(t *testing.T) {
	id := &fakeIdentity{signUp: domain.SignUpResult{NeedsVerification: true}}
	s := newTestStore(id, newFakeProfiles())

	sess, err := s.SignUp(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.PendingVerification, sess.Phase)
	assert.Equal(t, "ada@example.com", sess.Email)

	sess, err = s.ConfirmVerification(context.Background(), "", "123456")
	require.NoError(t, err)
	assert.Equal(t, domain.Authenticated, sess.Phase)
	assert.Equal(t, "ada@example.com:123456", id.confirmed)
}

func TestSignOutFailsOpen(t *testing.T) {
	id := &fakeIdentity{signOutErr: errors.New("network down")}
	s := newTestStore(id, newFakeProfiles())
	_, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	s.SignOut(context.Background())
	assert.Equal(t, 1, id.signOutHits)
	assert.Equal(t, domain.Unauthenticated, s.Current().Phase)
	assert.Empty(t, s.Current().Token)
	assert.True(t, s.Current().Initialized)
}

func TestUpdateProfileCompletesOnboarding(t *testing.T) {
	s := newTestStore(&fakeIdentity{}, newFakeProfiles())
	_, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	name := "Ada"
	sess, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.True(t, sess.OnboardingComplete)
	assert.Equal(t, "tok", sess.Token)

	bad := "A"
	_, err = s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &bad})
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
	assert.Equal(t, "Ada", s.Current().DisplayName)
}

func TestUpdateProfileRemoteFailure(t *testing.T) {
	profiles := newFakeProfiles()
	s := newTestStore(&fakeIdentity{}, profiles)
	_, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	before := s.Current()

	profiles.updateErr = errors.New("503")
	name := "Ada"
	_, err = s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name})
	assert.True(t, domain.IsKind(err, domain.KindRemoteUnavailable))
	assert.Equal(t, before, s.Current())
}

func TestUpdateProfileRequiresSession(t *testing.T) {
	s := newTestStore(&fakeIdentity{}, newFakeProfiles())
	name := "Ada"
	_, err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name})
	assert.True(t, domain.IsKind(err, domain.KindNotAuthenticated))
}

func TestInitializeAlwaysInitializes(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		s := newTestStore(&fakeIdentity{}, newFakeProfiles())
		require.NoError(t, s.Initialize(context.Background(), ""))
		assert.True(t, s.Current().Initialized)
		assert.Equal(t, domain.Unauthenticated, s.Current().Phase)
	})
	t.Run("rejected token", func(t *testing.T) {
		id := &fakeIdentity{sessionErr: domain.NewInvalidCredentialsError("GetSession", "session expired", nil)}
		s := newTestStore(id, newFakeProfiles())
		require.NoError(t, s.Initialize(context.Background(), "old"))
		assert.True(t, s.Current().Initialized)
	})
	t.Run("provider down", func(t *testing.T) {
		id := &fakeIdentity{sessionErr: errors.New("dial tcp: refused")}
		s := newTestStore(id, newFakeProfiles())
		err := s.Initialize(context.Background(), "tok")
		assert.True(t, domain.IsKind(err, domain.KindRemoteUnavailable))
		assert.True(t, s.Current().Initialized)
		assert.False(t, s.Current().IsAuthenticated())
	})
	t.Run("valid token", func(t *testing.T) {
		profiles := newFakeProfiles()
		profiles.rows["u1"] = domain.Profile{UserID: "u1", Email: "ada@example.com", Name: "Ada"}
		s := newTestStore(&fakeIdentity{}, profiles)
		require.NoError(t, s.Initialize(context.Background(), "tok"))
		assert.True(t, s.Current().IsAuthenticated())
		assert.True(t, s.Current().OnboardingComplete)
	})
}

func TestSubscribersSeeReplacements(t *testing.T) {
	s := newTestStore(&fakeIdentity{}, newFakeProfiles())
	var seen []domain.AuthPhase
	unsubscribe := s.Subscribe(func(sess domain.Session) { seen = append(seen, sess.Phase) })

	_, err := s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	s.SignOut(context.Background())
	unsubscribe()
	_, err = s.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, []domain.AuthPhase{domain.Authenticated, domain.Unauthenticated}, seen)
}
