// File: internal/services/identity/local_provider.go
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/auth"
	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/repository/account"
	"github.com/iyunix/go-onyom/internal/repository/verification"
	"github.com/iyunix/go-onyom/internal/services"
)

const msgBadCredentials = "invalid email or password"

// LocalProvider is an email/password identity provider backed by the local
// database. Tokens are HS256 JWTs; sign-out records the token id as revoked.
type LocalProvider struct {
	accounts account.AccountRepository
	codes    verification.VerificationRepository
	notifier Notifier
	cfg      Config
	logger   services.Logger
	now      func() time.Time
}

func NewLocalProvider(db *gorm.DB, notifier Notifier, cfg Config, logger services.Logger) (*LocalProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LocalProvider{
		accounts: account.NewAccountRepository(db),
		codes:    verification.NewGormVerificationRepository(db),
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// SignUp registers email. When verification is required no token is issued
// until ConfirmVerification succeeds.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (domain.SignUpResult, error) {
	const op = "SignUp"
	addr, err := parseEmail(email)
	if err != nil {
		return domain.SignUpResult{}, domain.NewValidationError(op, "please enter a valid email address")
	}

	acct := &domain.Account{ID: uuid.NewString(), Email: addr}
	if err := acct.HashPassword(password, p.cfg.BcryptCost); err != nil {
		return domain.SignUpResult{}, domain.NewValidationError(op, err.Error())
	}

	created, err := p.accounts.Create(ctx, acct)
	if errors.Is(err, account.ErrEmailTaken) {
		return domain.SignUpResult{}, domain.NewValidationError(op, "an account with this email already exists")
	}
	if err != nil {
		p.logger.Error("account creation failed", "error", err)
		return domain.SignUpResult{}, err
	}
	p.logger.Info("account registered", "user_id", created.ID)

	if !p.cfg.RequireVerification {
		id, err := p.issue(created)
		if err != nil {
			return domain.SignUpResult{}, err
		}
		return domain.SignUpResult{Identity: &id}, nil
	}

	if err := p.sendCode(ctx, created.Email); err != nil {
		return domain.SignUpResult{}, err
	}
	return domain.SignUpResult{NeedsVerification: true}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	const op = "SignIn"
	acct, err := p.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, msgBadCredentials, nil)
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if acct.IsLocked(p.now()) {
		p.logger.Warn("sign-in refused for locked account", "user_id", acct.ID)
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, msgLocked, nil)
	}
	if err := acct.ValidatePassword(password); err != nil {
		p.logger.Warn("sign-in with wrong password", "user_id", acct.ID)
		p.recordFailedLogin(ctx, acct)
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, msgBadCredentials, nil)
	}
	p.clearFailedLogins(ctx, acct)
	if p.cfg.RequireVerification && !acct.IsVerified {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "please confirm your email before signing in", nil)
	}
	return p.issue(acct)
}

// GetSession resolves a previously issued token.
func (p *LocalProvider) GetSession(ctx context.Context, token string) (domain.Identity, error) {
	const op = "GetSession"
	claims, err := auth.ValidateToken(token, p.cfg.SecretKey)
	if err != nil {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "session expired", err)
	}
	revoked, err := p.accounts.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return domain.Identity{}, err
	}
	if revoked {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "session expired", nil)
	}
	acct, err := p.accounts.FindByID(ctx, claims.UserID)
	if errors.Is(err, account.ErrAccountNotFound) {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "session expired", err)
	}
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: acct.ID, Email: acct.Email, Token: token}, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := auth.ValidateToken(token, p.cfg.SecretKey)
	if err != nil {
		// already unusable
		return nil
	}
	if err := p.accounts.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		p.logger.Error("token revocation failed", "user_id", claims.UserID, "error", err)
		return err
	}
	if n, err := p.accounts.PurgeExpiredTokens(ctx, p.now()); err == nil && n > 0 {
		p.logger.Debug("purged expired revocations", "count", n)
	}
	return nil
}

func (p *LocalProvider) ResendVerification(ctx context.Context, email string) error {
	const op = "ResendVerification"
	acct, err := p.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		// do not reveal whether the address is registered
		p.logger.Warn("verification resend for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if acct.IsVerified {
		return domain.NewValidationError(op, "this email is already confirmed")
	}

	last, err := p.codes.FindByEmailAndType(ctx, acct.Email, domain.VerificationTypeEmail)
	if err != nil {
		return err
	}
	if last != nil && p.now().Sub(last.CreatedAt) < p.cfg.ResendCooldown {
		return domain.NewValidationError(op, "please wait before requesting another code")
	}
	return p.sendCode(ctx, acct.Email)
}

// ConfirmVerification checks code and, when it matches, verifies the account
// and signs the user in.
func (p *LocalProvider) ConfirmVerification(ctx context.Context, email, code string) (domain.Identity, error) {
	const op = "ConfirmVerification"
	acct, err := p.accounts.FindByEmail(ctx, email)
	if errors.Is(err, account.ErrAccountNotFound) {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "invalid or expired code", nil)
	}
	if err != nil {
		return domain.Identity{}, err
	}

	vc, err := p.codes.FindByEmailAndType(ctx, acct.Email, domain.VerificationTypeEmail)
	if err != nil {
		return domain.Identity{}, err
	}
	now := p.now()
	if vc == nil || !vc.IsValid(now) {
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "invalid or expired code", nil)
	}
	if vc.Code != code {
		vc.IncrementAttempt()
		if err := p.codes.Update(ctx, vc); err != nil {
			return domain.Identity{}, err
		}
		p.logger.Warn("wrong verification code", "user_id", acct.ID, "attempts", vc.Attempts)
		return domain.Identity{}, domain.NewInvalidCredentialsError(op, "invalid or expired code", nil)
	}

	vc.UseCode(now)
	if err := p.codes.Update(ctx, vc); err != nil {
		return domain.Identity{}, err
	}
	if err := p.accounts.MarkVerified(ctx, acct.ID, now); err != nil {
		return domain.Identity{}, err
	}
	p.logger.Info("account verified", "user_id", acct.ID)
	return p.issue(acct)
}

func (p *LocalProvider) issue(acct *domain.Account) (domain.Identity, error) {
	token, _, err := auth.GenerateJWT(acct.ID, p.cfg.TokenTTL, p.cfg.SecretKey)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return domain.Identity{UserID: acct.ID, Email: acct.Email, Token: token}, nil
}

func (p *LocalProvider) sendCode(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := p.codes.DeleteByEmail(ctx, email, domain.VerificationTypeEmail); err != nil {
		return err
	}
	vc := &domain.VerificationCode{
		Email:       email,
		Code:        code,
		Type:        domain.VerificationTypeEmail,
		ExpiresAt:   p.now().Add(p.cfg.CodeTTL),
		MaxAttempts: p.cfg.CodeMaxAttempts,
		CreatedAt:   p.now(),
	}
	if err := p.codes.Create(ctx, vc); err != nil {
		return fmt.Errorf("failed to save verification code: %w", err)
	}
	if n, err := p.codes.DeleteExpired(ctx, p.now()); err == nil && n > 0 {
		p.logger.Debug("purged expired verification codes", "count", n)
	}
	if err := p.notifier.SendVerificationCode(ctx, email, code); err != nil {
		p.logger.Error("verification code delivery failed", "error", err)
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

// generateCode returns a six digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func parseEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	return account.NormalizeEmail(addr.Address), nil
}
