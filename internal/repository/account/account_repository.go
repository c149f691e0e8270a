// File: internal/repository/account/account_repository.go
package account

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
	UpdateLockout(ctx context.Context, account *domain.Account) error

	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type gormAccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *gormAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account == nil || account.ID == "" || account.Email == "" {
		return nil, errors.New("account requires an ID and an email")
	}
	account.Email = NormalizeEmail(account.Email)

	exists, err := r.emailExists(ctx, account.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		log.Printf("[AccountRepository] Database error during account creation: %v", err)
		return nil, fmt.Errorf("database error creating account: %w", err)
	}
	log.Printf("[AccountRepository] Account created with ID: %s", account.ID)
	return account, nil
}

func (r *gormAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&account).Error
	return handleFindError(err, &account)
}

func (r *gormAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	return handleFindError(err, &account)
}

func (r *gormAccountRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_verified": true, "verified_at": at})
	if result.Error != nil {
		return fmt.Errorf("database error verifying account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// UpdateLockout writes the failed-login counters of account.
func (r *gormAccountRepository) UpdateLockout(ctx context.Context, account *domain.Account) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"failed_login_attempts": account.FailedLoginAttempts,
			"last_failed_login_at":  account.LastFailedLoginAt,
			"locked_until":          account.LockedUntil,
		})
	if result.Error != nil {
		return fmt.Errorf("database error updating lockout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *gormAccountRepository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("invalid token ID")
	}
	err := r.db.WithContext(ctx).
		Where(domain.RevokedToken{TokenID: tokenID}).
		Attrs(domain.RevokedToken{ExpiresAt: expiresAt}).
		FirstOrCreate(&domain.RevokedToken{}).Error
	if err != nil {
		return fmt.Errorf("database error revoking token: %w", err)
	}
	return nil
}

func (r *gormAccountRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RevokedToken{}).Where("token_id = ?", tokenID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error checking token: %w", err)
	}
	return count > 0, nil
}

// PurgeExpiredTokens drops revocations for tokens that can no longer validate anyway.
func (r *gormAccountRepository) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&domain.RevokedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("database error purging tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormAccountRepository) emailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error checking email: %w", err)
	}
	return count > 0, nil
}

func handleFindError(err error, account *domain.Account) (*domain.Account, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		log.Printf("[AccountRepository] Database error during lookup: %v", err)
		return nil, fmt.Errorf("database error fetching account: %w", err)
	}
	return account, nil
}
