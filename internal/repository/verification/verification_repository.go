// File: internal/repository/verification/verification_repository.go
package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/domain"
)

// VerificationRepository stores the short-lived codes mailed during sign-up.
type VerificationRepository interface {
	Create(ctx context.Context, verification *domain.VerificationCode) error
	FindByEmailAndType(ctx context.Context, email string, codeType domain.VerificationCodeType) (*domain.VerificationCode, error)
	DeleteByEmail(ctx context.Context, email string, codeType domain.VerificationCodeType) error
	Update(ctx context.Context, verification *domain.VerificationCode) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormVerificationRepository struct {
	db *gorm.DB
}

func NewGormVerificationRepository(db *gorm.DB) VerificationRepository {
	return &GormVerificationRepository{db: db}
}

func (r *GormVerificationRepository) Create(ctx context.Context, verification *domain.VerificationCode) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

// FindByEmailAndType returns the newest live code, or nil when there is none.
func (r *GormVerificationRepository) FindByEmailAndType(ctx context.Context, email string, codeType domain.VerificationCodeType) (*domain.VerificationCode, error) {
	var verification domain.VerificationCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND type = ?", email, codeType).
		Order("created_at DESC, id DESC").
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &verification, nil
}

func (r *GormVerificationRepository) DeleteByEmail(ctx context.Context, email string, codeType domain.VerificationCodeType) error {
	return r.db.WithContext(ctx).
		Where("email = ? AND type = ?", email, codeType).
		Delete(&domain.VerificationCode{}).Error
}

func (r *GormVerificationRepository) Update(ctx context.Context, verification *domain.VerificationCode) error {
	return r.db.WithContext(ctx).Save(verification).Error
}

// DeleteExpired removes every code that expired before now and reports how many.
func (r *GormVerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.VerificationCode{})
	return result.RowsAffected, result.Error
}
