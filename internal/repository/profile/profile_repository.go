// File: internal/repository/profile/profile_repository.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/domain"
)

var ErrProfileNotFound = domain.ErrProfileNotFound

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	Exists(ctx context.Context, userID string) (bool, error)
}

type gormProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

func (r *gormProfileRepository) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile == nil || profile.UserID == "" {
		return nil, errors.New("profile requires a user ID")
	}
	if profile.Tone == "" {
		profile.Tone = domain.ToneSupportive
	}
	if profile.Theme == "" {
		profile.Theme = domain.ThemeSystem
	}
	if profile.TypingSpeed == 0 {
		profile.TypingSpeed = domain.DefaultTypingSpeed
	}

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		log.Printf("[ProfileRepository] Database error creating profile for user %s: %v", profile.UserID, err)
		return nil, fmt.Errorf("database error creating profile: %w", err)
	}
	log.Printf("[ProfileRepository] Profile created for user %s", profile.UserID)
	return profile, nil
}

func (r *gormProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		log.Printf("[ProfileRepository] Database error fetching profile for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error fetching profile: %w", err)
	}
	return &profile, nil
}

func (r *gormProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if profile == nil || profile.UserID == "" {
		return errors.New("profile requires a user ID")
	}
	result := r.db.WithContext(ctx).Save(profile)
	if result.Error != nil {
		log.Printf("[ProfileRepository] Database error updating profile for user %s: %v", profile.UserID, result.Error)
		return fmt.Errorf("database error updating profile: %w", result.Error)
	}
	return nil
}

func (r *gormProfileRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error checking profile: %w", err)
	}
	return count > 0, nil
}
