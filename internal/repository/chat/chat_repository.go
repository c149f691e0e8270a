// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/domain"
)

var ErrChatNotFound = domain.ErrChatNotFound

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := validateChatInput(chat); err != nil {
		log.Printf("[ChatRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for user %s: %v", chat.UserID, err)
		return nil, fmt.Errorf("database error creating chat: %w", err)
	}

	log.Printf("[ChatRepository] Chat created with ID: %d for user: %s", chat.ID, chat.UserID)
	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, chatID uint, userID string) (*domain.Chat, error) {
	if chatID == 0 || userID == "" {
		return nil, errors.New("invalid chat ID or user ID")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		log.Printf("[ChatRepository] Database error in FindByID for chat %d: %v", chatID, err)
		return nil, fmt.Errorf("database error fetching chat: %w", err)
	}
	return &chat, nil
}

// FindByUserID returns the owner's chats, most recently active first.
func (r *gormChatRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user %s: %v", userID, err)
		return nil, fmt.Errorf("database error fetching chats: %w", err)
	}
	return chats, nil
}

func (r *gormChatRepository) UpdateTitle(ctx context.Context, chatID uint, userID, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > domain.MaxChatTitleLength {
		return nil, errors.New("invalid chat title")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ? AND user_id = ?", chatID, userID).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error renaming chat %d: %v", chatID, result.Error)
		return nil, fmt.Errorf("database error renaming chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrChatNotFound
	}
	return r.FindByID(ctx, chatID, userID)
}

// Delete removes the chat and its messages in one transaction.
func (r *gormChatRepository) Delete(ctx context.Context, chatID uint, userID string) error {
	if chatID == 0 || userID == "" {
		return errors.New("invalid chat ID or user ID")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", chatID, userID).Delete(&domain.Chat{})
		if result.Error != nil {
			log.Printf("[ChatRepository] Database error deleting chat %d for user %s: %v", chatID, userID, result.Error)
			return fmt.Errorf("database error deleting chat: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrChatNotFound
		}
		if err := tx.Exec("DELETE FROM messages WHERE chat_id = ?", chatID).Error; err != nil {
			return fmt.Errorf("database error deleting chat messages: %w", err)
		}
		log.Printf("[ChatRepository] Chat deleted: ID %d for user %s", chatID, userID)
		return nil
	})
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID uint, at time.Time) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		UpdateColumn("updated_at", at)
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating timestamp for chat %d: %v", chatID, result.Error)
		return fmt.Errorf("database error updating chat timestamp: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *gormChatRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Chat{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error counting chats: %w", err)
	}
	return count, nil
}

func validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if chat.UserID == "" {
		return errors.New("user ID is required")
	}
	title := strings.TrimSpace(chat.Title)
	if title == "" {
		return errors.New("chat title cannot be empty")
	}
	if utf8.RuneCountInString(title) > domain.MaxChatTitleLength {
		return fmt.Errorf("chat title too long (max %d characters)", domain.MaxChatTitleLength)
	}
	return nil
}
