// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/domain"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, record *Record) (*Record, error) {
	if err := validateRecord(record); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		// content is never logged
		log.Printf("[MessageRepository] Database error during message creation for chat %d: %v", record.ChatID, err)
		return nil, fmt.Errorf("database error creating message: %w", err)
	}
	return record, nil
}

// FindByChatID returns the chat's messages oldest first.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]Record, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var records []Record
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat %d: %v", chatID, err)
		return nil, fmt.Errorf("database error fetching messages: %w", err)
	}
	return records, nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Record{}).Where("chat_id = ?", chatID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error counting messages: %w", err)
	}
	return count, nil
}

func (r *gormMessageRepository) CountByType(ctx context.Context, chatID uint, messageType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Record{}).
		Where("chat_id = ? AND message_type = ?", chatID, messageType).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error counting messages: %w", err)
	}
	return count, nil
}

func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&Record{}).Error; err != nil {
		log.Printf("[MessageRepository] Database error deleting messages for chat %d: %v", chatID, err)
		return fmt.Errorf("database error deleting messages: %w", err)
	}
	return nil
}

func validateRecord(record *Record) error {
	if record == nil {
		return errors.New("message cannot be nil")
	}
	if record.ChatID == 0 {
		return errors.New("chat ID is required")
	}
	if strings.TrimSpace(record.Content) == "" {
		return errors.New("message content cannot be empty")
	}
	switch domain.Sender(record.MessageType) {
	case domain.SenderUser:
		if utf8.RuneCountInString(record.Content) > domain.MaxMessageLength {
			return fmt.Errorf("message too long (max %d characters)", domain.MaxMessageLength)
		}
	case domain.SenderAssistant:
	default:
		return fmt.Errorf("invalid message type: %q", record.MessageType)
	}
	return nil
}
