// File: internal/repository/message/interface.go
package message

import (
	"context"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
)

// Record is the stored row behind a domain.Message.
type Record struct {
	ID          uint      `gorm:"primarykey"`
	ChatID      uint      `gorm:"not null;index"`
	Content     string    `gorm:"type:text;not null"`
	MessageType string    `gorm:"not null;size:20"` // "user" or "assistant"
	CreatedAt   time.Time `gorm:"index"`
}

func (Record) TableName() string { return "messages" }

// ToDomain converts a stored row into a confirmed message.
func (r Record) ToDomain() domain.Message {
	return domain.Message{
		ID:        domain.PersistedID(r.ID),
		ChatID:    r.ChatID,
		Content:   r.Content,
		Sender:    domain.Sender(r.MessageType),
		CreatedAt: r.CreatedAt,
	}
}

type MessageRepository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	FindByChatID(ctx context.Context, chatID uint) ([]Record, error)
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
	CountByType(ctx context.Context, chatID uint, messageType string) (int64, error)
	DeleteByChatID(ctx context.Context, chatID uint) error
}
