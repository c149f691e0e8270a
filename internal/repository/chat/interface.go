package chat

import (
	"context"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
)

// ChatRepository handles chat data operations. Every lookup is scoped to the owner.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, chatID uint, userID string) (*domain.Chat, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Chat, error)
	UpdateTitle(ctx context.Context, chatID uint, userID, title string) (*domain.Chat, error)
	Delete(ctx context.Context, chatID uint, userID string) error
	TouchUpdatedAt(ctx context.Context, chatID uint, at time.Time) error
	CountByUserID(ctx context.Context, userID string) (int64, error)
}
