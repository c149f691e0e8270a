// File: internal/services/store/gorm_store.go
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/repository/chat"
	"github.com/iyunix/go-onyom/internal/repository/message"
	"github.com/iyunix/go-onyom/internal/repository/profile"
	"github.com/iyunix/go-onyom/internal/services"
)

// ChatStats summarizes one chat for the sidebar.
type ChatStats struct {
	ChatID            uint  `json:"chat_id"`
	TotalMessages     int64 `json:"total_messages"`
	UserMessages      int64 `json:"user_messages"`
	AssistantMessages int64 `json:"assistant_messages"`
}

// GormStore is the persistent store for profiles, chats and messages.
type GormStore struct {
	chats    chat.ChatRepository
	messages message.MessageRepository
	profiles profile.ProfileRepository
	logger   services.Logger
	now      func() time.Time
}

func NewGormStore(db *gorm.DB, logger services.Logger) *GormStore {
	return &GormStore{
		chats:    chat.NewChatRepository(db),
		messages: message.NewMessageRepository(db),
		profiles: profile.NewProfileRepository(db),
		logger:   logger,
		now:      time.Now,
	}
}

// ===== PROFILES =====

func (s *GormStore) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return *p, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	created, err := s.profiles.Create(ctx, &p)
	if err != nil {
		return domain.Profile{}, err
	}
	return *created, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.Profile, error) {
	current, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	next := update.Apply(*current)
	if err := s.profiles.Update(ctx, &next); err != nil {
		return domain.Profile{}, err
	}
	return next, nil
}

// ===== CHATS =====

// CreateChat fails with an owner-not-provisioned error when ownerID has no
// profile row, mirroring the foreign key the hosted store enforces.
func (s *GormStore) CreateChat(ctx context.Context, ownerID, title string) (domain.Chat, error) {
	exists, err := s.profiles.Exists(ctx, ownerID)
	if err != nil {
		return domain.Chat{}, err
	}
	if !exists {
		s.logger.Warn("chat creation refused, owner has no profile", "user_id", ownerID)
		return domain.Chat{}, domain.NewOwnerNotProvisionedError("CreateChat", domain.ErrProfileNotFound)
	}

	created, err := s.chats.Create(ctx, &domain.Chat{UserID: ownerID, Title: strings.TrimSpace(title)})
	if err != nil {
		return domain.Chat{}, err
	}
	return *created, nil
}

func (s *GormStore) ListChats(ctx context.Context, ownerID string) ([]domain.Chat, error) {
	return s.chats.FindByUserID(ctx, ownerID)
}

func (s *GormStore) UpdateChatTitle(ctx context.Context, ownerID string, chatID uint, title string) (domain.Chat, error) {
	updated, err := s.chats.UpdateTitle(ctx, chatID, ownerID, title)
	if err != nil {
		return domain.Chat{}, err
	}
	return *updated, nil
}

func (s *GormStore) DeleteChat(ctx context.Context, ownerID string, chatID uint) error {
	return s.chats.Delete(ctx, chatID, ownerID)
}

// ===== MESSAGES =====

func (s *GormStore) ListMessages(ctx context.Context, ownerID string, chatID uint) ([]domain.Message, error) {
	if _, err := s.chats.FindByID(ctx, chatID, ownerID); err != nil {
		return nil, err
	}
	records, err := s.messages.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToDomain())
	}
	return out, nil
}

// PersistMessage stores content in chatID and bumps the chat's updated_at
// so it sorts to the top of the owner's list.
func (s *GormStore) PersistMessage(ctx context.Context, ownerID string, chatID uint, content string, sender domain.Sender) (domain.Message, error) {
	if _, err := s.chats.FindByID(ctx, chatID, ownerID); err != nil {
		return domain.Message{}, err
	}

	rec, err := s.messages.Create(ctx, &message.Record{
		ChatID:      chatID,
		Content:     content,
		MessageType: string(sender),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return domain.Message{}, err
	}

	if err := s.chats.TouchUpdatedAt(ctx, chatID, rec.CreatedAt); err != nil {
		// the message itself is stored, ordering will catch up on the next write
		s.logger.Warn("failed to touch chat after message", "chat_id", chatID, "error", err)
	}
	return rec.ToDomain(), nil
}

func (s *GormStore) ChatStats(ctx context.Context, ownerID string, chatID uint) (ChatStats, error) {
	if _, err := s.chats.FindByID(ctx, chatID, ownerID); err != nil {
		return ChatStats{}, err
	}
	stats := ChatStats{ChatID: chatID}
	var err error
	if stats.TotalMessages, err = s.messages.CountByChatID(ctx, chatID); err != nil {
		return ChatStats{}, err
	}
	if stats.UserMessages, err = s.messages.CountByType(ctx, chatID, string(domain.SenderUser)); err != nil {
		return ChatStats{}, err
	}
	if stats.AssistantMessages, err = s.messages.CountByType(ctx, chatID, string(domain.SenderAssistant)); err != nil {
		return ChatStats{}, err
	}
	return stats, nil
}

// IsNotFound reports whether err is one of the store's lookup misses.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrChatNotFound) || errors.Is(err, domain.ErrProfileNotFound)
}
