// File: internal/services/conversation/interface.go
package conversation

import (
	"context"

	"github.com/iyunix/go-onyom/internal/domain"
)

// RemoteStore is the persistent store, scoped by owner on every call.
type RemoteStore interface {
	CreateChat(ctx context.Context, ownerID, title string) (domain.Chat, error)
	ListChats(ctx context.Context, ownerID string) ([]domain.Chat, error)
	UpdateChatTitle(ctx context.Context, ownerID string, chatID uint, title string) (domain.Chat, error)
	DeleteChat(ctx context.Context, ownerID string, chatID uint) error
	ListMessages(ctx context.Context, ownerID string, chatID uint) ([]domain.Message, error)
	PersistMessage(ctx context.Context, ownerID string, chatID uint, content string, sender domain.Sender) (domain.Message, error)
}

// Completer produces the assistant's reply.
type Completer interface {
	Reply(ctx context.Context, persona domain.Persona, history []domain.Message, userText string) (string, error)
}

// SessionSource exposes the current session.
type SessionSource interface {
	Current() domain.Session
}

// Logger interface for the conversation package.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
