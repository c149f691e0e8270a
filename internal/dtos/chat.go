// File: internal/dtos/chat.go
package dtos

import (
	"bytes"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/go-onyom/internal/domain"
)

// markdown renders assistant replies; raw HTML in them is escaped.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type ChatResponseDTO struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Active    bool   `json:"active,omitempty"`
}

// MessageResponseDTO carries a message; assistant messages also carry their
// markdown rendered as HTML.
type MessageResponseDTO struct {
	ID          string `json:"id"`
	ChatID      uint   `json:"chat_id"`
	Sender      string `json:"sender"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html,omitempty"`
	Pending     bool   `json:"pending"`
	CreatedAt   string `json:"created_at"`
}

type SendMessageRequestDTO struct {
	Content string `json:"content"`
}

type CreateChatRequestDTO struct {
	Message string `json:"message"`
}

type RenameChatRequestDTO struct {
	Title string `json:"title"`
}

type SendMessageResponseDTO struct {
	UserMessage      MessageResponseDTO  `json:"user_message"`
	AssistantMessage *MessageResponseDTO `json:"assistant_message,omitempty"`
}

type CreateChatResponseDTO struct {
	Chat ChatResponseDTO        `json:"chat"`
	Send SendMessageResponseDTO `json:"send"`
}

// CachedChatsResponseDTO is the chat list as the client currently holds it.
// Version grows with every cache write; an unchanged value means nothing
// needs to be redrawn.
type CachedChatsResponseDTO struct {
	Chats        []ChatResponseDTO `json:"chats"`
	ActiveChatID uint              `json:"active_chat_id,omitempty"`
	Version      uint64            `json:"version"`
}

// ChatStatsResponseDTO combines stored counts with what the client has cached.
type ChatStatsResponseDTO struct {
	ChatID            uint                `json:"chat_id"`
	TotalMessages     int64               `json:"total_messages"`
	UserMessages      int64               `json:"user_messages"`
	AssistantMessages int64               `json:"assistant_messages"`
	CachedMessages    int                 `json:"cached_messages"`
	LastMessage       *MessageResponseDTO `json:"last_message,omitempty"`
}

func FromChat(c domain.Chat, activeID uint) ChatResponseDTO {
	return ChatResponseDTO{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
		Active:    activeID != 0 && c.ID == activeID,
	}
}

func FromChatSlice(chats []domain.Chat, activeID uint) []ChatResponseDTO {
	out := make([]ChatResponseDTO, 0, len(chats))
	for _, c := range chats {
		out = append(out, FromChat(c, activeID))
	}
	return out
}

func FromCachedChats(chats []domain.Chat, activeID uint, version uint64) CachedChatsResponseDTO {
	return CachedChatsResponseDTO{
		Chats:        FromChatSlice(chats, activeID),
		ActiveChatID: activeID,
		Version:      version,
	}
}

func FromMessage(m domain.Message) MessageResponseDTO {
	dto := MessageResponseDTO{
		ID:        m.ID.String(),
		ChatID:    m.ChatID,
		Sender:    string(m.Sender),
		Content:   m.Content,
		Pending:   m.Pending,
		CreatedAt: m.CreatedAt.Format(time.RFC3339Nano),
	}
	if m.Sender == domain.SenderAssistant {
		dto.ContentHTML = RenderMarkdown(m.Content)
	}
	return dto
}

func FromMessageSlice(msgs []domain.Message) []MessageResponseDTO {
	out := make([]MessageResponseDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FromMessage(m))
	}
	return out
}

// RenderMarkdown converts content to HTML, returning "" if rendering fails.
func RenderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return buf.String()
}
