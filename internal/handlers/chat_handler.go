// File: internal/handlers/chat_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/dtos"
	"github.com/iyunix/go-onyom/internal/middleware"
	"github.com/iyunix/go-onyom/internal/services/conversation"
	"github.com/iyunix/go-onyom/internal/services/store"
)

type ChatHandler struct {
	store *store.GormStore
}

func NewChatHandler(s *store.GormStore) *ChatHandler {
	return &ChatHandler{store: s}
}

func clientOrReject(w http.ResponseWriter, r *http.Request) (*app.Client, bool) {
	c, ok := middleware.ClientFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return c, ok
}

func chatIDFrom(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		writeError(w, "Invalid chat ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func activeChat(c *app.Client) uint {
	id, _ := c.Conversation.Cache().ActiveChat()
	return id
}

func toSendDTO(res conversation.SendResult) dtos.SendMessageResponseDTO {
	out := dtos.SendMessageResponseDTO{UserMessage: dtos.FromMessage(res.UserMessage)}
	if res.AssistantMessage != nil {
		reply := dtos.FromMessage(*res.AssistantMessage)
		out.AssistantMessage = &reply
	}
	return out
}

// GetUserChats handles GET /api/chats; ?cached=1 skips the server round trip
// and answers with the cache version.
func (h *ChatHandler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("cached") == "1" {
		// read the version first so it never claims more than the list shows
		version := c.Conversation.Cache().Version()
		writeJSON(w, http.StatusOK, dtos.FromCachedChats(c.Conversation.Chats(), activeChat(c), version))
		return
	}
	chats, err := c.Conversation.LoadChats(r.Context())
	if err != nil {
		writeDomainError(w, err, dtos.FromChatSlice(chats, activeChat(c)))
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromChatSlice(chats, activeChat(c)))
}

// CreateChat handles POST /api/chats with the opening message.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	var req dtos.CreateChatRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := c.Conversation.CreateChat(r.Context(), req.Message)
	if err != nil && res.Chat.ID == 0 {
		writeDomainError(w, err, nil)
		return
	}
	body := dtos.CreateChatResponseDTO{Chat: dtos.FromChat(res.Chat, activeChat(c)), Send: toSendDTO(res.Send)}
	if err != nil {
		// the chat exists; the first send did not fully complete
		writeDomainError(w, err, body)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

// GetChatMessages handles GET /api/chats/{id}/messages.
func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDFrom(w, r)
	if !ok {
		return
	}
	msgs, err := c.Conversation.LoadMessages(r.Context(), chatID)
	if err != nil {
		writeDomainError(w, err, dtos.FromMessageSlice(msgs))
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromMessageSlice(msgs))
}

// SendMessage handles POST /api/chats/{id}/messages.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDFrom(w, r)
	if !ok {
		return
	}
	var req dtos.SendMessageRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := c.Conversation.SendMessage(r.Context(), chatID, req.Content)
	if err != nil {
		var data interface{}
		if res.UserMessage.ID.IsPersisted() {
			data = toSendDTO(res)
		}
		writeDomainError(w, err, data)
		return
	}
	writeJSON(w, http.StatusOK, toSendDTO(res))
}

// DeleteChat handles DELETE /api/chats/{id}.
func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDFrom(w, r)
	if !ok {
		return
	}
	if err := c.Conversation.DeleteChat(r.Context(), chatID); err != nil {
		writeDomainError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameChat handles PATCH /api/chats/{id}.
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDFrom(w, r)
	if !ok {
		return
	}
	var req dtos.RenameChatRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	ch, err := c.Conversation.RenameChat(r.Context(), chatID, req.Title)
	if err != nil {
		writeDomainError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromChat(ch, activeChat(c)))
}

// SelectChat handles PUT /api/chats/{id}/active.
func (h *ChatHandler) SelectChat(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDFrom(w, r)
	if !ok {
		return
	}
	if err := c.Conversation.SelectChat(chatID); err != nil {
		writeDomainError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetChatStats handles GET /api/chats/{id}/stats.
func (h *ChatHandler) GetChatStats(w http.ResponseWriter, r *http.Request) {
	c, ok := clientOrReject(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDFrom(w, r)
	if !ok {
		return
	}
	owner := c.Session.Current().UserID
	stats, err := h.store.ChatStats(r.Context(), owner, chatID)
	if store.IsNotFound(err) {
		writeError(w, "chat not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "Could not load chat stats", http.StatusServiceUnavailable)
		return
	}

	out := dtos.ChatStatsResponseDTO{
		ChatID:            stats.ChatID,
		TotalMessages:     stats.TotalMessages,
		UserMessages:      stats.UserMessages,
		AssistantMessages: stats.AssistantMessages,
	}
	n, last := c.Conversation.Cache().Stats(chatID)
	out.CachedMessages = n
	if last != nil {
		dto := dtos.FromMessage(*last)
		out.LastMessage = &dto
	}
	writeJSON(w, http.StatusOK, out)
}
