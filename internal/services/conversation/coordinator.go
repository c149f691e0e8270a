// File: internal/services/conversation/coordinator.go
package conversation

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
)

type Config struct {
	// StoreTimeout bounds every call to the persistent store.
	StoreTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{StoreTimeout: 10 * time.Second}
}

// SendResult carries what a send managed to commit. UserMessage is set
// whenever the user's message was persisted, even if the reply failed.
type SendResult struct {
	UserMessage      domain.Message  `json:"user_message"`
	AssistantMessage *domain.Message `json:"assistant_message,omitempty"`
}

type CreateResult struct {
	Chat domain.Chat `json:"chat"`
	Send SendResult  `json:"send"`
}

// Coordinator runs every mutation as a saga: write the cache optimistically,
// call the store, then commit or compensate. It is the only writer of Cache.
type Coordinator struct {
	store     RemoteStore
	completer Completer
	session   SessionSource
	cache     *Cache
	guard     *chatGuard
	events    *eventBus
	cfg       Config
	logger    Logger
	seq       atomic.Uint64
	now       func() time.Time
}

func NewCoordinator(store RemoteStore, completer Completer, session SessionSource, cache *Cache, cfg Config, logger Logger) *Coordinator {
	if cache == nil {
		cache = NewCache()
	}
	return &Coordinator{
		store:     store,
		completer: completer,
		session:   session,
		cache:     cache,
		guard:     newChatGuard(),
		events:    newEventBus(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *Coordinator) Cache() *Cache { return c.cache }

// Subscribe registers fn for saga events and returns the function that removes it.
func (c *Coordinator) Subscribe(fn func(Event)) func() {
	return c.events.subscribe(fn)
}

func (c *Coordinator) publish(t EventType, chatID uint, id domain.MessageID, err error) {
	c.events.publish(Event{Type: t, ChatID: chatID, MessageID: id, Err: err, At: c.now()})
}

// ===== READS =====

func (c *Coordinator) Chats() []domain.Chat {
	return c.cache.ListChats(c.session.Current().UserID)
}

func (c *Coordinator) Messages(chatID uint) []domain.Message {
	return c.cache.ListMessages(chatID)
}

// ===== SEND MESSAGE =====

// SendMessage appends content to chatID and asks the assistant to reply.
// A second send to the same chat waits until the first one settles.
func (c *Coordinator) SendMessage(ctx context.Context, chatID uint, content string) (SendResult, error) {
	const op = "SendMessage"
	text, err := SanitizeContent(content)
	if err != nil {
		return SendResult{}, domain.NewValidationError(op, err.Error())
	}
	sess := c.session.Current()
	if !sess.IsAuthenticated() {
		return SendResult{}, domain.NewNotAuthenticatedError(op)
	}
	if _, err := c.ownedChat(op, sess, chatID); err != nil {
		return SendResult{}, err
	}

	release, err := c.guard.acquire(ctx, chatID)
	if err != nil {
		return SendResult{}, domain.NewRemoteError(op, "a previous message is still sending", err)
	}
	defer release()

	// the saga outlives a caller that stops waiting for it
	return c.send(context.WithoutCancel(ctx), sess, chatID, text)
}

func (c *Coordinator) send(ctx context.Context, sess domain.Session, chatID uint, text string) (SendResult, error) {
	const op = "SendMessage"
	// a fresh client has not fetched the prior turns yet
	if !c.cache.Loaded(chatID) {
		if err := c.loadHistory(ctx, sess.UserID, chatID); err != nil {
			mapped := c.storeError(op, err)
			c.logger.Warn("history load before send failed", "chat_id", chatID, "error", err)
			return SendResult{}, mapped
		}
	}
	snapshot := c.cache.ListMessages(chatID)

	tempID := domain.PendingID(c.seq.Add(1))
	createdAt := c.now()
	if n := len(snapshot); n > 0 && snapshot[n-1].CreatedAt.After(createdAt) {
		createdAt = snapshot[n-1].CreatedAt
	}
	pending := domain.Message{
		ID:        tempID,
		ChatID:    chatID,
		Content:   text,
		Sender:    domain.SenderUser,
		CreatedAt: createdAt,
		Pending:   true,
	}
	if err := c.cache.UpsertMessage(pending); err != nil {
		return SendResult{}, domain.NewChatNotFoundError(op, nil)
	}
	c.publish(EventSendStarted, chatID, tempID, nil)

	userMsg, err := c.persist(ctx, sess.UserID, chatID, text, domain.SenderUser)
	if err != nil {
		c.cache.RollbackMessage(chatID, tempID, snapshot)
		c.logger.Warn("message persist failed, rolled back", "chat_id", chatID, "error", err)
		mapped := c.storeError(op, err)
		c.publish(EventSendRolledBack, chatID, tempID, mapped)
		return SendResult{}, mapped
	}
	if err := c.cache.ReplaceMessage(chatID, tempID, userMsg); err != nil {
		c.logger.Debug("chat left the cache during send", "chat_id", chatID)
	}
	c.cache.TouchChat(chatID, userMsg.CreatedAt)
	c.publish(EventSendCommitted, chatID, userMsg.ID, nil)
	result := SendResult{UserMessage: userMsg}

	reply, err := c.completer.Reply(ctx, domain.PersonaFor(sess.Tone), persistedOnly(snapshot), text)
	if err != nil {
		mapped := domain.NewCompletionUnavailableError(op, err)
		c.logger.Warn("assistant reply failed, user message kept", "chat_id", chatID, "error", err)
		c.publish(EventAssistantFailed, chatID, userMsg.ID, mapped)
		return result, mapped
	}

	assistantMsg, err := c.persist(ctx, sess.UserID, chatID, reply, domain.SenderAssistant)
	if err != nil {
		mapped := c.storeError(op, err)
		c.logger.Warn("assistant reply persist failed, user message kept", "chat_id", chatID, "error", err)
		c.publish(EventAssistantFailed, chatID, userMsg.ID, mapped)
		return result, mapped
	}
	if err := c.cache.UpsertMessage(assistantMsg); err != nil {
		c.logger.Debug("chat left the cache during send", "chat_id", chatID)
	}
	c.cache.TouchChat(chatID, assistantMsg.CreatedAt)
	c.publish(EventAssistantReplied, chatID, assistantMsg.ID, nil)

	result.AssistantMessage = &assistantMsg
	return result, nil
}

func (c *Coordinator) persist(ctx context.Context, ownerID string, chatID uint, content string, sender domain.Sender) (domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	m, err := c.store.PersistMessage(ctx, ownerID, chatID, content, sender)
	if err != nil {
		return domain.Message{}, err
	}
	m.Pending = false
	m.ChatID = chatID
	return m, nil
}

// ===== CREATE CHAT =====

// CreateChat creates a chat titled after firstMessage and sends it as the
// first turn. If the chat cannot be created nothing is cached.
func (c *Coordinator) CreateChat(ctx context.Context, firstMessage string) (CreateResult, error) {
	const op = "CreateChat"
	text, err := SanitizeContent(firstMessage)
	if err != nil {
		return CreateResult{}, domain.NewValidationError(op, err.Error())
	}
	sess := c.session.Current()
	if !sess.IsAuthenticated() {
		return CreateResult{}, domain.NewNotAuthenticatedError(op)
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.StoreTimeout)
	chat, err := c.store.CreateChat(sctx, sess.UserID, DeriveTitle(text))
	cancel()
	if err != nil {
		mapped := c.storeError(op, err)
		c.logger.Warn("chat creation failed", "user_id", sess.UserID, "error", err)
		c.publish(EventChatCreateFailed, 0, domain.MessageID{}, mapped)
		return CreateResult{}, mapped
	}

	c.cache.UpsertChat(chat)
	// a new chat has no history to fetch
	_ = c.cache.MergeMessages(chat.ID, nil)
	_ = c.cache.SetActiveChat(chat.ID)
	c.publish(EventChatCreated, chat.ID, domain.MessageID{}, nil)
	c.logger.Info("chat created", "chat_id", chat.ID, "user_id", sess.UserID)

	res, err := c.SendMessage(ctx, chat.ID, text)
	if latest, ok := c.cache.Chat(chat.ID); ok {
		chat = latest
	}
	return CreateResult{Chat: chat, Send: res}, err
}

// ===== DELETE CHAT =====

// DeleteChat removes the chat locally first. A failed remote delete is
// reported but not undone; LoadChats re-syncs with the server.
func (c *Coordinator) DeleteChat(ctx context.Context, chatID uint) error {
	const op = "DeleteChat"
	sess := c.session.Current()
	if !sess.IsAuthenticated() {
		return domain.NewNotAuthenticatedError(op)
	}
	if ch, ok := c.cache.Chat(chatID); ok && ch.UserID != sess.UserID {
		return domain.NewChatNotFoundError(op, nil)
	}

	c.cache.RemoveChat(chatID)
	c.publish(EventChatDeleted, chatID, domain.MessageID{}, nil)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.StoreTimeout)
	defer cancel()
	if err := c.store.DeleteChat(sctx, sess.UserID, chatID); err != nil {
		mapped := c.storeError(op, err)
		c.logger.Warn("remote chat delete failed", "chat_id", chatID, "error", err)
		c.publish(EventChatDeleteFailed, chatID, domain.MessageID{}, mapped)
		return mapped
	}
	return nil
}

// ===== RENAME CHAT =====

func (c *Coordinator) RenameChat(ctx context.Context, chatID uint, title string) (domain.Chat, error) {
	const op = "RenameChat"
	clean, err := NormalizeTitle(title)
	if err != nil {
		return domain.Chat{}, domain.NewValidationError(op, err.Error())
	}
	sess := c.session.Current()
	if !sess.IsAuthenticated() {
		return domain.Chat{}, domain.NewNotAuthenticatedError(op)
	}
	before, err := c.ownedChat(op, sess, chatID)
	if err != nil {
		return domain.Chat{}, err
	}

	renamed := before
	renamed.Title = clean
	c.cache.UpdateChat(renamed)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.StoreTimeout)
	defer cancel()
	updated, err := c.store.UpdateChatTitle(sctx, sess.UserID, chatID, clean)
	if err != nil {
		c.cache.UpdateChat(before)
		mapped := c.storeError(op, err)
		c.logger.Warn("rename failed, rolled back", "chat_id", chatID, "error", err)
		c.publish(EventRenameRolledBack, chatID, domain.MessageID{}, mapped)
		return before, mapped
	}
	c.cache.UpdateChat(updated)
	c.publish(EventChatRenamed, chatID, domain.MessageID{}, nil)
	return updated, nil
}

// ===== SYNC =====

// LoadChats replaces the cached chat list with the server's.
func (c *Coordinator) LoadChats(ctx context.Context) ([]domain.Chat, error) {
	const op = "LoadChats"
	sess := c.session.Current()
	if !sess.IsAuthenticated() {
		return nil, domain.NewNotAuthenticatedError(op)
	}
	sctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	chats, err := c.store.ListChats(sctx, sess.UserID)
	if err != nil {
		return c.cache.ListChats(sess.UserID), c.storeError(op, err)
	}
	c.cache.ReplaceChats(sess.UserID, chats)
	c.publish(EventChatsSynchronized, 0, domain.MessageID{}, nil)
	return c.cache.ListChats(sess.UserID), nil
}

// LoadMessages reconciles the cached messages of chatID with the server's.
func (c *Coordinator) LoadMessages(ctx context.Context, chatID uint) ([]domain.Message, error) {
	const op = "LoadMessages"
	sess := c.session.Current()
	if !sess.IsAuthenticated() {
		return nil, domain.NewNotAuthenticatedError(op)
	}
	if _, err := c.ownedChat(op, sess, chatID); err != nil {
		return nil, err
	}
	if err := c.loadHistory(ctx, sess.UserID, chatID); err != nil {
		if errors.Is(err, ErrUnknownChat) {
			return nil, domain.NewChatNotFoundError(op, nil)
		}
		return c.cache.ListMessages(chatID), c.storeError(op, err)
	}
	return c.cache.ListMessages(chatID), nil
}

// loadHistory fetches the chat's messages and merges them into the cache.
func (c *Coordinator) loadHistory(ctx context.Context, ownerID string, chatID uint) error {
	sctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	msgs, err := c.store.ListMessages(sctx, ownerID, chatID)
	if err != nil {
		return err
	}
	return c.cache.MergeMessages(chatID, msgs)
}

// SelectChat marks chatID as the active chat; zero clears the selection.
func (c *Coordinator) SelectChat(chatID uint) error {
	if chatID != 0 {
		if _, err := c.ownedChat("SelectChat", c.session.Current(), chatID); err != nil {
			return err
		}
	}
	return c.cache.SetActiveChat(chatID)
}

// Reset drops everything cached for ownerID, used on sign-out.
func (c *Coordinator) Reset(ownerID string) {
	if ownerID != "" {
		c.cache.PurgeOwner(ownerID)
	}
	_ = c.cache.SetActiveChat(0)
}

// Sending reports whether a send to chatID is in flight.
func (c *Coordinator) Sending(chatID uint) bool {
	return c.guard.busy(chatID)
}

// ===== HELPERS =====

func (c *Coordinator) ownedChat(op string, sess domain.Session, chatID uint) (domain.Chat, error) {
	ch, ok := c.cache.Chat(chatID)
	if !ok || ch.UserID != sess.UserID {
		return domain.Chat{}, domain.NewChatNotFoundError(op, nil)
	}
	return ch, nil
}

// storeError keeps tagged adapter errors, reports a missing chat as final,
// and marks the rest as retryable remote failures.
func (c *Coordinator) storeError(op string, err error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, domain.ErrChatNotFound) || errors.Is(err, ErrUnknownChat) {
		return domain.NewChatNotFoundError(op, err)
	}
	return domain.NewRemoteError(op, "could not reach the server, please try again", err)
}

func persistedOnly(list []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(list))
	for _, m := range list {
		if !m.Pending {
			out = append(out, m)
		}
	}
	return out
}
