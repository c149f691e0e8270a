// File: internal/services/conversation/cache.go
package conversation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
)

var ErrUnknownChat = errors.New("chat is not in the cache")

// Cache is the local view of the signed-in user's chats and messages.
// Readers always receive copies; only the Coordinator writes.
type Cache struct {
	mu       sync.RWMutex
	chats    map[uint]domain.Chat
	messages map[uint][]domain.Message
	located  map[domain.MessageID]uint // message id -> chat id
	loaded   map[uint]bool             // chats whose server history has been merged
	active   uint
	version  uint64
}

func NewCache() *Cache {
	return &Cache{
		chats:    make(map[uint]domain.Chat),
		messages: make(map[uint][]domain.Message),
		located:  make(map[domain.MessageID]uint),
		loaded:   make(map[uint]bool),
	}
}

// ===== READS =====

// ListChats returns owner's chats, most recently updated first.
func (c *Cache) ListChats(ownerID string) []domain.Chat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Chat, 0)
	for _, ch := range c.chats {
		if ch.UserID == ownerID {
			out = append(out, ch)
		}
	}
	sortChats(out)
	return out
}

func (c *Cache) Chat(chatID uint) (domain.Chat, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.chats[chatID]
	return ch, ok
}

// ListMessages returns the chat's messages in chronological order.
func (c *Cache) ListMessages(chatID uint) []domain.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Message(nil), c.messages[chatID]...)
}

// Loaded reports whether the chat's history has been merged from the server.
func (c *Cache) Loaded(chatID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded[chatID]
}

func (c *Cache) HasPending(chatID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return hasPending(c.messages[chatID])
}

// Stats returns how many messages are cached for the chat and the newest one.
func (c *Cache) Stats(chatID uint) (int, *domain.Message) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := c.messages[chatID]
	if len(list) == 0 {
		return 0, nil
	}
	last := list[len(list)-1]
	return len(list), &last
}

func (c *Cache) ActiveChat() (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active, c.active != 0
}

// Version increases on every write.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// ===== CHAT WRITES =====

// UpsertChat inserts or replaces the chat with the same id.
func (c *Cache) UpsertChat(chat domain.Chat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats[chat.ID] = chat
	if _, ok := c.messages[chat.ID]; !ok {
		c.messages[chat.ID] = nil
	}
	c.version++
}

// UpdateChat replaces the chat only if it is still cached.
func (c *Cache) UpdateChat(chat domain.Chat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[chat.ID]; !ok {
		return false
	}
	c.chats[chat.ID] = chat
	c.version++
	return true
}

// TouchChat moves the chat's updated time forward to at.
func (c *Cache) TouchChat(chatID uint, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.chats[chatID]
	if !ok || !at.After(ch.UpdatedAt) {
		return
	}
	ch.UpdatedAt = at
	c.chats[chatID] = ch
	c.version++
}

// RemoveChat drops the chat with all of its messages.
func (c *Cache) RemoveChat(chatID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeChatLocked(chatID)
}

func (c *Cache) removeChatLocked(chatID uint) bool {
	if _, ok := c.chats[chatID]; !ok {
		return false
	}
	for _, m := range c.messages[chatID] {
		delete(c.located, m.ID)
	}
	delete(c.messages, chatID)
	delete(c.loaded, chatID)
	delete(c.chats, chatID)
	if c.active == chatID {
		c.active = 0
	}
	c.version++
	return true
}

// ReplaceChats makes owner's cached chats match chats. Chats the server no
// longer lists are dropped unless they still hold a pending message.
func (c *Cache) ReplaceChats(ownerID string, chats []domain.Chat) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keep := make(map[uint]bool, len(chats))
	for _, ch := range chats {
		keep[ch.ID] = true
	}
	for id, ch := range c.chats {
		if ch.UserID != ownerID || keep[id] || hasPending(c.messages[id]) {
			continue
		}
		c.removeChatLocked(id)
	}
	for _, ch := range chats {
		c.chats[ch.ID] = ch
		if _, ok := c.messages[ch.ID]; !ok {
			c.messages[ch.ID] = nil
		}
	}
	c.version++
}

// PurgeOwner forgets everything cached for ownerID.
func (c *Cache) PurgeOwner(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.chats {
		if ch.UserID == ownerID {
			c.removeChatLocked(id)
		}
	}
	c.version++
}

func (c *Cache) SetActiveChat(chatID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if chatID != 0 {
		if _, ok := c.chats[chatID]; !ok {
			return ErrUnknownChat
		}
	}
	c.active = chatID
	c.version++
	return nil
}

// ===== MESSAGE WRITES =====

// UpsertMessage replaces the message with the same id in place, or inserts
// it after every message that is not newer than it.
func (c *Cache) UpsertMessage(m domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upsertLocked(m)
}

func (c *Cache) upsertLocked(m domain.Message) error {
	if _, ok := c.chats[m.ChatID]; !ok {
		return ErrUnknownChat
	}

	if owner, ok := c.located[m.ID]; ok && owner != m.ChatID {
		c.removeMessageLocked(m.ID)
	}
	list := c.messages[m.ChatID]
	if i := indexOf(list, m.ID); i >= 0 {
		list[i] = m
		c.messages[m.ChatID] = keepOrdered(list)
	} else {
		c.messages[m.ChatID] = insertOrdered(list, m)
	}
	c.located[m.ID] = m.ChatID
	c.version++
	return nil
}

// ReplaceMessage swaps the entry old for m at the same position. When m's
// id is already listed the old entry is dropped instead, so ids stay unique.
func (c *Cache) ReplaceMessage(chatID uint, old domain.MessageID, m domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[chatID]; !ok {
		return ErrUnknownChat
	}
	list := c.messages[chatID]
	i := indexOf(list, old)
	if i < 0 {
		return c.upsertLocked(m)
	}

	delete(c.located, old)
	if j := indexOf(list, m.ID); j >= 0 {
		list[j] = m
		list = append(list[:i], list[i+1:]...)
	} else {
		list[i] = m
	}
	c.messages[chatID] = keepOrdered(list)
	c.located[m.ID] = chatID
	c.version++
	return nil
}

func (c *Cache) RemoveMessage(id domain.MessageID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeMessageLocked(id)
}

func (c *Cache) removeMessageLocked(id domain.MessageID) bool {
	chatID, ok := c.located[id]
	if !ok {
		return false
	}
	list := c.messages[chatID]
	if i := indexOf(list, id); i >= 0 {
		c.messages[chatID] = append(list[:i], list[i+1:]...)
	}
	delete(c.located, id)
	c.version++
	return true
}

// RollbackMessage drops the optimistic entry tempID and puts back any entry
// of snapshot that is missing. Entries merged from the server since the
// snapshot was taken are kept. It does nothing if the chat has been removed.
func (c *Cache) RollbackMessage(chatID uint, tempID domain.MessageID, snapshot []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[chatID]; !ok {
		return
	}
	list := c.messages[chatID]
	if i := indexOf(list, tempID); i >= 0 {
		list = append(list[:i], list[i+1:]...)
		delete(c.located, tempID)
	}
	for _, m := range snapshot {
		if indexOf(list, m.ID) < 0 {
			list = insertOrdered(list, m)
			c.located[m.ID] = chatID
		}
	}
	c.messages[chatID] = list
	c.version++
}

// MergeMessages reconciles the server's list for a chat with the cache:
// server entries win, duplicates collapse, pending entries are kept.
func (c *Cache) MergeMessages(chatID uint, persisted []domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.chats[chatID]; !ok {
		return ErrUnknownChat
	}

	merged := make([]domain.Message, 0, len(persisted))
	seen := make(map[domain.MessageID]int, len(persisted))
	for _, m := range persisted {
		m.ChatID = chatID
		if i, dup := seen[m.ID]; dup {
			merged[i] = m
			continue
		}
		seen[m.ID] = len(merged)
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].CreatedAt.Before(merged[j].CreatedAt) })

	for _, m := range c.messages[chatID] {
		delete(c.located, m.ID)
		if m.Pending {
			merged = insertOrdered(merged, m)
		}
	}
	for _, m := range merged {
		c.located[m.ID] = chatID
	}
	c.messages[chatID] = merged
	c.loaded[chatID] = true
	c.version++
	return nil
}

// ===== HELPERS =====

func sortChats(chats []domain.Chat) {
	sort.Slice(chats, func(i, j int) bool {
		if !chats[i].UpdatedAt.Equal(chats[j].UpdatedAt) {
			return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
		}
		return chats[i].ID > chats[j].ID
	})
}

func indexOf(list []domain.Message, id domain.MessageID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func insertOrdered(list []domain.Message, m domain.Message) []domain.Message {
	i := sort.Search(len(list), func(i int) bool { return list[i].CreatedAt.After(m.CreatedAt) })
	list = append(list, domain.Message{})
	copy(list[i+1:], list[i:])
	list[i] = m
	return list
}

// keepOrdered re-sorts only when an in-place replacement broke the order.
func keepOrdered(list []domain.Message) []domain.Message {
	ordered := sort.SliceIsSorted(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	if !ordered {
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	}
	return list
}

func hasPending(list []domain.Message) bool {
	for _, m := range list {
		if m.Pending {
			return true
		}
	}
	return false
}
