// File: internal/services/conversation/events.go
package conversation

import (
	"sync"
	"time"

	"github.com/iyunix/go-onyom/internal/domain"
)

type EventType string

const (
	EventSendStarted       EventType = "send_started"
	EventSendCommitted     EventType = "send_committed"
	EventSendRolledBack    EventType = "send_rolled_back"
	EventAssistantReplied  EventType = "assistant_replied"
	EventAssistantFailed   EventType = "assistant_failed"
	EventChatCreated       EventType = "chat_created"
	EventChatCreateFailed  EventType = "chat_create_failed"
	EventChatDeleted       EventType = "chat_deleted"
	EventChatDeleteFailed  EventType = "chat_delete_failed"
	EventChatRenamed       EventType = "chat_renamed"
	EventRenameRolledBack  EventType = "rename_rolled_back"
	EventChatsSynchronized EventType = "chats_synchronized"
)

// Event reports the outcome of one saga step to the view layer.
type Event struct {
	Type      EventType        `json:"type"`
	ChatID    uint             `json:"chat_id,omitempty"`
	MessageID domain.MessageID `json:"message_id"`
	Err       error            `json:"-"`
	At        time.Time        `json:"at"`
}

type eventBus struct {
	mu   sync.Mutex
	subs map[int]func(Event)
	next int
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[int]func(Event))}
}

func (b *eventBus) subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// publish calls subscribers synchronously, outside the bus lock.
func (b *eventBus) publish(e Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
