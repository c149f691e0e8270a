// File: internal/domain/message.go
package domain

import (
	"fmt"
	"time"
)

// MaxMessageLength is the longest message content accepted, in runes.
const MaxMessageLength = 1000

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// MessageID is either a local placeholder for an unconfirmed message or the
// id assigned by the persistent store. The zero value is neither.
type MessageID struct {
	local  uint64
	remote uint
}

// PendingID returns a placeholder id for the local sequence number seq.
func PendingID(seq uint64) MessageID {
	return MessageID{local: seq}
}

// PersistedID returns the id for a message the store has acknowledged.
func PersistedID(id uint) MessageID {
	return MessageID{remote: id}
}

func (id MessageID) IsPending() bool   { return id.local != 0 }
func (id MessageID) IsPersisted() bool { return id.remote != 0 && id.local == 0 }
func (id MessageID) IsZero() bool      { return id.local == 0 && id.remote == 0 }

// Remote returns the store id; ok is false for pending ids.
func (id MessageID) Remote() (uint, bool) {
	return id.remote, id.IsPersisted()
}

func (id MessageID) String() string {
	switch {
	case id.IsPending():
		return fmt.Sprintf("pending:%d", id.local)
	case id.IsPersisted():
		return fmt.Sprintf("%d", id.remote)
	default:
		return "none"
	}
}

// MarshalText renders the id for JSON responses.
func (id MessageID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Message represents a single message within a chat.
type Message struct {
	ID        MessageID `json:"id"`
	ChatID    uint      `json:"chat_id"`
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
	Pending   bool      `json:"pending"`
}
