// File: internal/domain/chat.go
package domain

import "time"

// MaxChatTitleLength is the longest title a chat may carry, in runes.
const MaxChatTitleLength = 100

// Chat represents a single conversation thread.
type Chat struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    string    `json:"user_id" gorm:"not null;index;size:36"` // owner, references profiles.user_id
	Title     string    `json:"title" gorm:"not null;size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
