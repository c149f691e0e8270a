// File: internal/services/completion/provider.go
package completion

import (
	"context"

	"github.com/iyunix/go-onyom/internal/domain"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role/content pair sent to the completion service.
type Turn struct {
	Role    Role
	Content string
}

// Request is a fully assembled conversation: the persona's system turn,
// the trimmed history and the new user turn, in that order.
type Request struct {
	Tone  domain.TherapistTone
	Turns []Turn
}

// Provider produces the next assistant turn for a conversation.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}
