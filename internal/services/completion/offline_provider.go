// File: internal/services/completion/offline_provider.go
package completion

import (
	"context"
	"sync/atomic"

	"github.com/iyunix/go-onyom/internal/domain"
)

// OfflineProvider answers from a fixed set of persona-flavored replies. It
// stands in for the hosted service when no API key is configured.
type OfflineProvider struct {
	next atomic.Uint64
}

func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

func (p *OfflineProvider) Name() string { return "offline" }

var offlineReplies = map[domain.TherapistTone][]string{
	domain.ToneSupportive: {
		"That sounds really tough. You're here talking about it though, and that counts for a lot.",
		"I hear you. What's been helping you get through it?",
		"Thanks for trusting me with that. How are you holding up right now?",
	},
	domain.ToneAnalytical: {
		"Interesting. When did you first notice this happening?",
		"What do you think might connect these things?",
		"What would it look like if this were going differently?",
	},
	domain.ToneGentle: {
		"That sounds hard. I'm right here with you.",
		"Take all the time you need. What do you need right now?",
		"You're not alone in this.",
	},
}

// Complete rotates through the replies for the request's tone.
func (p *OfflineProvider) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	replies, ok := offlineReplies[req.Tone]
	if !ok {
		replies = offlineReplies[domain.ToneSupportive]
	}
	i := p.next.Add(1) - 1
	return replies[i%uint64(len(replies))], nil
}
