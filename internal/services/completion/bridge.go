// File: internal/services/completion/bridge.go
package completion

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/services"
)

// Bridge is the single entry point to the completion service. Whatever goes
// wrong underneath, callers only ever see ErrUnavailable.
type Bridge struct {
	provider Provider
	config   *Config
	limiter  *rate.Limiter
	logger   services.Logger
}

func NewBridge(provider Provider, config *Config, logger services.Logger) (*Bridge, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	b := &Bridge{provider: provider, config: config, logger: logger}
	if config.RatePerMinute > 0 {
		b.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RatePerMinute)), config.RatePerMinute)
	}
	return b, nil
}

// NewProvider picks the hosted provider when an API key is configured and
// the offline one otherwise.
func NewProvider(config *Config, logger services.Logger) (Provider, error) {
	if config.APIKey == "" {
		logger.Warn("no completion API key configured, using offline replies")
		return NewOfflineProvider(), nil
	}
	return NewOpenAIProvider(config)
}

// Reply asks the completion service for the persona's next turn. history is
// the chat's prior messages in chronological order; only the most recent
// HistoryWindow of them are sent.
func (b *Bridge) Reply(ctx context.Context, persona domain.Persona, history []domain.Message, userText string) (string, error) {
	req := b.buildRequest(persona, history, userText)

	ctx, cancel := context.WithTimeout(ctx, b.config.Timeout)
	defer cancel()

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			b.logger.Warn("completion throttled past deadline", "error", err)
			return "", unavailable(err)
		}
	}

	start := time.Now()
	text, err := b.provider.Complete(ctx, req)
	if err != nil {
		b.logger.Error("completion failed", "provider", b.provider.Name(), "duration", time.Since(start).String(), "error", err)
		return "", unavailable(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		b.logger.Error("completion returned no text", "provider", b.provider.Name())
		return "", unavailable(&CompletionError{Type: ErrTypeEmpty, Operation: "reply", Message: "empty completion response"})
	}

	b.logger.Debug("completion succeeded", "provider", b.provider.Name(), "turns", len(req.Turns), "duration", time.Since(start).String())
	return text, nil
}

func (b *Bridge) buildRequest(persona domain.Persona, history []domain.Message, userText string) Request {
	if n := b.config.HistoryWindow; len(history) > n {
		history = history[len(history)-n:]
	}

	turns := make([]Turn, 0, len(history)+2)
	turns = append(turns, Turn{Role: RoleSystem, Content: persona.SystemPrompt})
	for _, m := range history {
		role := RoleUser
		if m.Sender == domain.SenderAssistant {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: m.Content})
	}
	turns = append(turns, Turn{Role: RoleUser, Content: userText})
	return Request{Tone: persona.Tone, Turns: turns}
}
