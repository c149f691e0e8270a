package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/services"
)

type recordingProvider struct {
	reply string
	err   error
	got   []Request
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) Complete(_ context.Context, req Request) (string, error) {
	p.got = append(p.got, req)
	return p.reply, p.err
}

func history(n int) []domain.Message {
	out := make([]domain.Message, n)
	for i := range out {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAssistant
		}
		out[i] = domain.Message{ID: domain.PersistedID(uint(i + 1)), Content: fmt.Sprintf("m%d", i), Sender: sender}
	}
	return out
}

func newTestBridge(t *testing.T, p Provider) *Bridge {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RatePerMinute = 0
	b, err := NewBridge(p, cfg, &services.NoOpLogger{})
	require.NoError(t, err)
	return b
}

func TestReplyCapsHistory(t *testing.T) {
	p := &recordingProvider{reply: "  ok  "}
	b := newTestBridge(t, p)

	text, err := b.Reply(context.Background(), domain.PersonaFor(domain.ToneGentle), history(40), "now")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	require.Len(t, p.got, 1)
	turns := p.got[0].Turns
	require.Len(t, turns, 15+2)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, domain.PersonaFor(domain.ToneGentle).SystemPrompt, turns[0].Content)
	assert.Equal(t, "m25", turns[1].Content)
	assert.Equal(t, "m39", turns[15].Content)
	assert.Equal(t, RoleAssistant, turns[15].Role)
	assert.Equal(t, Turn{Role: RoleUser, Content: "now"}, turns[16])
	assert.Equal(t, domain.ToneGentle, p.got[0].Tone)
}

func TestReplyShortHistoryUntouched(t *testing.T) {
	p := &recordingProvider{reply: "ok"}
	b := newTestBridge(t, p)

	_, err := b.Reply(context.Background(), domain.PersonaFor(domain.ToneSupportive), history(3), "x")
	require.NoError(t, err)
	assert.Len(t, p.got[0].Turns, 5)
}

func TestReplyCollapsesFailures(t *testing.T) {
	cases := map[string]*recordingProvider{
		"provider error": {err: NewProviderError("completion", "quota exceeded", errors.New("429"))},
		"network error":  {err: context.DeadlineExceeded},
		"empty reply":    {reply: "   "},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			b := newTestBridge(t, p)
			_, err := b.Reply(context.Background(), domain.PersonaFor(domain.ToneSupportive), nil, "hi")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestOfflineProviderRotatesByTone(t *testing.T) {
	p := NewOfflineProvider()
	req := Request{Tone: domain.ToneAnalytical}

	first, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Contains(t, offlineReplies[domain.ToneAnalytical], first)

	unknown, err := p.Complete(context.Background(), Request{Tone: "cheerful"})
	require.NoError(t, err)
	assert.Contains(t, offlineReplies[domain.ToneSupportive], unknown)
}

func TestOpenAIProviderAgainstStub(t *testing.T) {
	var seen map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "test"
	cfg.BaseURL = srv.URL + "/v1"
	p, err := NewOpenAIProvider(cfg)
	require.NoError(t, err)

	text, err := p.Complete(context.Background(), Request{Turns: []Turn{
		{Role: RoleSystem, Content: "be kind"},
		{Role: RoleUser, Content: "hi"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.Equal(t, "gpt-4", seen["model"])
	msgs := seen["messages"].([]interface{})
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
}

func TestOpenAIProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "test"
	cfg.BaseURL = srv.URL + "/v1"
	p, err := NewOpenAIProvider(cfg)
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), Request{Turns: []Turn{{Role: RoleUser, Content: "hi"}}})
	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTypeProvider, ce.Type)
}

func TestNewProviderFallsBackOffline(t *testing.T) {
	p, err := NewProvider(DefaultConfig(), &services.NoOpLogger{})
	require.NoError(t, err)
	assert.Equal(t, "offline", p.Name())
}
