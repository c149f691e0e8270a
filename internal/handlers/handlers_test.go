package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/config"
	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/dtos"
	"github.com/iyunix/go-onyom/internal/repository"
	"github.com/iyunix/go-onyom/internal/services"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:                   filepath.Join(dir, "api.db"),
		Environment:              "test",
		JWTSecretKey:             "test-secret",
		TokenTTL:                 time.Hour,
		RequireEmailVerification: false,
		CompletionModel:          "gpt-4",
		CompletionHistory:        15,
		CompletionTimeout:        5 * time.Second,
		CompletionMaxTokens:      500,
		IdentityTimeout:          5 * time.Second,
		ProfileTimeout:           5 * time.Second,
		StoreTimeout:             5 * time.Second,
	}
	db, err := repository.Open(cfg.DBPath)
	require.NoError(t, err)
	rt, err := app.NewRuntime(cfg, &services.NoOpLogger{}, db)
	require.NoError(t, err)
	return &apiClient{t: t, handler: NewRouter(rt, Limiters{})}
}

func (a *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusFor(domain.KindNotAuthenticated))
	assert.Equal(t, http.StatusPreconditionFailed, StatusFor(domain.KindOwnerNotProvisioned))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(domain.KindRemoteUnavailable))
	assert.Equal(t, http.StatusBadGateway, StatusFor(domain.KindCompletionUnavailable))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.KindValidationFailed))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(domain.KindInvalidCredentials))
}

func TestWriteDomainErrorUntyped(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, errors.New("plain"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodGet, "/api/chats", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	api.token = "not-a-token"
	rec = api.do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNavigationForAnonymousCaller(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodGet, "/api/navigation?path=/app/chat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nav := decode[dtos.NavigationResponseDTO](t, rec)
	assert.True(t, nav.Navigate)
	assert.Equal(t, "/auth/login", nav.Redirect)
}

func TestNavigationRedirectsAreDeliveredOnce(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/auth/signup", dtos.CredentialsRequestDTO{Email: "ada@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	api.token = decode[dtos.SessionResponseDTO](t, rec).Token

	navigate := func(path string) dtos.NavigationResponseDTO {
		t.Helper()
		rec := api.do(http.MethodGet, "/api/navigation?path="+path, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[dtos.NavigationResponseDTO](t, rec)
	}

	nav := navigate("/app/chat")
	assert.True(t, nav.Navigate)
	assert.Equal(t, "/onboarding", nav.Redirect)
	assert.False(t, navigate("/app/chat").Navigate, "an unchanged repeat is not re-emitted")

	assert.True(t, navigate("/").Navigate)
	assert.False(t, navigate("/").Navigate)

	// finishing onboarding moves the user off the page they are on, once
	name := "Ada"
	rec = api.do(http.MethodPut, "/api/profile", domain.ProfileUpdate{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	nav = navigate("/")
	assert.True(t, nav.Navigate)
	assert.Equal(t, "/app/chat", nav.Redirect)
	assert.False(t, navigate("/").Navigate)
	assert.False(t, navigate("/app/chat").Navigate, "already where the user belongs")
}

func TestSignInWrongPassword(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/auth/signup", dtos.CredentialsRequestDTO{Email: "ada@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/signin", dtos.CredentialsRequestDTO{Email: "ada@example.com", Password: "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode[dtos.ErrorResponse](t, rec)
	assert.Equal(t, string(domain.KindInvalidCredentials), resp.Kind)
}

func TestConversationOverHTTP(t *testing.T) {
	api := newAPI(t)

	rec := api.do(http.MethodPost, "/api/auth/signup", dtos.CredentialsRequestDTO{Email: "ada@example.com", Password: "correct-horse"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[dtos.SessionResponseDTO](t, rec)
	require.NotEmpty(t, sess.Token)
	assert.False(t, sess.OnboardingComplete)
	api.token = sess.Token

	nav := decode[dtos.NavigationResponseDTO](t, api.do(http.MethodGet, "/api/navigation?path=/app/chat", nil))
	assert.Equal(t, "/onboarding", nav.Redirect)

	name := "Ada"
	rec = api.do(http.MethodPut, "/api/profile", domain.ProfileUpdate{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[dtos.SessionResponseDTO](t, rec).OnboardingComplete)

	rec = api.do(http.MethodPost, "/api/chats", dtos.CreateChatRequestDTO{Message: "I keep worrying about work at night"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dtos.CreateChatResponseDTO](t, rec)
	assert.Equal(t, "I keep worrying about work at...", created.Chat.Title)
	assert.True(t, created.Chat.Active)
	require.NotNil(t, created.Send.AssistantMessage)
	assert.NotEmpty(t, created.Send.AssistantMessage.ContentHTML)
	chatPath := fmt.Sprintf("/api/chats/%d", created.Chat.ID)

	rec = api.do(http.MethodPost, chatPath+"/messages", dtos.SendMessageRequestDTO{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.KindValidationFailed), decode[dtos.ErrorResponse](t, rec).Kind)

	rec = api.do(http.MethodPost, chatPath+"/messages", dtos.SendMessageRequestDTO{Content: "It started last month"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sent := decode[dtos.SendMessageResponseDTO](t, rec)
	assert.Equal(t, "It started last month", sent.UserMessage.Content)
	assert.False(t, sent.UserMessage.Pending)

	msgs := decode[[]dtos.MessageResponseDTO](t, api.do(http.MethodGet, chatPath+"/messages", nil))
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[0].Sender)
	assert.Equal(t, "assistant", msgs[3].Sender)

	stats := decode[dtos.ChatStatsResponseDTO](t, api.do(http.MethodGet, chatPath+"/stats", nil))
	assert.EqualValues(t, 4, stats.TotalMessages)
	assert.EqualValues(t, 2, stats.UserMessages)
	assert.Equal(t, 4, stats.CachedMessages)
	require.NotNil(t, stats.LastMessage)

	cached := decode[dtos.CachedChatsResponseDTO](t, api.do(http.MethodGet, "/api/chats?cached=1", nil))
	require.Len(t, cached.Chats, 1)
	assert.Equal(t, created.Chat.ID, cached.ActiveChatID)
	again := decode[dtos.CachedChatsResponseDTO](t, api.do(http.MethodGet, "/api/chats?cached=1", nil))
	assert.Equal(t, cached.Version, again.Version, "reads do not move the version")

	rec = api.do(http.MethodPatch, chatPath, dtos.RenameChatRequestDTO{Title: "Night worries"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Night worries", decode[dtos.ChatResponseDTO](t, rec).Title)
	renamed := decode[dtos.CachedChatsResponseDTO](t, api.do(http.MethodGet, "/api/chats?cached=1", nil))
	assert.Greater(t, renamed.Version, cached.Version)
	assert.Equal(t, "Night worries", renamed.Chats[0].Title)

	chats := decode[[]dtos.ChatResponseDTO](t, api.do(http.MethodGet, "/api/chats", nil))
	require.Len(t, chats, 1)
	assert.Equal(t, "Night worries", chats[0].Title)

	rec = api.do(http.MethodDelete, chatPath, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	chats = decode[[]dtos.ChatResponseDTO](t, api.do(http.MethodGet, "/api/chats", nil))
	assert.Empty(t, chats)

	rec = api.do(http.MethodGet, chatPath+"/messages", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "deleted chats are no longer addressable")

	rec = api.do(http.MethodPost, "/api/auth/signout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignUpRejectsBadEmailAndResendIsSilent(t *testing.T) {
	api := newAPI(t)
	rec := api.do(http.MethodPost, "/api/auth/signup", dtos.CredentialsRequestDTO{Email: "not-an-email", Password: "correct-horse"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/resend", dtos.ResendRequestDTO{Email: "nobody@example.com"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
