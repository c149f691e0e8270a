package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/repository"
	"github.com/iyunix/go-onyom/internal/services"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewGormStore(db, &services.NoOpLogger{})
}

func provision(t *testing.T, s *GormStore, userID string) {
	t.Helper()
	_, err := s.CreateProfile(context.Background(), domain.Profile{UserID: userID, Email: userID + "@example.com", Name: userID + "@example.com"})
	require.NoError(t, err)
}

func TestCreateChatRequiresProfile(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateChat(context.Background(), "ghost", "Hello")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindOwnerNotProvisioned))

	chats, err := s.ListChats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestPersistMessageOrdersChats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	provision(t, s, "u1")

	base := time.Now().Add(time.Hour)
	tick := base
	s.now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	first, err := s.CreateChat(ctx, "u1", "First")
	require.NoError(t, err)
	second, err := s.CreateChat(ctx, "u1", "Second")
	require.NoError(t, err)

	_, err = s.PersistMessage(ctx, "u1", first.ID, "hi", domain.SenderUser)
	require.NoError(t, err)
	reply, err := s.PersistMessage(ctx, "u1", first.ID, "hello", domain.SenderAssistant)
	require.NoError(t, err)
	assert.True(t, reply.ID.IsPersisted())

	chats, err := s.ListChats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, first.ID, chats[0].ID)
	assert.Equal(t, second.ID, chats[1].ID)

	msgs, err := s.ListMessages(ctx, "u1", first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.SenderUser, msgs[0].Sender)
	assert.Equal(t, "hello", msgs[1].Content)
	assert.False(t, msgs[1].Pending)

	stats, err := s.ChatStats(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalMessages)
	assert.EqualValues(t, 1, stats.AssistantMessages)
}

func TestChatsAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	provision(t, s, "u1")
	provision(t, s, "u2")

	c, err := s.CreateChat(ctx, "u1", "Mine")
	require.NoError(t, err)

	_, err = s.ListMessages(ctx, "u2", c.ID)
	assert.ErrorIs(t, err, domain.ErrChatNotFound)
	assert.ErrorIs(t, s.DeleteChat(ctx, "u2", c.ID), domain.ErrChatNotFound)
	_, err = s.PersistMessage(ctx, "u2", c.ID, "x", domain.SenderUser)
	assert.True(t, IsNotFound(err))
}

func TestRenameAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	provision(t, s, "u1")

	c, err := s.CreateChat(ctx, "u1", "Old")
	require.NoError(t, err)
	_, err = s.PersistMessage(ctx, "u1", c.ID, "hi", domain.SenderUser)
	require.NoError(t, err)

	renamed, err := s.UpdateChatTitle(ctx, "u1", c.ID, "  New  ")
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Title)

	require.NoError(t, s.DeleteChat(ctx, "u1", c.ID))
	chats, err := s.ListChats(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, chats)

	count, err := s.messages.CountByChatID(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	provision(t, s, "u1")

	name := "Ada Lovelace"
	tone := domain.ToneGentle
	p, err := s.UpdateProfile(ctx, "u1", domain.ProfileUpdate{Name: &name, Tone: &tone})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.Name)

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ToneGentle, got.Tone)
	assert.Equal(t, domain.DefaultTypingSpeed, got.TypingSpeed)

	_, err = s.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
