package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

func newTestStorage(t *testing.T, ttl time.Duration, maxTurns int) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewRedisStorage("redis://"+mr.Addr()+"/0", ttl, maxTurns, logger)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStorage_Ping(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour, 10)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	mr.Close()
	assert.Error(t, s.Ping(ctx))
}

func TestRedisStorage_BareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorage(mr.Addr(), time.Hour, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))
}

func TestRedisStorage_AppendAndRecent(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour, 10)
	ctx := context.Background()

	require.NoError(t, s.AppendTurns(ctx, "abc",
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: "I sneak in"},
		chat.ChatMessage{Role: chat.ChatRoleAgent, Content: "Make a Stealth check, DC 14."},
	))
	require.NoError(t, s.AppendTurns(ctx, "abc",
		chat.ChatMessage{Role: chat.ChatRoleUser, Content: "I rolled 16"},
	))

	got, err := s.RecentTurns(ctx, "abc", 2)
	require.NoError(t, err)
	assert.Equal(t, []chat.ChatMessage{
		{Role: chat.ChatRoleAgent, Content: "Make a Stealth check, DC 14."},
		{Role: chat.ChatRoleUser, Content: "I rolled 16"},
	}, got)

	assert.True(t, mr.Exists("session:abc:history"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc:history"))
}

func TestRedisStorage_TrimsToMaxTurns(t *testing.T) {
	s, _ := newTestStorage(t, time.Hour, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendTurns(ctx, "abc",
			chat.ChatMessage{Role: chat.ChatRoleUser, Content: fmt.Sprintf("turn %d", i)}))
	}

	got, err := s.RecentTurns(ctx, "abc", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "turn 2", got[0].Content)
	assert.Equal(t, "turn 4", got[2].Content)
}

func TestRedisStorage_UnknownSession(t *testing.T) {
	s, _ := newTestStorage(t, time.Hour, 10)

	got, err := s.RecentTurns(context.Background(), "missing", 8)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStorage_SkipsUnreadableTurns(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour, 10)
	ctx := context.Background()

	_, err := mr.Push("session:abc:history", "not json", `{"role":"assistant","content":"ok"}`)
	require.NoError(t, err)

	got, err := s.RecentTurns(ctx, "abc", 8)
	require.NoError(t, err)
	assert.Equal(t, []chat.ChatMessage{{Role: chat.ChatRoleAgent, Content: "ok"}}, got)
}

func TestRedisStorage_Validation(t *testing.T) {
	s, _ := newTestStorage(t, time.Hour, 10)
	ctx := context.Background()

	assert.Error(t, s.AppendTurns(ctx, "  ", chat.ChatMessage{Role: chat.ChatRoleUser, Content: "x"}))
	assert.NoError(t, s.AppendTurns(ctx, "abc"))

	got, err := s.RecentTurns(ctx, "abc", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	s, mr := newTestStorage(t, time.Hour, 10)
	ctx := context.Background()

	require.NoError(t, s.AppendTurns(ctx, "abc", chat.ChatMessage{Role: chat.ChatRoleUser, Content: "hi"}))
	require.NoError(t, s.DeleteSession(ctx, "abc"))
	assert.False(t, mr.Exists("session:abc:history"))
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	s, _ := newTestStorage(t, time.Hour, 10)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, s.WaitForConnection(ctx))
}
