package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

func TestMockStorage_AppendAndRecent(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	turns := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "I sneak in"},
		{Role: chat.ChatRoleAgent, Content: "Make a Stealth check, DC 14."},
		{Role: chat.ChatRoleUser, Content: "I rolled 16"},
	}
	if err := m.AppendTurns(ctx, "s1", turns...); err != nil {
		t.Fatalf("AppendTurns failed: %v", err)
	}

	got, err := m.RecentTurns(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("RecentTurns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].Content != turns[1].Content || got[1].Content != turns[2].Content {
		t.Errorf("unexpected turns: %+v", got)
	}

	missing, err := m.RecentTurns(ctx, "nope", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected no turns, got %d", len(missing))
	}
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	boom := errors.New("boom")

	if err := m.AppendTurns(ctx, "", chat.ChatMessage{}); err == nil {
		t.Error("expected error for empty session id")
	}

	m.SetSaveError(boom)
	if err := m.AppendTurns(ctx, "s1"); !errors.Is(err, boom) {
		t.Errorf("expected save error, got %v", err)
	}

	m.SetLoadError(boom)
	if _, err := m.RecentTurns(ctx, "s1", 1); !errors.Is(err, boom) {
		t.Errorf("expected load error, got %v", err)
	}

	m.SetPingError(boom)
	if err := m.Ping(ctx); !errors.Is(err, boom) {
		t.Errorf("expected ping error, got %v", err)
	}
	m.SetPingSuccess()
	if err := m.Ping(ctx); err != nil {
		t.Errorf("expected ping success, got %v", err)
	}
}

func TestMockStorage_DeleteSession(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	_ = m.AppendTurns(ctx, "s1", chat.ChatMessage{Role: chat.ChatRoleUser, Content: "hi"})
	if err := m.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, ok := m.Sessions()["s1"]; ok {
		t.Error("session should be gone")
	}
}
