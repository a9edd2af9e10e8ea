package storage

import (
	"context"

	"github.com/jwebster45206/dm-engine/pkg/chat"
)

// Storage defines the interface for session history persistence.
// Sessions hold chronological conversation turns keyed by session id.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// AppendTurns adds turns to the end of a session, creating it if needed,
	// and refreshes its expiry. Older turns past the retention limit are dropped.
	AppendTurns(ctx context.Context, sessionID string, turns ...chat.ChatMessage) error

	// RecentTurns returns up to n of the most recent turns in chronological
	// order. An unknown session yields an empty slice, not an error.
	RecentTurns(ctx context.Context, sessionID string, n int) ([]chat.ChatMessage, error)

	// DeleteSession removes a session and its history.
	DeleteSession(ctx context.Context, sessionID string) error
}
