package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/dm-engine/pkg/chat"
	"github.com/jwebster45206/dm-engine/pkg/storage"
)

// RedisStorage implements the Storage interface using Redis lists, one list
// of JSON-encoded turns per session.
type RedisStorage struct {
	client   *redis.Client
	logger   *slog.Logger
	ttl      time.Duration
	maxTurns int
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL may be a
// redis:// URL or a bare host:port address.
func NewRedisStorage(redisURL string, ttl time.Duration, maxTurns int, logger *slog.Logger) *RedisStorage {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}

	return &RedisStorage{
		client:   redis.NewClient(opts),
		logger:   logger,
		ttl:      ttl,
		maxTurns: maxTurns,
	}
}

func historyKey(sessionID string) string {
	return "session:" + sessionID + ":history"
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session history operations

func (r *RedisStorage) AppendTurns(ctx context.Context, sessionID string, turns ...chat.ChatMessage) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	if len(turns) == 0 {
		return nil
	}

	values := make([]any, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		values = append(values, string(data))
	}

	key := historyKey(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.maxTurns > 0 {
			pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to append session turns", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to append session turns: %w", err)
	}

	return nil
}

func (r *RedisStorage) RecentTurns(ctx context.Context, sessionID string, n int) ([]chat.ChatMessage, error) {
	if n <= 0 {
		return []chat.ChatMessage{}, nil
	}

	raw, err := r.client.LRange(ctx, historyKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		r.logger.Error("Failed to load session turns", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("failed to load session turns: %w", err)
	}

	turns := make([]chat.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var turn chat.ChatMessage
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			r.logger.Warn("Skipping unreadable session turn", "session_id", sessionID, "error", err)
			continue
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		r.logger.Error("Failed to delete session", "session_id", sessionID, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
