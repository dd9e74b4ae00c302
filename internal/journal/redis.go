// Package journal stores per-session journals as Redis lists.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "journal:"

// MaxEntries caps how many entries a session keeps. Older entries are trimmed.
const MaxEntries = 500

// RedisJournal implements game.Journal with one Redis list per session.
type RedisJournal struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ game.Journal = (*RedisJournal)(nil)

// NewRedisJournal creates a journal. A zero ttl keeps entries forever.
func NewRedisJournal(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisJournal {
	return &RedisJournal{client: client, ttl: ttl, logger: logger}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Append pushes an entry, trims the list and refreshes its expiry in one round trip.
func (j *RedisJournal) Append(ctx context.Context, gameID uuid.UUID, e game.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	k := key(gameID)
	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, k, data)
	pipe.LTrim(ctx, k, -MaxEntries, -1)
	if j.ttl > 0 {
		pipe.Expire(ctx, k, j.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		j.logger.Error("Failed to append journal entry", "session_id", gameID, "error", err)
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	j.logger.Debug("Journal entry appended", "session_id", gameID, "category", e.Category)
	return nil
}

// List returns every entry, oldest first. Unreadable entries are skipped.
func (j *RedisJournal) List(ctx context.Context, gameID uuid.UUID) ([]game.Entry, error) {
	raw, err := j.client.LRange(ctx, key(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := make([]game.Entry, 0, len(raw))
	for _, item := range raw {
		var e game.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			j.logger.Warn("Skipping unreadable journal entry", "session_id", gameID, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (j *RedisJournal) Clear(ctx context.Context, gameID uuid.UUID) error {
	if err := j.client.Del(ctx, key(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

// Depth returns the number of entries for a session.
func (j *RedisJournal) Depth(ctx context.Context, gameID uuid.UUID) (int, error) {
	n, err := j.client.LLen(ctx, key(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get journal depth: %w", err)
	}
	return int(n), nil
}
