package journal

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisJournal, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRedisJournal(client, ttl, logger), mr
}

func TestRedisJournal_AppendAndList(t *testing.T) {
	j, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()
	id := uuid.New()

	messages := []string{"Aki opens a studio.", "Chapter 1 is out!", "Day 2 begins."}
	for i, msg := range messages {
		e := game.Entry{Day: i + 1, Category: game.CategoryCareer, Message: msg, Data: map[string]any{"n": i}}
		if err := j.Append(ctx, id, e); err != nil {
			t.Fatalf("Failed to append entry: %v", err)
		}
	}

	depth, err := j.Depth(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get depth: %v", err)
	}
	if depth != len(messages) {
		t.Errorf("Expected depth %d, got %d", len(messages), depth)
	}

	entries, err := j.List(ctx, id)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	for i, msg := range messages {
		if entries[i].Message != msg {
			t.Errorf("Entry %d: expected %q, got %q", i, msg, entries[i].Message)
		}
		if entries[i].Day != i+1 {
			t.Errorf("Entry %d: expected day %d, got %d", i, i+1, entries[i].Day)
		}
	}

	if ttl := mr.TTL("journal:" + id.String()); ttl != time.Hour {
		t.Errorf("Expected 1h TTL, got %v", ttl)
	}
}

func TestRedisJournal_SessionsAreIsolated(t *testing.T) {
	j, _ := setupTestRedis(t, 0)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	_ = j.Append(ctx, a, game.Entry{Message: "a"})
	entries, err := j.List(ctx, b)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty journal for other session, got %d entries", len(entries))
	}
}

func TestRedisJournal_TrimsOldEntries(t *testing.T) {
	j, _ := setupTestRedis(t, 0)
	ctx := context.Background()
	id := uuid.New()

	for i := 0; i < MaxEntries+5; i++ {
		if err := j.Append(ctx, id, game.Entry{Day: i}); err != nil {
			t.Fatalf("Failed to append entry: %v", err)
		}
	}
	entries, _ := j.List(ctx, id)
	if len(entries) != MaxEntries {
		t.Fatalf("Expected %d entries, got %d", MaxEntries, len(entries))
	}
	if entries[0].Day != 5 {
		t.Errorf("Expected oldest kept entry to be day 5, got %d", entries[0].Day)
	}
}

func TestRedisJournal_SkipsCorruptAndClears(t *testing.T) {
	j, mr := setupTestRedis(t, 0)
	ctx := context.Background()
	id := uuid.New()

	_ = j.Append(ctx, id, game.Entry{Message: "ok"})
	if _, err := mr.RPush("journal:"+id.String(), "{broken"); err != nil {
		t.Fatalf("Failed to push raw entry: %v", err)
	}

	entries, err := j.List(ctx, id)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 readable entry, got %d", len(entries))
	}

	if err := j.Clear(ctx, id); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	if depth, _ := j.Depth(ctx, id); depth != 0 {
		t.Errorf("Expected empty journal after clear, got %d", depth)
	}
}

func TestRedisJournal_ServesSession(t *testing.T) {
	j, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	s := game.NewSession(ctx, "Aki", nil, game.Options{Journal: j})
	if _, err := s.Train(ctx, "art"); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	entries, err := j.List(ctx, s.State().ID)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
}
