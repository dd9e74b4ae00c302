package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Journal categories.
const (
	CategoryCareer   = "career"
	CategoryOuting   = "outing"
	CategoryRomance  = "romance"
	CategoryEvent    = "event"
	CategoryCalendar = "calendar"
	CategoryEnding   = "ending"
)

// Entry is one line in a session's journal.
type Entry struct {
	Day      int            `json:"day"`
	Category string         `json:"category"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}

// Journal records notable actions per game.
type Journal interface {
	Append(ctx context.Context, gameID uuid.UUID, e Entry) error
	List(ctx context.Context, gameID uuid.UUID) ([]Entry, error)
	Clear(ctx context.Context, gameID uuid.UUID) error
}

// MemoryJournal is an in-process Journal.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]Entry
}

// NewMemoryJournal creates an empty MemoryJournal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[uuid.UUID][]Entry)}
}

func (m *MemoryJournal) Append(_ context.Context, gameID uuid.UUID, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[gameID] = append(m.entries[gameID], e)
	return nil
}

func (m *MemoryJournal) List(_ context.Context, gameID uuid.UUID) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries[gameID]))
	copy(out, m.entries[gameID])
	return out, nil
}

func (m *MemoryJournal) Clear(_ context.Context, gameID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, gameID)
	return nil
}
