package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Storage persists game sessions.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveGameState stores a session. LoadGameState returns nil, nil when the id is unknown.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	// DeleteGameState returns an error wrapping state.ErrNotFound when nothing was stored under id.
	DeleteGameState(ctx context.Context, id uuid.UUID) error
}
