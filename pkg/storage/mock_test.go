package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

func TestMockStorage_SaveAndLoadGameState(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	gs := state.NewGameState("Aki")
	gs.Player.Fans = 77
	if err := m.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}
	gs.Player.Fans = 0

	loaded, err := m.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Failed to load gamestate: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil gamestate")
	}
	if loaded.Player.Fans != 77 {
		t.Errorf("Expected stored copy with 77 fans, got %d", loaded.Player.Fans)
	}
}

func TestMockStorage_LoadNonExistentGameState(t *testing.T) {
	loaded, err := NewMockStorage().LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for non-existent gamestate, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for non-existent gamestate")
	}
}

func TestMockStorage_Errors(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	if err := m.SaveGameState(ctx, uuid.New(), nil); err == nil {
		t.Error("Expected error saving nil gamestate")
	}

	m.SetPingError(errors.New("down"))
	if err := m.Ping(ctx); err == nil {
		t.Error("Expected ping error")
	}

	m.SetSaveError(errors.New("full"))
	gs := state.NewGameState("Aki")
	if err := m.SaveGameState(ctx, gs.ID, gs); err == nil {
		t.Error("Expected save error")
	}
	if m.Count() != 0 {
		t.Errorf("Expected 0 stored sessions, got %d", m.Count())
	}
}

func TestMockStorage_DeleteGameState(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()
	gs := state.NewGameState("Aki")
	if err := m.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("Failed to save gamestate: %v", err)
	}

	if err := m.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if err := m.DeleteGameState(ctx, gs.ID); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if err := m.DeleteGameState(ctx, uuid.New()); !errors.Is(err, state.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
}
