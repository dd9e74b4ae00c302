package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"github.com/redis/go-redis/v9"
)

// EventType names what happened in a session.
type EventType string

const (
	EventTypeSessionCreated EventType = "session.created"
	EventTypeActionApplied  EventType = "action.applied"
	EventTypeDayAdvanced    EventType = "day.advanced"
	EventTypeStoryEvent     EventType = "story.event"
	EventTypeGameEnded      EventType = "game.ended"
	EventTypeSessionDeleted EventType = "session.deleted"
)

// Event is one message on a session channel.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes session events over Redis Pub/Sub for SSE delivery.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a broadcaster on a shared client.
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel is the Pub/Sub channel for one session.
func Channel(id uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", id.String())
}

// Subscribe opens a subscription to one session's channel. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, id uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(id))
}

// PublishCreated announces a new session.
func (b *Broadcaster) PublishCreated(ctx context.Context, gs *state.GameState) error {
	return b.Publish(ctx, gs.ID, Event{
		Type: EventTypeSessionCreated,
		Data: map[string]any{
			"player": gs.Player.Name,
			"day":    gs.World.Day,
		},
	})
}

// PublishDeleted announces a deleted session.
func (b *Broadcaster) PublishDeleted(ctx context.Context, id uuid.UUID) error {
	return b.Publish(ctx, id, Event{Type: EventTypeSessionDeleted})
}

// PublishOutcome fans one applied action out into its events. prevEventID is the
// story event that was active before the action; a story event is announced only
// when a different one is active afterwards.
// The first publish error is returned after every event has been tried.
func (b *Broadcaster) PublishOutcome(ctx context.Context, id uuid.UUID, action, prevEventID string, gs *state.GameState, out *game.Outcome) error {
	evts := []Event{{
		Type: EventTypeActionApplied,
		Data: map[string]any{
			"action":  action,
			"message": out.Message,
			"day":     gs.World.Day,
			"energy":  gs.Player.Energy,
			"money":   gs.Player.Money,
			"fans":    gs.Player.Fans,
		},
	}}
	if out.Report != nil {
		evts = append(evts, Event{
			Type: EventTypeDayAdvanced,
			Data: map[string]any{
				"day":      gs.World.Day,
				"upkeep":   out.Report.UpkeepCharged,
				"bankrupt": out.Report.Bankrupt,
			},
		})
	}
	if ev := gs.ActiveEvent; ev != nil && ev.Def.ID != prevEventID {
		evts = append(evts, Event{
			Type: EventTypeStoryEvent,
			Data: map[string]any{"event_id": ev.Def.ID, "title": ev.Title, "npc_id": ev.TargetNPCID},
		})
	}
	if out.Ending != nil {
		evts = append(evts, Event{
			Type: EventTypeGameEnded,
			Data: map[string]any{"ending": out.Ending.ID, "title": out.Ending.Title},
		})
	}

	var first error
	for _, evt := range evts {
		if err := b.Publish(ctx, id, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Publish sends one event to the session channel.
func (b *Broadcaster) Publish(ctx context.Context, id uuid.UUID, event Event) error {
	event.SessionID = id.String()
	channel := Channel(id)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "event_type", event.Type)
	return nil
}
