package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/manga-engine/pkg/calendar"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewBroadcaster(client, logger), mr
}

func subscribe(t *testing.T, b *Broadcaster, gs *state.GameState) *redis.PubSub {
	t.Helper()
	ps := b.Subscribe(context.Background(), gs.ID)
	t.Cleanup(func() { _ = ps.Close() })
	// Wait for the subscription confirmation so no publish is missed.
	_, err := ps.Receive(context.Background())
	require.NoError(t, err)
	return ps
}

func receive(t *testing.T, ps *redis.PubSub) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := ps.ReceiveMessage(ctx)
	require.NoError(t, err)
	var evt Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
	return evt
}

func TestPublishCreated(t *testing.T) {
	b, _ := setupBroadcaster(t)
	gs := state.NewGameState("Aiko")
	ps := subscribe(t, b, gs)

	require.NoError(t, b.PublishCreated(context.Background(), gs))

	evt := receive(t, ps)
	assert.Equal(t, EventTypeSessionCreated, evt.Type)
	assert.Equal(t, gs.ID.String(), evt.SessionID)
	assert.Equal(t, "Aiko", evt.Data["player"])
}

func TestPublishOutcome(t *testing.T) {
	b, _ := setupBroadcaster(t)
	gs := state.NewGameState("Aiko")
	gs.ActiveEvent = &state.ActiveEvent{Title: "Rain", TargetNPCID: "npc_1"}
	gs.ActiveEvent.Def.ID = "gloomy_rain"
	ps := subscribe(t, b, gs)

	out := &game.Outcome{
		Message: "You sleep.",
		Report:  &calendar.DailyReport{Day: 2, UpkeepCharged: true},
		Ending:  &state.Ending{ID: game.EndingHeir, Title: "Back home"},
	}
	require.NoError(t, b.PublishOutcome(context.Background(), gs.ID, "rest", "", gs, out))

	want := []EventType{EventTypeActionApplied, EventTypeDayAdvanced, EventTypeStoryEvent, EventTypeGameEnded}
	for i, typ := range want {
		evt := receive(t, ps)
		assert.Equal(t, typ, evt.Type, "event %d", i)
		switch typ {
		case EventTypeActionApplied:
			assert.Equal(t, "rest", evt.Data["action"])
			assert.Equal(t, "You sleep.", evt.Data["message"])
		case EventTypeDayAdvanced:
			assert.Equal(t, true, evt.Data["upkeep"])
		case EventTypeStoryEvent:
			assert.Equal(t, "gloomy_rain", evt.Data["event_id"])
			assert.Equal(t, "npc_1", evt.Data["npc_id"])
		case EventTypeGameEnded:
			assert.Equal(t, game.EndingHeir, evt.Data["ending"])
		}
	}
}

func TestPublishOutcomeActionOnly(t *testing.T) {
	b, _ := setupBroadcaster(t)
	gs := state.NewGameState("Aiko")
	ps := subscribe(t, b, gs)

	require.NoError(t, b.PublishOutcome(context.Background(), gs.ID, "train", "", gs, &game.Outcome{Message: "ok"}))
	require.NoError(t, b.PublishDeleted(context.Background(), gs.ID))

	assert.Equal(t, EventTypeActionApplied, receive(t, ps).Type)
	assert.Equal(t, EventTypeSessionDeleted, receive(t, ps).Type)
}

func TestPublishFailsWhenRedisDown(t *testing.T) {
	b, mr := setupBroadcaster(t)
	gs := state.NewGameState("Aiko")
	mr.Close()

	err := b.PublishCreated(context.Background(), gs)
	assert.Error(t, err)
}

func TestPublishOutcomeSkipsUnchangedStoryEvent(t *testing.T) {
	b, _ := setupBroadcaster(t)
	gs := state.NewGameState("Aiko")
	gs.ActiveEvent = &state.ActiveEvent{Title: "Rain"}
	gs.ActiveEvent.Def.ID = "gloomy_rain"
	ps := subscribe(t, b, gs)

	// Still waiting on the same event: only the action is announced.
	require.NoError(t, b.PublishOutcome(context.Background(), gs.ID, "continue", "gloomy_rain", gs, &game.Outcome{}))
	// A chained event replaced it.
	gs.ActiveEvent.Def.ID = "gloomy_letters"
	require.NoError(t, b.PublishOutcome(context.Background(), gs.ID, "choose", "gloomy_rain", gs, &game.Outcome{}))
	require.NoError(t, b.PublishDeleted(context.Background(), gs.ID))

	got := []EventType{}
	for i := 0; i < 4; i++ {
		got = append(got, receive(t, ps).Type)
	}
	assert.Equal(t, []EventType{EventTypeActionApplied, EventTypeActionApplied, EventTypeStoryEvent, EventTypeSessionDeleted}, got)
}
