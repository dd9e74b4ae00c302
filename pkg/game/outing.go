package game

import (
	"context"
	"fmt"

	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/narrative"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Outing costs and rewards.
const (
	TrainCost       = 20
	TrainMinGain    = 2
	TrainMaxGain    = 4
	InspireCost     = 30
	InspireStyle    = 0.15
	InspireGenre    = 0.65
	InspireFallback = 0.5
	WanderCost      = 15
	GreetFavor      = 2
	AllowanceMoney  = 100
)

// Event ids the session starts directly.
const (
	EventFirstMeetPrefix  = "first_meet_"
	EventScriptedFirstMet = "scripted_first_meet"
	EventKinAllowance     = "kin_allowance"
	EventKinWitness       = "kin_witness"
)

// Train spends a session at the gallery (art) or the library (story).
func (s *Session) Train(ctx context.Context, stat string) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	attrs := &s.gs.Player.Attributes
	var field *float64
	var place string
	switch stat {
	case "art":
		field, place = &attrs.Art, "the art museum"
	case "story":
		field, place = &attrs.Story, "the city library"
	default:
		return nil, fmt.Errorf("%w: cannot train %q", state.ErrInvalidState, stat)
	}
	if err := s.pay(TrainCost, 0); err != nil {
		return nil, err
	}

	gain := dice.Int(s.roller, TrainMinGain, TrainMaxGain)
	*field += float64(gain)
	out := &Outcome{Message: fmt.Sprintf("An afternoon at %s. %s +%d.", place, stat, gain)}
	s.record(ctx, CategoryOuting, out.Message, map[string]any{"stat": stat, "gain": gain})
	return s.finish(ctx, out), nil
}

// HuntInspiration looks for a new style (rare) or genre. Coming back empty-handed
// still sharpens the story sense a little.
func (s *Session) HuntInspiration(ctx context.Context) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.pay(InspireCost, 0); err != nil {
		return nil, err
	}

	out := &Outcome{}
	roll := s.roller.Float64()
	if roll < InspireStyle {
		style, err := s.career.UnlockRandomStyle(s.gs)
		if err != nil {
			s.logger.Warn("Style unlock failed", "error", err)
		}
		if style != nil {
			out.Message = fmt.Sprintf("A new way of drawing clicks into place. Style unlocked: %s.", style.Name)
			s.record(ctx, CategoryOuting, out.Message, map[string]any{"style": style.ID})
			return s.finish(ctx, out), nil
		}
	}
	if roll < InspireGenre {
		genre, err := s.career.UnlockRandomGenre(s.gs)
		if err != nil {
			s.logger.Warn("Genre unlock failed", "error", err)
		}
		if genre != nil {
			out.Message = fmt.Sprintf("Something you saw sparks an idea. Genre unlocked: %s.", genre.Name)
			s.record(ctx, CategoryOuting, out.Message, map[string]any{"genre": genre.ID})
			return s.finish(ctx, out), nil
		}
	}

	s.gs.Player.Attributes.Story += InspireFallback
	out.Message = "You walk around for hours and find nothing special, but your mind feels sharper. story +0.5."
	s.record(ctx, CategoryOuting, out.Message, nil)
	return s.finish(ctx, out), nil
}

// Wander goes out with no plan. The first outing always introduces someone.
func (s *Session) Wander(ctx context.Context) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.pay(WanderCost, 0); err != nil {
		return nil, err
	}
	out := &Outcome{}

	if !s.gs.Flags[state.FlagFirstEncounter] && !s.gs.IsConfined() {
		if s.firstMeeting(out) {
			s.record(ctx, CategoryOuting, out.Message, map[string]any{"npc_id": s.gs.World.LastMet})
			return s.finish(ctx, out), nil
		}
	}

	enc := s.romance.TryEncounter(s.gs)
	out.Encounter = &enc
	switch {
	case enc.Met:
		s.gs.World.LastMet = enc.NPC.ID
		out.Message = fmt.Sprintf("You run into %s.", enc.NPC.Name)
	case s.gs.IsConfined():
		out.Message = enc.Message
	default:
		out.Message = enc.Message
		if s.kinAllowance() {
			break
		}
		if _, ok := s.events.CheckTriggers(s.gs, narrative.TriggerGoOut); !ok {
			out.Message = "A walk outside lifts your mood."
		}
	}

	data := map[string]any{"met": enc.Met}
	if enc.Met {
		data["npc_id"] = enc.NPC.ID
		data["new"] = enc.IsNew
	}
	s.record(ctx, CategoryOuting, out.Message, data)
	return s.finish(ctx, out), nil
}

// firstMeeting starts the scripted introduction to the first roster NPC.
func (s *Session) firstMeeting(out *Outcome) bool {
	if len(s.gs.RosterNPCs()) == 0 {
		s.romance.GenerateNewNPC(s.gs)
	}
	first := s.gs.RosterNPCs()[0]

	id := EventFirstMeetPrefix + first.Personality
	if !s.events.Has(id) {
		id = EventScriptedFirstMet
	}
	if !s.events.Has(id) {
		return false
	}
	if _, err := s.events.StartByID(s.gs, id, first.ID); err != nil {
		return false
	}
	s.gs.SetFlag(state.FlagFirstEncounter, true)
	s.gs.World.LastMet = first.ID
	s.gs.World.Encounters++
	out.Message = fmt.Sprintf("You meet %s for the first time.", first.Name)
	return true
}

// kinAllowance may start the kin NPC's rescue when the player is nearly broke.
func (s *Session) kinAllowance() bool {
	kin := s.gs.Kin()
	if kin == nil || s.gs.Player.Money >= AllowanceMoney || !s.events.Has(EventKinAllowance) {
		return false
	}
	if !s.romance.CheckKinWitness(s.gs, nil) {
		return false
	}
	_, err := s.events.StartByID(s.gs, EventKinAllowance, kin.ID)
	return err == nil
}

// Greet says hello to the NPC met on the last outing.
func (s *Session) Greet(ctx context.Context, npcID string) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if npcID == "" || s.gs.World.LastMet != npcID {
		return nil, fmt.Errorf("%w: you have not just met %s", state.ErrInvalidState, npcID)
	}
	npc := s.gs.FindNPC(npcID)
	if npc == nil {
		return nil, fmt.Errorf("%w: npc %s", state.ErrNotFound, npcID)
	}
	npc.AddFavor(GreetFavor)
	s.gs.World.LastMet = ""

	out := &Outcome{
		Message: fmt.Sprintf("You say hello to %s. %s", npc.Name, s.romance.Greeting(npc)),
		Notes:   []string{fmt.Sprintf("%s favor +%d", npc.Name, GreetFavor)},
	}
	s.record(ctx, CategoryRomance, out.Message, map[string]any{"npc_id": npc.ID})
	return s.finish(ctx, out), nil
}
