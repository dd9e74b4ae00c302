package game

import (
	"context"
	"fmt"

	"github.com/jwebster45206/manga-engine/pkg/romance"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Cost is an energy and money price.
type Cost struct {
	Energy int `json:"energy"`
	Money  int `json:"money"`
}

// InteractionCosts prices each interaction kind.
var InteractionCosts = map[string]Cost{
	romance.Chat:    {Energy: 5},
	romance.Date:    {Energy: 30, Money: 200},
	romance.Gift:    {Energy: 5, Money: 500},
	romance.Provoke: {Energy: 5},
}

// KinWitnessRestraint is lost by the kin NPC when he catches the player on a date.
const KinWitnessRestraint = 10

// Breakup scene ids.
const (
	EventBreakupBlackened = "breakup_blackened_start"
	EventBreakupNormal    = "breakup_normal_start"
)

// Interact pays for and resolves one interaction with an NPC.
func (s *Session) Interact(ctx context.Context, npcID, kind string) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	cost, ok := InteractionCosts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interaction %q", state.ErrInvalidState, kind)
	}
	npc := s.gs.FindNPC(npcID)
	if npc == nil {
		return nil, fmt.Errorf("%w: npc %s", state.ErrNotFound, npcID)
	}
	if err := s.pay(cost.Energy, cost.Money); err != nil {
		return nil, err
	}

	res, err := s.romance.Interact(s.gs, npcID, kind)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Interaction: &res, Message: res.Text}
	if res.AddedFavor != 0 {
		out.Notes = append(out.Notes, fmt.Sprintf("%s favor %+d", npc.Name, res.AddedFavor))
	}

	if kind == romance.Date && res.Success && !npc.IsKin() {
		s.kinWitness(npc)
	}

	s.record(ctx, CategoryRomance, fmt.Sprintf("%s with %s", kind, npc.Name), map[string]any{
		"npc_id":  npc.ID,
		"success": res.Success,
		"favor":   npc.Favor(),
		"dating":  res.NowDating,
	})
	return s.finish(ctx, out), nil
}

// kinWitness may have the kin NPC catch the player on a date.
func (s *Session) kinWitness(date *state.NPC) {
	kin := s.gs.Kin()
	if kin == nil || !s.events.Has(EventKinWitness) {
		return
	}
	if !s.romance.CheckKinWitness(s.gs, date) {
		return
	}
	kin.Kin.Restraint -= KinWitnessRestraint
	if _, err := s.events.StartByID(s.gs, EventKinWitness, date.ID); err != nil {
		s.logger.Warn("Kin witness event failed", "error", err)
		return
	}
	s.logger.Info("Kin witnessed a date", "npc_id", date.ID, "restraint", kin.Kin.Restraint)
}

// BreakContact cuts ties with an NPC. Breaking up with a dating NPC plays the
// matching breakup scene when the catalog has one.
func (s *Session) BreakContact(ctx context.Context, npcID string) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	npc := s.gs.FindNPC(npcID)
	if npc == nil {
		return nil, fmt.Errorf("%w: npc %s", state.ErrNotFound, npcID)
	}
	wasDating := npc.Status == state.StatusDating

	res, err := s.romance.AttemptBreakContact(s.gs, npcID)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Break: &res, Message: res.Text}

	if wasDating {
		scene := EventBreakupNormal
		if res.IsBlackened {
			scene = EventBreakupBlackened
		}
		if s.events.Has(scene) {
			if _, err := s.events.StartByID(s.gs, scene, npc.ID); err != nil {
				s.logger.Warn("Breakup scene failed", "event_id", scene, "error", err)
			}
		}
	}

	s.record(ctx, CategoryRomance, res.Text, map[string]any{
		"npc_id":    npc.ID,
		"status":    string(res.Status),
		"blackened": res.IsBlackened,
	})
	return s.finish(ctx, out), nil
}
