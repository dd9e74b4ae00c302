package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwebster45206/manga-engine/pkg/career"
	"github.com/jwebster45206/manga-engine/pkg/game"
)

// Action names accepted by the actions endpoint.
const (
	ActionStartWork   = "start_work"
	ActionDraw        = "draw_chapter"
	ActionFinishWork  = "finish_work"
	ActionTrain       = "train"
	ActionInspiration = "hunt_inspiration"
	ActionWander      = "wander"
	ActionGreet       = "greet"
	ActionInteract    = "interact"
	ActionBreak       = "break_contact"
	ActionChoose      = "choose"
	ActionContinue    = "continue"
	ActionRest        = "rest"
)

// ActionUnknown labels metrics for any action name not listed above.
const ActionUnknown = "unknown"

var knownActions = map[string]bool{
	ActionStartWork: true, ActionDraw: true, ActionFinishWork: true, ActionTrain: true,
	ActionInspiration: true, ActionWander: true, ActionGreet: true, ActionInteract: true,
	ActionBreak: true, ActionChoose: true, ActionContinue: true, ActionRest: true,
}

// actionLabel keeps metric label values to the known action names.
func actionLabel(action string) string {
	if knownActions[action] {
		return action
	}
	return ActionUnknown
}

var errUnknownAction = errors.New("unknown action")

// ActionRequest is one player action. Only the fields the action needs are read.
type ActionRequest struct {
	Action     string            `json:"action"`
	Title      string            `json:"title,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	Style      string            `json:"style,omitempty"`
	Focus      string            `json:"focus,omitempty"`
	Allocation career.Allocation `json:"allocation,omitempty"`
	Stat       string            `json:"stat,omitempty"`
	NPCID      string            `json:"npc_id,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Choice     int               `json:"choice,omitempty"`
}

// Dispatch runs the requested action on a session.
func Dispatch(ctx context.Context, s *game.Session, req ActionRequest) (*game.Outcome, error) {
	switch req.Action {
	case ActionStartWork:
		return s.StartWork(ctx, req.Title, req.Genre, req.Style)
	case ActionDraw:
		return s.DrawChapter(ctx, req.Focus, req.Allocation)
	case ActionFinishWork:
		return s.FinishWork(ctx)
	case ActionTrain:
		return s.Train(ctx, req.Stat)
	case ActionInspiration:
		return s.HuntInspiration(ctx)
	case ActionWander:
		return s.Wander(ctx)
	case ActionGreet:
		return s.Greet(ctx, req.NPCID)
	case ActionInteract:
		return s.Interact(ctx, req.NPCID, req.Kind)
	case ActionBreak:
		return s.BreakContact(ctx, req.NPCID)
	case ActionChoose:
		return s.Choose(ctx, req.Choice)
	case ActionContinue:
		return s.Continue(ctx)
	case ActionRest:
		return s.Rest(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAction, req.Action)
	}
}
