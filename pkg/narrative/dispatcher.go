// Package narrative selects, presents and resolves story events.
package narrative

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/manga-engine/pkg/conditionals"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Trigger keys used by the game loop.
const (
	TriggerWork        = "work"
	TriggerGoOut       = "go_out"
	TriggerGloomyChain = "gloomy_chain"
	TriggerRest        = "rest"
	TriggerChampion    = "champion"
	// TriggerScript events never fire from CheckTriggers; they are started by id.
	TriggerScript = "script"
)

// Triggers lists every trigger key an event definition may use.
var Triggers = []string{TriggerWork, TriggerGoOut, TriggerGloomyChain, TriggerRest, TriggerChampion, TriggerScript}

const (
	defaultTitle   = "Something Happens"
	mysteriousName = "a mysterious man"
)

// JealousySource synthesizes jealousy showdowns. It is satisfied by *romance.Engine.
type JealousySource interface {
	CheckJealousyConflict(gs *state.GameState) *content.EventDef
}

// Resolution reports a resolved choice.
type Resolution struct {
	EventID   string   `json:"event_id"`
	Choice    string   `json:"choice"`
	Notes     []string `json:"notes,omitempty"`
	NextEvent string   `json:"next_event,omitempty"`
}

// Dispatcher is the event trigger engine.
type Dispatcher struct {
	tables    *content.Tables
	byTrigger map[string][]*content.EventDef
	jealousy  JealousySource
	roller    dice.Roller
	logger    *slog.Logger
}

// NewDispatcher indexes the event catalog. jealousy may be nil.
func NewDispatcher(tables *content.Tables, jealousy JealousySource, roller dice.Roller, logger *slog.Logger) *Dispatcher {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = &content.Tables{}
	}
	d := &Dispatcher{
		tables:    tables,
		byTrigger: map[string][]*content.EventDef{},
		jealousy:  jealousy,
		roller:    roller,
		logger:    logger,
	}
	if tables.Loaded() {
		for _, ev := range tables.Events {
			d.byTrigger[ev.Trigger] = append(d.byTrigger[ev.Trigger], ev)
		}
	}
	return d
}

// UsedFlag is the flag that marks a one-shot event as used.
func UsedFlag(eventID string) string {
	return "used_" + eventID
}

func (d *Dispatcher) available(gs *state.GameState, ev *content.EventDef) bool {
	return !(ev.Once && gs.Flags[UsedFlag(ev.ID)])
}

type candidate struct {
	npc *state.NPC
	ev  *content.EventDef
}

// CheckTriggers looks for an event to present for trigger and starts it.
// Jealousy showdowns take priority on work and outings. NPC chains bind the
// chosen NPC to the event.
func (d *Dispatcher) CheckTriggers(gs *state.GameState, trigger string) (*state.ActiveEvent, bool) {
	if !d.tables.Loaded() {
		d.logger.Warn("Event check before content loaded", "trigger", trigger)
		return nil, false
	}

	if (trigger == TriggerWork || trigger == TriggerGoOut) && d.jealousy != nil {
		if ev := d.jealousy.CheckJealousyConflict(gs); ev != nil {
			return d.StartEvent(gs, ev, ""), true
		}
	}

	if trigger == TriggerGloomyChain {
		return d.checkNPCChain(gs, trigger, content.Gloomy)
	}

	var candidates []*content.EventDef
	for _, ev := range d.byTrigger[trigger] {
		if d.available(gs, ev) && conditionals.Evaluate(ev.Conditions, gs, "") {
			candidates = append(candidates, ev)
		}
	}
	ev, ok := dice.Pick(d.roller, candidates)
	if !ok {
		return nil, false
	}
	return d.StartEvent(gs, ev, ""), true
}

// checkNPCChain gathers every (NPC, event) pair that qualifies across all NPCs of
// personality and fires one at random.
func (d *Dispatcher) checkNPCChain(gs *state.GameState, trigger, personality string) (*state.ActiveEvent, bool) {
	var candidates []candidate
	for _, npc := range gs.NPCs {
		if npc.Personality != personality {
			continue
		}
		for _, ev := range d.byTrigger[trigger] {
			if !d.available(gs, ev) {
				continue
			}
			if ev.TriggerVal != nil && npc.Favor() < *ev.TriggerVal {
				continue
			}
			if !conditionals.Evaluate(ev.Conditions, gs, npc.ID) {
				continue
			}
			candidates = append(candidates, candidate{npc: npc, ev: ev})
		}
	}
	c, ok := dice.Pick(d.roller, candidates)
	if !ok {
		return nil, false
	}
	return d.StartEvent(gs, c.ev, c.npc.ID), true
}

// StartEvent marks a one-shot event used, formats its text and makes it the active event.
func (d *Dispatcher) StartEvent(gs *state.GameState, def *content.EventDef, targetNPCID string) *state.ActiveEvent {
	if def.Once {
		gs.SetFlag(UsedFlag(def.ID), true)
	}
	if gs.ActiveEvent != nil {
		d.logger.Warn("Replacing unresolved event", "game_id", gs.ID.String(), "previous", gs.ActiveEvent.Def.ID, "next", def.ID)
	}

	f := &formatter{gs: gs, target: targetNPCID, roller: d.roller}
	ae := &state.ActiveEvent{
		Def:   *def,
		Title: def.Title,
		Text:  f.format(def.Text),
	}
	if ae.Title == "" {
		ae.Title = defaultTitle
	}
	ae.Title = f.format(ae.Title)
	for _, c := range def.Choices {
		ae.Choices = append(ae.Choices, f.format(c.Text))
	}
	ae.TargetNPCID = f.target
	gs.ActiveEvent = ae

	d.logger.Info("Event started",
		"game_id", gs.ID.String(),
		"event_id", def.ID,
		"trigger", def.Trigger,
		"target_npc", ae.TargetNPCID)
	return ae
}

// StartByID starts a catalog event by id.
func (d *Dispatcher) StartByID(gs *state.GameState, eventID, targetNPCID string) (*state.ActiveEvent, error) {
	def, ok := d.tables.Event(eventID)
	if !ok {
		d.logger.Warn("Event not found", "event_id", eventID)
		return nil, fmt.Errorf("%w: event %s", state.ErrNotFound, eventID)
	}
	return d.StartEvent(gs, def, targetNPCID), nil
}

// Has reports whether the catalog contains an event id.
func (d *Dispatcher) Has(eventID string) bool {
	_, ok := d.tables.Event(eventID)
	return ok
}

// ResolveChoice applies the chosen option of the active event and queues any chained event.
// An event without choices can be dismissed with index 0.
func (d *Dispatcher) ResolveChoice(gs *state.GameState, index int) (*Resolution, error) {
	ae := gs.ActiveEvent
	if ae == nil {
		return nil, fmt.Errorf("%w: no active event", state.ErrInvalidState)
	}

	res := &Resolution{EventID: ae.Def.ID}
	switch {
	case len(ae.Def.Choices) == 0 && index == 0:
		res.Choice = "Continue"
	case index < 0 || index >= len(ae.Def.Choices):
		return nil, fmt.Errorf("%w: choice %d of event %s", state.ErrNotFound, index, ae.Def.ID)
	default:
		choice := ae.Def.Choices[index]
		res.Choice = ae.Choices[index]
		res.Notes = ApplyEffects(gs, choice.Effects, ae.TargetNPCID, d.logger)
		if choice.NextEvent != "" {
			gs.PendingEvents = append(gs.PendingEvents, state.PendingEvent{
				EventID:     choice.NextEvent,
				TargetNPCID: ae.TargetNPCID,
			})
			res.NextEvent = choice.NextEvent
		}
	}
	gs.ActiveEvent = nil

	d.logger.Debug("Event resolved",
		"game_id", gs.ID.String(),
		"event_id", res.EventID,
		"choice", index,
		"next_event", res.NextEvent)
	return res, nil
}

// Resume starts the next pending chained event, if any. Unknown ids are skipped.
// Nothing is started while another event is active.
func (d *Dispatcher) Resume(gs *state.GameState) (*state.ActiveEvent, bool) {
	if gs.ActiveEvent != nil {
		return nil, false
	}
	for len(gs.PendingEvents) > 0 {
		next := gs.PendingEvents[0]
		gs.PendingEvents = gs.PendingEvents[1:]
		def, ok := d.tables.Event(next.EventID)
		if !ok {
			d.logger.Warn("Chained event not found", "game_id", gs.ID.String(), "event_id", next.EventID)
			continue
		}
		return d.StartEvent(gs, def, next.TargetNPCID), true
	}
	return nil, false
}

// formatter fills text placeholders. A random NPC picked for {npc_name}
// becomes the event's target so effects land on the named NPC.
type formatter struct {
	gs     *state.GameState
	target string
	roller dice.Roller
}

func (f *formatter) format(text string) string {
	if text == "" {
		return ""
	}
	name := f.gs.Player.Name
	if name == "" {
		name = "you"
	}
	text = strings.ReplaceAll(text, "{player_name}", name)

	if strings.Contains(text, "{npc_name}") {
		text = strings.ReplaceAll(text, "{npc_name}", f.npcName())
	}
	if strings.Contains(text, "{npc_name_A}") {
		text = strings.ReplaceAll(text, "{npc_name_A}", f.nthName(0, "Man A"))
	}
	if strings.Contains(text, "{npc_name_B}") {
		text = strings.ReplaceAll(text, "{npc_name_B}", f.nthName(1, "Man B"))
	}
	return text
}

func (f *formatter) npcName() string {
	if f.target != "" {
		if npc := f.gs.FindNPC(f.target); npc != nil {
			return npc.Name
		}
	}
	npc, ok := dice.Pick(f.roller, f.gs.NPCs)
	if !ok {
		return mysteriousName
	}
	f.target = npc.ID
	return npc.Name
}

func (f *formatter) nthName(i int, fallback string) string {
	if i < len(f.gs.NPCs) {
		return f.gs.NPCs[i].Name
	}
	return fallback
}
