package narrative

import (
	"log/slog"

	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// EffectsWorker applies one data-only Effects value to a game state.
type EffectsWorker struct {
	gs     *state.GameState
	fx     *content.Effects
	target string
	logger *slog.Logger
}

// NewEffectsWorker creates a worker for applying fx to gs.
func NewEffectsWorker(gs *state.GameState, fx *content.Effects, logger *slog.Logger) *EffectsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EffectsWorker{gs: gs, fx: fx, logger: logger}
}

// ApplyEffects applies fx to gs with NPC-relative effects aimed at targetNPCID.
func ApplyEffects(gs *state.GameState, fx *content.Effects, targetNPCID string, logger *slog.Logger) []string {
	return NewEffectsWorker(gs, fx, logger).WithTarget(targetNPCID).Apply()
}

// WithTarget sets the NPC that NPC-relative effects apply to.
// Returns the EffectsWorker for method chaining
func (w *EffectsWorker) WithTarget(npcID string) *EffectsWorker {
	w.target = npcID
	return w
}

// Apply mutates the state and returns a short note per change.
// Fans and energy floor at zero. Attributes never decrease, so negative attribute deltas are dropped.
func (w *EffectsWorker) Apply() []string {
	if w.fx == nil {
		return nil
	}
	fx, p := w.fx, &w.gs.Player
	var notes []string

	if fx.Money != 0 {
		p.Money += fx.Money
		notes = append(notes, printer.Sprintf("Money %+d", fx.Money))
	}
	if fx.Fans != 0 {
		p.Fans = max(0, p.Fans+fx.Fans)
		notes = append(notes, printer.Sprintf("Fans %+d", fx.Fans))
	}
	if fx.Energy != 0 {
		p.Energy = max(0, p.Energy+fx.Energy)
		notes = append(notes, printer.Sprintf("Energy %+d", fx.Energy))
	}

	attrs := []struct {
		name  string
		delta float64
		field *float64
	}{
		{"Art", fx.Art, &p.Attributes.Art},
		{"Story", fx.Story, &p.Attributes.Story},
		{"Charm", fx.Charm, &p.Attributes.Charm},
		{"Darkness", fx.Darkness, &p.Attributes.Darkness},
	}
	for _, a := range attrs {
		switch {
		case a.delta > 0:
			*a.field += a.delta
			notes = append(notes, printer.Sprintf("%s +%.1f", a.name, a.delta))
		case a.delta < 0:
			w.logger.Warn("Ignoring negative attribute effect", "attribute", a.name, "delta", a.delta)
		}
	}

	if fx.DatingWithNPCFavor != 0 {
		if npc := w.luckyNPC(); npc != nil {
			npc.AddFavor(fx.DatingWithNPCFavor)
			notes = append(notes, printer.Sprintf("%s favor %+d", npc.Name, fx.DatingWithNPCFavor))
		} else {
			w.logger.Warn("No NPC to receive favor", "game_id", w.gs.ID.String())
		}
	}

	for _, fd := range fx.Favor {
		id := fd.NPCID
		if id == "" {
			id = w.target
		}
		npc := w.gs.FindNPC(id)
		if npc == nil {
			w.logger.Warn("Favor effect for unknown NPC", "game_id", w.gs.ID.String(), "npc_id", id)
			continue
		}
		npc.AddFavor(fd.Amount)
		notes = append(notes, printer.Sprintf("%s favor %+d", npc.Name, fd.Amount))
	}

	if fx.Kin != nil {
		notes = append(notes, w.applyKin(fx.Kin)...)
	}

	if fx.Status == content.StatusConfined {
		w.gs.SetFlag(state.FlagConfined, true)
		notes = append(notes, "You have lost your freedom...")
	} else if fx.Status != "" {
		w.logger.Warn("Unknown status effect", "status", fx.Status)
	}

	for name, v := range fx.SetFlags {
		w.gs.SetFlag(name, v)
	}

	return notes
}

// luckyNPC is the event's NPC if set, else the first NPC on the roster.
func (w *EffectsWorker) luckyNPC() *state.NPC {
	if w.target != "" {
		if npc := w.gs.FindNPC(w.target); npc != nil {
			return npc
		}
	}
	if len(w.gs.NPCs) > 0 {
		return w.gs.NPCs[0]
	}
	return nil
}

func (w *EffectsWorker) applyKin(kd *content.KinDelta) []string {
	kin := w.gs.Kin()
	if kin == nil {
		w.logger.Warn("Kin effect without a kin NPC", "game_id", w.gs.ID.String())
		return nil
	}
	kin.Kin.Affection += kd.Affection
	kin.Kin.Restraint += kd.Restraint
	kin.Kin.Jealousy += kd.Jealousy
	kin.Kin.Trust += kd.Trust

	var notes []string
	if kd.Affection != 0 {
		notes = append(notes, printer.Sprintf("%s affection %+d", kin.Name, kd.Affection))
	}
	if kd.Restraint != 0 {
		notes = append(notes, printer.Sprintf("%s restraint %+d", kin.Name, kd.Restraint))
	}
	if kd.Jealousy != 0 {
		notes = append(notes, printer.Sprintf("%s jealousy %+d", kin.Name, kd.Jealousy))
	}
	if kd.Trust != 0 {
		notes = append(notes, printer.Sprintf("%s trust %+d", kin.Name, kd.Trust))
	}
	return notes
}
