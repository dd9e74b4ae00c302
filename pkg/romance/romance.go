// Package romance is the NPC relationship engine: generation, interactions,
// breakups and encounter rolls.
package romance

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Interaction kinds.
const (
	Chat    = "chat"
	Date    = "date"
	Gift    = "gift"
	Provoke = "provoke"
)

// Line categories that are not interactions.
const (
	CategoryJealousy = "jealousy"
	CategoryGreeting = "greeting"
)

// Favor rules.
const (
	ChatFavor         = 2
	KinChatAffection  = 3
	KinChatRestraint  = 2
	DateMinFavor      = 20
	DateFavor         = 10
	DatingThreshold   = 80
	GiftFavor         = 15
	ProvokePenalty    = 10
	KinProvokePenalty = 15
	HotFavor          = 60
)

// InteractionResult is what the caller shows after an interaction.
type InteractionResult struct {
	Success    bool   `json:"success"`
	Text       string `json:"text"`
	AddedFavor int    `json:"added_favorability"`
	NPCID      string `json:"npc_id"`
	NowDating  bool   `json:"now_dating,omitempty"`
}

// Engine owns NPC relationship rules.
type Engine struct {
	tables *content.Tables
	roller dice.Roller
	logger *slog.Logger
}

// New creates a romance Engine.
func New(tables *content.Tables, roller dice.Roller, logger *slog.Logger) *Engine {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = &content.Tables{}
	}
	return &Engine{tables: tables, roller: roller, logger: logger}
}

func (e *Engine) findNPC(gs *state.GameState, npcID string) (*state.NPC, error) {
	npc := gs.FindNPC(npcID)
	if npc == nil {
		e.logger.Warn("NPC not found", "game_id", gs.ID.String(), "npc_id", npcID)
		return nil, fmt.Errorf("%w: npc %s", state.ErrNotFound, npcID)
	}
	return npc, nil
}

// Interact resolves one interaction with an NPC.
// A failed date is a result with Success false, not an error.
func (e *Engine) Interact(gs *state.GameState, npcID, kind string) (InteractionResult, error) {
	npc, err := e.findNPC(gs, npcID)
	if err != nil {
		return InteractionResult{}, err
	}
	res := InteractionResult{Success: true, NPCID: npc.ID}

	switch kind {
	case Chat:
		if npc.IsKin() {
			npc.Kin.Affection += KinChatAffection
			npc.Kin.Restraint -= KinChatRestraint
			res.AddedFavor = KinChatAffection
		} else {
			npc.AddFavor(ChatFavor)
			res.AddedFavor = ChatFavor
		}
		res.Text = fmt.Sprintf("[%s]\n%s", npc.Name, e.RandomText(npc, Chat))

	case Date:
		if npc.Favor() < DateMinFavor {
			res.Success = false
			res.Text = fmt.Sprintf("%s turns down your invitation: \"We barely know each other, don't we?\"", npc.Name)
			break
		}
		npc.AddFavor(DateFavor)
		res.AddedFavor = DateFavor
		res.Text = fmt.Sprintf("You spend a lovely time together.\n\n%s: \"%s\"", npc.Name, e.RandomText(npc, Date))
		if npc.Status == state.StatusStranger && npc.Favor() >= DatingThreshold {
			npc.Status = state.StatusDating
			res.NowDating = true
			res.Text += fmt.Sprintf("\n\n(Relationship up! %s is now your boyfriend.)", npc.Name)
			e.logger.Info("NPC now dating", "game_id", gs.ID.String(), "npc_id", npc.ID)
		}

	case Gift:
		npc.AddFavor(GiftFavor)
		res.AddedFavor = GiftFavor
		res.Text = e.giftLine()

	case Provoke:
		if npc.IsKin() {
			before := npc.Kin.Affection
			npc.Kin.Affection = max(0, before-KinProvokePenalty)
			res.AddedFavor = npc.Kin.Affection - before
		} else {
			npc.AddFavor(-ProvokePenalty)
			res.AddedFavor = -ProvokePenalty
		}
		res.Text = fmt.Sprintf("[%s]\n%s", npc.Name, e.RandomText(npc, Provoke))

	default:
		return InteractionResult{}, fmt.Errorf("%w: unknown interaction %q", state.ErrInvalidState, kind)
	}

	e.logger.Debug("Interaction resolved",
		"game_id", gs.ID.String(),
		"npc_id", npc.ID,
		"kind", kind,
		"success", res.Success,
		"favor", npc.Favor())
	return res, nil
}

func (e *Engine) giftLine() string {
	if line, ok := dice.Pick(e.roller, e.tables.Lines(Gift, content.DefaultPool)); ok {
		return line.Text
	}
	return "He accepts the gift."
}

// RandomText picks a line for the NPC from category. Every line whose min_favor
// is within the NPC's favor is eligible with equal weight.
func (e *Engine) RandomText(npc *state.NPC, category string) string {
	var eligible []content.Line
	for _, line := range e.tables.Lines(category, npc.Personality) {
		if line.MinFavor <= npc.Favor() {
			eligible = append(eligible, line)
		}
	}
	if line, ok := dice.Pick(e.roller, eligible); ok {
		return line.Text
	}
	if greeting, ok := greetings[npc.Personality]; ok {
		return greeting
	}
	return "..."
}

var greetings = map[string]string{
	content.Gloomy:   "...Oh. It's you. I was looking at the view, not at you.",
	content.Arrogant: "Tch. Watch where you're going.",
	content.Sunny:    "Hi! What a coincidence! I followed your scent here. (laughs)",
	content.Gentle:   "What luck, running into you. We must be fated.",
	content.Stoic:    "...Something you need? (He gives you a cool glance.)",
	content.Flirty:   "Well now, did you come all this way just to bump into me?",
}

// Greeting returns the NPC's first-meeting line.
func (e *Engine) Greeting(npc *state.NPC) string {
	if line, ok := dice.Pick(e.roller, e.tables.Lines(CategoryGreeting, npc.Personality)); ok {
		return line.Text
	}
	if g, ok := greetings[npc.Personality]; ok {
		return g
	}
	return "Hello."
}

// JealousyLine returns what the NPC says when he catches you with someone else.
func (e *Engine) JealousyLine(npc *state.NPC) string {
	if line, ok := dice.Pick(e.roller, e.tables.Lines(CategoryJealousy, npc.Personality)); ok {
		return line.Text
	}
	return "... (He stares at the other man in silence.)"
}
