package romance

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Jealousy and kin-witness rules.
const (
	JealousyStep        = 0.1
	JealousyWinFavor    = 10
	JealousyLoseFavor   = -20
	JealousyFleeFavor   = -10
	TriggerJealousy     = "jealousy"
	KinWitnessBase      = 0.1
	KinWitnessLowMoney  = 0.2
	KinWitnessOnDate    = 0.3
	KinWitnessMoneyLine = 500
)

// HotNPCs returns NPCs close enough to be jealous: dating or favor at least HotFavor.
func HotNPCs(gs *state.GameState) []*state.NPC {
	var hot []*state.NPC
	for _, n := range gs.NPCs {
		if n.Status == state.StatusDating || n.Favor() >= HotFavor {
			hot = append(hot, n)
		}
	}
	return hot
}

// JealousyChance is the chance of a jealousy showdown given the number of hot NPCs.
func JealousyChance(hot int) float64 {
	if hot < 2 {
		return 0
	}
	return float64(hot-1) * JealousyStep
}

// CheckJealousyConflict may synthesize a showdown event between two hot NPCs.
// The returned event uses ordinary data effects so it resolves like any catalog event.
func (e *Engine) CheckJealousyConflict(gs *state.GameState) *content.EventDef {
	hot := HotNPCs(gs)
	if len(hot) < 2 {
		return nil
	}
	if !dice.Chance(e.roller, JealousyChance(len(hot))) {
		return nil
	}

	pair := append([]*state.NPC{}, hot...)
	dice.Shuffle(e.roller, pair)
	a, b := pair[0], pair[1]

	e.logger.Info("Jealousy conflict triggered",
		"game_id", gs.ID.String(),
		"hot_count", len(hot),
		"npc_a", a.ID,
		"npc_b", b.ID)

	text := fmt.Sprintf("Just as you are about to leave, you run straight into %s.\n"+
		"Before you can say hello, you hear %s's footsteps behind you.\n\n"+
		"The air freezes.\n\n[%s]:\n\"%s\"\n\n[%s]:\n\"%s\"",
		a.Name, b.Name, a.Name, e.JealousyLine(a), b.Name, e.JealousyLine(b))

	return &content.EventDef{
		ID:      "jealousy_" + uuid.NewString()[:8],
		Title:   "Jealousy Showdown",
		Trigger: TriggerJealousy,
		Text:    text,
		Choices: []content.Choice{
			{
				Text: fmt.Sprintf("Side with %s (%s will be heartbroken)", a.Name, b.Name),
				Effects: &content.Effects{Favor: []content.FavorDelta{
					{NPCID: a.ID, Amount: JealousyWinFavor},
					{NPCID: b.ID, Amount: JealousyLoseFavor},
				}},
			},
			{
				Text: fmt.Sprintf("Side with %s (%s will be heartbroken)", b.Name, a.Name),
				Effects: &content.Effects{Favor: []content.FavorDelta{
					{NPCID: b.ID, Amount: JealousyWinFavor},
					{NPCID: a.ID, Amount: JealousyLoseFavor},
				}},
			},
			{
				Text: "\"Stop fighting!\" (Run away from both)",
				Effects: &content.Effects{Favor: []content.FavorDelta{
					{NPCID: a.ID, Amount: JealousyFleeFavor},
					{NPCID: b.ID, Amount: JealousyFleeFavor},
				}},
			},
		},
	}
}

// KinWitnessChance is the chance the kin character shows up during an outing.
func KinWitnessChance(gs *state.GameState, onDate bool) float64 {
	chance := KinWitnessBase
	if gs.Player.Money < KinWitnessMoneyLine {
		chance += KinWitnessLowMoney
	}
	if onDate {
		chance += KinWitnessOnDate
	}
	return chance
}

// CheckKinWitness rolls whether the kin character appears. It never fires
// without a kin NPC or while dating the kin NPC himself.
func (e *Engine) CheckKinWitness(gs *state.GameState, datingTarget *state.NPC) bool {
	kin := gs.Kin()
	if kin == nil {
		return false
	}
	if datingTarget != nil && datingTarget.ID == kin.ID {
		return false
	}
	return dice.Chance(e.roller, KinWitnessChance(gs, datingTarget != nil))
}
