package romance

import (
	"fmt"

	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Break contact rules.
const (
	BaseBlackenRisk     = 0.3
	KinBlackenRisk      = 0.7
	KinBrokenRestraint  = 20
	KinRestraintPenalty = 10
	BrokenFavor         = -50
)

var personalityRisk = map[string]float64{
	content.Gloomy:   0.4,
	content.Gentle:   0.3,
	content.Stoic:    0.2,
	content.Arrogant: 0.1,
}

// BreakResult reports a break contact attempt.
// Success is false only when the NPC blackened and imprisoned the player.
type BreakResult struct {
	Success     bool         `json:"success"`
	IsBlackened bool         `json:"is_blackened"`
	Text        string       `json:"text"`
	NPCID       string       `json:"npc_id"`
	Status      state.Status `json:"status"`
}

// BlackenRisk returns the chance that breaking up with npc ends in imprisonment.
func BlackenRisk(npc *state.NPC) float64 {
	if npc.IsKin() {
		if npc.Kin.Restraint < KinBrokenRestraint {
			return 1.0
		}
		return KinBlackenRisk
	}
	return BaseBlackenRisk + personalityRisk[npc.Personality]
}

// AttemptBreakContact tries to cut ties with an NPC.
// Only a dating NPC can blacken. An imprisoned NPC does not let go.
func (e *Engine) AttemptBreakContact(gs *state.GameState, npcID string) (BreakResult, error) {
	npc, err := e.findNPC(gs, npcID)
	if err != nil {
		return BreakResult{}, err
	}
	res := BreakResult{NPCID: npc.ID}

	switch npc.Status {
	case state.StatusImprisoned:
		res.Status = npc.Status
		res.Text = fmt.Sprintf("%s smiles and locks the door again. \"Leave? Where would you even go?\"", npc.Name)
		return res, nil

	case state.StatusDating:
		risk := BlackenRisk(npc)
		if e.roller.Float64() < risk {
			npc.Status = state.StatusImprisoned
			gs.SetFlag(state.FlagConfined, true)
			res.IsBlackened = true
			res.Text = fmt.Sprintf("%s's eyes go dark. \"You said you'd never leave. So I'll make sure you can't.\"", npc.Name)
			e.logger.Warn("NPC blackened", "game_id", gs.ID.String(), "npc_id", npc.ID, "risk", risk)
		} else {
			npc.Status = state.StatusBroken
			npc.SetFavor(BrokenFavor)
			res.Success = true
			res.Text = fmt.Sprintf("%s is quiet for a long time. \"...I understand. Take care of yourself.\"", npc.Name)
			e.logger.Info("NPC broke up", "game_id", gs.ID.String(), "npc_id", npc.ID)
		}

	default:
		npc.Status = state.StatusStranger
		npc.SetFavor(0)
		if npc.IsKin() {
			npc.Kin.Restraint -= KinRestraintPenalty
		}
		res.Success = true
		res.Text = fmt.Sprintf("You stop answering %s's messages. You are strangers again.", npc.Name)
	}

	res.Status = npc.Status
	return res, nil
}
