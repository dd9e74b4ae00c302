package romance

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Encounter rules.
const (
	EncounterChance     = 0.7
	GuaranteedNewMeets  = 3
	NewNPCBaseChance    = 0.5
	NewNPCRosterPenalty = 0.05
	NewNPCMinChance     = 0.1
	AvatarCount         = 14
)

var (
	surnames = []string{
		"Kujo", "Shiraishi", "Tachibana", "Kageyama", "Amamiya", "Hoshino", "Kirishima", "Sakuraba",
		"Todoroki", "Mikami", "Aizawa", "Kuroda", "Fujimoto", "Takanashi", "Minase", "Shinonome",
	}
	givenNames = []string{
		"Ren", "Sora", "Haru", "Kai", "Yuki", "Shion", "Rei", "Itsuki", "Minato", "Touya", "Akira",
		"Subaru", "Hayate", "Kanata", "Rio", "Tsukasa", "Asahi", "Hikaru", "Nagi", "Ritsu", "Souma",
	}
	eyeLooks = []string{
		"eyes rimmed faintly red", "cool phoenix eyes", "deep wolfish eyes", "soft peach-blossom eyes",
		"drowsy downcast eyes", "pale, almost colorless eyes", "smiling crescent eyes", "long narrow eyes",
	}
	featureLooks = []string{
		"gold-rimmed glasses", "a black stud in his left ear", "bandaged knuckles", "a loosened collar",
		"a beauty mark under one eye", "a shirt buttoned to the top", "prayer beads on his wrist",
		"a perfectly knotted tie", "the faint smell of tobacco", "a paintbrush tucked behind his ear",
	}
)

// EncounterResult reports an outing.
type EncounterResult struct {
	Met      bool       `json:"met"`
	IsNew    bool       `json:"is_new"`
	NPC      *state.NPC `json:"npc,omitempty"`
	Dialogue string     `json:"dialogue,omitempty"`
	Message  string     `json:"message,omitempty"`
}

// GenerateNewNPC creates a random NPC and adds it to the roster.
// Personalities and avatars not yet on the roster are preferred.
func (e *Engine) GenerateNewNPC(gs *state.GameState) *state.NPC {
	surname, _ := dice.Pick(e.roller, surnames)
	given, _ := dice.Pick(e.roller, givenNames)
	eyes, _ := dice.Pick(e.roller, eyeLooks)
	feature, _ := dice.Pick(e.roller, featureLooks)

	usedPersonality := map[string]bool{}
	usedAvatar := map[int]bool{}
	for _, n := range gs.RosterNPCs() {
		usedPersonality[n.Personality] = true
		usedAvatar[n.Avatar] = true
	}

	var freshPersonalities []string
	for _, p := range content.Personalities {
		if !usedPersonality[p] {
			freshPersonalities = append(freshPersonalities, p)
		}
	}
	if len(freshPersonalities) == 0 {
		freshPersonalities = content.Personalities
	}
	personality, _ := dice.Pick(e.roller, freshPersonalities)

	var freshAvatars []int
	for i := 1; i <= AvatarCount; i++ {
		if !usedAvatar[i] {
			freshAvatars = append(freshAvatars, i)
		}
	}
	avatar, ok := dice.Pick(e.roller, freshAvatars)
	if !ok {
		avatar = dice.Int(e.roller, 1, AvatarCount)
	}

	npc := &state.NPC{
		ID:          "npc_" + uuid.NewString()[:8],
		Name:        surname + " " + given,
		Kind:        state.KindRoster,
		Personality: personality,
		Description: fmt.Sprintf("%s, %s", capitalize(feature), eyes),
		Avatar:      avatar,
		Status:      state.StatusStranger,
	}
	gs.NPCs = append(gs.NPCs, npc)

	e.logger.Info("NPC generated",
		"game_id", gs.ID.String(),
		"npc_id", npc.ID,
		"name", npc.Name,
		"personality", npc.Personality,
		"avatar", npc.Avatar)
	return npc
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// NewNPCChance is the chance an encounter introduces someone new.
func NewNPCChance(gs *state.GameState) float64 {
	roster := len(gs.RosterNPCs())
	if roster == 0 || gs.World.Encounters < GuaranteedNewMeets {
		return 1
	}
	return math.Max(NewNPCMinChance, NewNPCBaseChance-NewNPCRosterPenalty*float64(roster))
}

// TryEncounter rolls whether the player meets someone while out.
func (e *Engine) TryEncounter(gs *state.GameState) EncounterResult {
	if gs.IsConfined() {
		return EncounterResult{Message: "The door is locked from the outside. The only face you see these days is his."}
	}
	if !dice.Chance(e.roller, EncounterChance) {
		return EncounterResult{Message: "You wander the streets for a while, but nobody catches your eye."}
	}

	res := EncounterResult{Met: true}
	if dice.Chance(e.roller, NewNPCChance(gs)) {
		res.NPC = e.GenerateNewNPC(gs)
		res.IsNew = true
	} else {
		res.NPC, _ = dice.Pick(e.roller, gs.RosterNPCs())
	}
	gs.World.Encounters++
	res.Dialogue = e.RandomText(res.NPC, Chat)
	return res
}

// EnsureFixedNPCs adds the hand-written characters to the roster once.
func (e *Engine) EnsureFixedNPCs(gs *state.GameState) {
	if !e.tables.Loaded() {
		return
	}
	for _, def := range e.tables.FixedNPCs {
		if gs.FindNPC(def.ID) != nil {
			continue
		}
		gs.NPCs = append(gs.NPCs, &state.NPC{
			ID:          def.ID,
			Name:        def.Name,
			Kind:        state.KindKin,
			Personality: def.Personality,
			Description: def.Description,
			Avatar:      def.Avatar,
			Status:      state.StatusStranger,
			Relation:    def.Relation,
			Kin: &state.KinStats{
				Affection: def.Stats.Affection,
				Restraint: def.Stats.Restraint,
				Jealousy:  def.Stats.Jealousy,
				Trust:     def.Stats.Trust,
			},
		})
	}
}
