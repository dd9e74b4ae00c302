package conditionals

// NPCCondition checks numeric stats on one NPC.
// An empty NPCID binds to the NPC the event is attached to.
type NPCCondition struct {
	NPCID string         `json:"npc_id,omitempty"`
	Min   map[string]int `json:"min"` // stat name -> minimum value, e.g. {"favorability": 40}
}

// When defines the conditions that must hold for an event to be eligible
type When struct {
	MinArt      *float64        `json:"min_art,omitempty"`
	MinStory    *float64        `json:"min_story,omitempty"`
	MinCharm    *float64        `json:"min_charm,omitempty"`
	MinDarkness *float64        `json:"min_darkness,omitempty"`
	MinFans     *int            `json:"min_fans,omitempty"`
	MinMoney    *int            `json:"min_money,omitempty"`
	MinDay      *int            `json:"min_day,omitempty"`
	DatingWith  string          `json:"dating_with,omitempty"` // NPC id that must currently be dating the player
	NPC         *NPCCondition   `json:"npc,omitempty"`
	Flags       map[string]bool `json:"flags,omitempty"` // All flags must have the given value
}

// GameStateView provides the minimal interface needed to evaluate conditions.
// This avoids import cycles with the state package
type GameStateView interface {
	GetAttribute(name string) float64
	GetFans() int
	GetMoney() int
	GetDay() int
	GetFlag(name string) bool
	GetNPCStatus(npcID string) (string, bool)
	GetNPCStat(npcID, stat string) (int, bool)
}

// StatusDating is the NPC status DatingWith compares against.
const StatusDating = "dating"

// Evaluate checks if all conditions in a When clause are met.
// A nil When always passes. targetNPCID is used by NPC conditions without an explicit id.
func Evaluate(when *When, gsView GameStateView, targetNPCID string) bool {
	if when == nil {
		return true
	}

	attrs := []struct {
		name string
		min  *float64
	}{
		{"art", when.MinArt},
		{"story", when.MinStory},
		{"charm", when.MinCharm},
		{"darkness", when.MinDarkness},
	}
	for _, a := range attrs {
		if a.min != nil && gsView.GetAttribute(a.name) < *a.min {
			return false
		}
	}

	if when.MinFans != nil && gsView.GetFans() < *when.MinFans {
		return false
	}
	if when.MinMoney != nil && gsView.GetMoney() < *when.MinMoney {
		return false
	}
	if when.MinDay != nil && gsView.GetDay() < *when.MinDay {
		return false
	}

	if when.DatingWith != "" {
		status, ok := gsView.GetNPCStatus(when.DatingWith)
		if !ok || status != StatusDating {
			return false
		}
	}

	if when.NPC != nil {
		npcID := when.NPC.NPCID
		if npcID == "" {
			npcID = targetNPCID
		}
		if npcID == "" {
			return false
		}
		if _, ok := gsView.GetNPCStatus(npcID); !ok {
			return false
		}
		for stat, min := range when.NPC.Min {
			v, ok := gsView.GetNPCStat(npcID, stat)
			if !ok || v < min {
				return false
			}
		}
	}

	for name, want := range when.Flags {
		if gsView.GetFlag(name) != want {
			return false
		}
	}

	return true
}
