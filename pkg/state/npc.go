package state

// Kind discriminates ordinary roster NPCs from the fixed family character.
type Kind string

const (
	KindRoster Kind = "roster"
	KindKin    Kind = "kin"
)

// Status is the relationship stage with the player.
type Status string

const (
	StatusStranger   Status = "stranger"
	StatusDating     Status = "dating"
	StatusBroken     Status = "broken"
	StatusImprisoned Status = "imprisoned"
)

// RelationBrother is the relation tag of the fixed family character.
const RelationBrother = "brother"

// KinStats are the extra stats carried by a kin NPC.
// Affection plays the role of favorability.
type KinStats struct {
	Affection int `json:"affection"`
	Restraint int `json:"restraint"`
	Jealousy  int `json:"jealousy"`
	Trust     int `json:"trust"`
}

// NPC is a character the player can meet. Kin is set only when Kind is KindKin.
type NPC struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	Personality  string    `json:"personality"`
	Description  string    `json:"description,omitempty"`
	Avatar       int       `json:"avatar,omitempty"`
	Favorability int       `json:"favorability"`
	Status       Status    `json:"status"`
	Relation     string    `json:"relation,omitempty"`
	Kin          *KinStats `json:"kin,omitempty"`
}

// IsKin reports whether this is the fixed family character.
func (n *NPC) IsKin() bool {
	return n.Kind == KindKin && n.Kin != nil
}

// Favor returns the closeness score regardless of kind.
func (n *NPC) Favor() int {
	if n.IsKin() {
		return n.Kin.Affection
	}
	return n.Favorability
}

// SetFavor overwrites the closeness score.
func (n *NPC) SetFavor(v int) {
	if n.IsKin() {
		n.Kin.Affection = v
		return
	}
	n.Favorability = v
}

// AddFavor adjusts the closeness score by delta and returns the new value.
func (n *NPC) AddFavor(delta int) int {
	n.SetFavor(n.Favor() + delta)
	return n.Favor()
}

// Stat returns a named numeric stat. Kin-only stats are absent on roster NPCs.
func (n *NPC) Stat(name string) (int, bool) {
	switch name {
	case "favorability", "favor", "affection":
		return n.Favor(), true
	}
	if !n.IsKin() {
		return 0, false
	}
	switch name {
	case "restraint":
		return n.Kin.Restraint, true
	case "jealousy":
		return n.Kin.Jealousy, true
	case "trust":
		return n.Kin.Trust, true
	}
	return 0, false
}

// FindNPC returns the NPC with id, or nil.
func (gs *GameState) FindNPC(id string) *NPC {
	for _, n := range gs.NPCs {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Kin returns the first kin NPC on the roster, or nil.
func (gs *GameState) Kin() *NPC {
	for _, n := range gs.NPCs {
		if n.IsKin() {
			return n
		}
	}
	return nil
}

// RosterNPCs returns the NPCs that are not kin.
func (gs *GameState) RosterNPCs() []*NPC {
	out := make([]*NPC, 0, len(gs.NPCs))
	for _, n := range gs.NPCs {
		if !n.IsKin() {
			out = append(out, n)
		}
	}
	return out
}

// DatingCount returns how many NPCs are currently dating the player.
func (gs *GameState) DatingCount() int {
	count := 0
	for _, n := range gs.NPCs {
		if n.Status == StatusDating {
			count++
		}
	}
	return count
}
