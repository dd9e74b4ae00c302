package state

// The methods below satisfy conditionals.GameStateView.

func (gs *GameState) GetAttribute(name string) float64 {
	switch name {
	case "art":
		return gs.Player.Attributes.Art
	case "story":
		return gs.Player.Attributes.Story
	case "charm":
		return gs.Player.Attributes.Charm
	case "darkness":
		return gs.Player.Attributes.Darkness
	}
	return 0
}

func (gs *GameState) GetFans() int  { return gs.Player.Fans }
func (gs *GameState) GetMoney() int { return gs.Player.Money }
func (gs *GameState) GetDay() int   { return gs.World.Day }

func (gs *GameState) GetFlag(name string) bool {
	return gs.Flags[name]
}

func (gs *GameState) GetNPCStatus(npcID string) (string, bool) {
	n := gs.FindNPC(npcID)
	if n == nil {
		return "", false
	}
	return string(n.Status), true
}

func (gs *GameState) GetNPCStat(npcID, stat string) (int, bool) {
	n := gs.FindNPC(npcID)
	if n == nil {
		return 0, false
	}
	return n.Stat(stat)
}
