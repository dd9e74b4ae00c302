package conditionals

import "testing"

type mockView struct {
	attrs  map[string]float64
	fans   int
	money  int
	day    int
	flags  map[string]bool
	status map[string]string
	stats  map[string]map[string]int
}

func (m *mockView) GetAttribute(name string) float64 { return m.attrs[name] }
func (m *mockView) GetFans() int                     { return m.fans }
func (m *mockView) GetMoney() int                    { return m.money }
func (m *mockView) GetDay() int                      { return m.day }
func (m *mockView) GetFlag(name string) bool         { return m.flags[name] }
func (m *mockView) GetNPCStatus(id string) (string, bool) {
	s, ok := m.status[id]
	return s, ok
}
func (m *mockView) GetNPCStat(id, stat string) (int, bool) {
	s, ok := m.stats[id]
	if !ok {
		return 0, false
	}
	v, ok := s[stat]
	return v, ok
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestEvaluate(t *testing.T) {
	view := &mockView{
		attrs:  map[string]float64{"art": 12, "story": 8, "charm": 5},
		fans:   300,
		money:  1000,
		day:    4,
		flags:  map[string]bool{"met_editor": true},
		status: map[string]string{"npc_a": "dating", "npc_b": "stranger"},
		stats: map[string]map[string]int{
			"npc_a": {"favorability": 85},
			"npc_b": {"favorability": 10},
		},
	}

	tests := []struct {
		name     string
		when     *When
		target   string
		expected bool
	}{
		{"nil always passes", nil, "", true},
		{"empty passes", &When{}, "", true},
		{"min art met", &When{MinArt: floatPtr(10)}, "", true},
		{"min art not met", &When{MinArt: floatPtr(13)}, "", false},
		{"min charm not met", &When{MinCharm: floatPtr(6)}, "", false},
		{"min fans met", &When{MinFans: intPtr(300)}, "", true},
		{"min fans not met", &When{MinFans: intPtr(301)}, "", false},
		{"min day not met", &When{MinDay: intPtr(5)}, "", false},
		{"dating with", &When{DatingWith: "npc_a"}, "", true},
		{"not dating", &When{DatingWith: "npc_b"}, "", false},
		{"dating unknown npc", &When{DatingWith: "npc_x"}, "", false},
		{"npc stat explicit", &When{NPC: &NPCCondition{NPCID: "npc_a", Min: map[string]int{"favorability": 80}}}, "", true},
		{"npc stat too low", &When{NPC: &NPCCondition{NPCID: "npc_b", Min: map[string]int{"favorability": 20}}}, "", false},
		{"npc stat bound to target", &When{NPC: &NPCCondition{Min: map[string]int{"favorability": 50}}}, "npc_a", true},
		{"npc stat without target", &When{NPC: &NPCCondition{Min: map[string]int{"favorability": 0}}}, "", false},
		{"unknown stat fails", &When{NPC: &NPCCondition{NPCID: "npc_a", Min: map[string]int{"restraint": 0}}}, "", false},
		{"flag matches", &When{Flags: map[string]bool{"met_editor": true}}, "", true},
		{"absent flag expected false", &When{Flags: map[string]bool{"is_confined": false}}, "", true},
		{"all must match", &When{MinArt: floatPtr(10), MinFans: intPtr(1000)}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.when, view, tt.target); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
