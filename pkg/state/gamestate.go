package state

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/content"
)

// Starting values for a new career.
const (
	StartingMoney  = 1000
	StartingEnergy = 100
	StartingStat   = 10.0
	StartingGenre  = "school_romance"
	StartingStyle  = "standard"
	StartingRank   = 100
	DefaultName    = "Mangaka"
)

// Flags with engine meaning.
const (
	FlagConfined       = "is_confined"
	FlagFirstEncounter = "first_encounter"
)

// Attributes are the player's creative stats. They only grow.
type Attributes struct {
	Art      float64 `json:"art"`
	Story    float64 `json:"story"`
	Charm    float64 `json:"charm"`
	Darkness float64 `json:"darkness"`
}

// Player holds the player's resources.
type Player struct {
	Name       string     `json:"name"`
	Money      int        `json:"money"`
	Energy     int        `json:"energy"`
	MaxEnergy  int        `json:"max_energy"`
	Fans       int        `json:"fans"`
	Attributes Attributes `json:"attributes"`
}

// Work is the manga currently being serialized.
type Work struct {
	Title            string  `json:"title"`
	GenreID          string  `json:"genre_id"`
	GenreName        string  `json:"genre_name"`
	StyleID          string  `json:"style_id"`
	StyleName        string  `json:"style_name"`
	Synergy          string  `json:"synergy"` // good, bad or neutral
	Chapter          int     `json:"chapter"`
	TotalScore       float64 `json:"total_score"`
	MaxIncome        int     `json:"max_income"`
	LastChapterScore float64 `json:"last_chapter_score"`
	StartDay         int     `json:"start_day"`
}

// HistoryEntry is a finished work.
type HistoryEntry struct {
	Work   Work   `json:"work"`
	Label  string `json:"label"` // flop, known, popular, classic
	EndDay int    `json:"end_day"`
}

// FocusEffect is a queued bonus applied to a later chapter.
type FocusEffect struct {
	Type    string  `json:"type"`
	Chapter int     `json:"chapter"`
	Value   float64 `json:"value"`
}

// Career is the ranking ladder and the body of work.
type Career struct {
	RankingTier    int            `json:"ranking_tier"`
	CurrentRank    int            `json:"current_rank"`
	UnlockedGenres []string       `json:"unlocked_genres"`
	UnlockedStyles []string       `json:"unlocked_styles"`
	History        []HistoryEntry `json:"history"` // most recent first
	CurrentWork    *Work          `json:"current_work,omitempty"`
	FocusEffects   []FocusEffect  `json:"focus_effects,omitempty"`
}

// World is the calendar.
type World struct {
	Day        int    `json:"day"`
	Encounters int    `json:"encounters"`
	LastMet    string `json:"last_met,omitempty"`
}

// DaySnapshot captures values at the start of a day for delta reporting.
type DaySnapshot struct {
	Money int     `json:"money"`
	Fans  int     `json:"fans"`
	Art   float64 `json:"art"`
	Story float64 `json:"story"`
	Charm float64 `json:"charm"`
}

// ActiveEvent is the narrative event awaiting a choice.
type ActiveEvent struct {
	Def         content.EventDef `json:"def"`
	Title       string           `json:"title"`
	Text        string           `json:"text"`
	Choices     []string         `json:"choices"`
	TargetNPCID string           `json:"target_npc_id,omitempty"`
}

// PendingEvent is a chained event waiting to be presented.
type PendingEvent struct {
	EventID     string `json:"event_id"`
	TargetNPCID string `json:"target_npc_id,omitempty"`
}

// Ending is set once the game is over.
type Ending struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Day   int    `json:"day"`
}

// GameState is the whole of a game session. It is the save format.
type GameState struct {
	ID            uuid.UUID       `json:"id"`
	Player        Player          `json:"player"`
	Career        Career          `json:"career"`
	NPCs          []*NPC          `json:"npcs"`
	World         World           `json:"world"`
	Flags         map[string]bool `json:"flags"`
	DaySnapshot   *DaySnapshot    `json:"day_snapshot,omitempty"`
	ActiveEvent   *ActiveEvent    `json:"active_event,omitempty"`
	PendingEvents []PendingEvent  `json:"pending_events,omitempty"`
	Achievements  []string        `json:"achievements,omitempty"`
	Ending        *Ending         `json:"ending,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewGameState returns a fresh career on day 1.
func NewGameState(playerName string) *GameState {
	if playerName == "" {
		playerName = DefaultName
	}
	now := time.Now()
	return &GameState{
		ID: uuid.New(),
		Player: Player{
			Name:      playerName,
			Money:     StartingMoney,
			Energy:    StartingEnergy,
			MaxEnergy: StartingEnergy,
			Attributes: Attributes{
				Art:   StartingStat,
				Story: StartingStat,
				Charm: StartingStat,
			},
		},
		Career: Career{
			CurrentRank:    StartingRank,
			UnlockedGenres: []string{StartingGenre},
			UnlockedStyles: []string{StartingStyle},
			History:        []HistoryEntry{},
		},
		NPCs:      []*NPC{},
		World:     World{Day: 1},
		Flags:     map[string]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize fills in nil collections after a load so callers never nil-check.
func (gs *GameState) Normalize() {
	if gs.Flags == nil {
		gs.Flags = map[string]bool{}
	}
	if gs.NPCs == nil {
		gs.NPCs = []*NPC{}
	}
	if gs.Career.History == nil {
		gs.Career.History = []HistoryEntry{}
	}
	if gs.Career.CurrentRank < 1 {
		gs.Career.CurrentRank = StartingRank
	}
	if gs.World.Day < 1 {
		gs.World.Day = 1
	}
	for _, npc := range gs.NPCs {
		if npc.Kind == KindKin && npc.Kin == nil {
			npc.Kin = &KinStats{}
		}
	}
}

// Touch records a modification.
func (gs *GameState) Touch() {
	gs.UpdatedAt = time.Now()
}

// SetFlag sets a flag value.
func (gs *GameState) SetFlag(name string, v bool) {
	if gs.Flags == nil {
		gs.Flags = map[string]bool{}
	}
	gs.Flags[name] = v
}

// IsConfined reports whether the player has been imprisoned.
func (gs *GameState) IsConfined() bool {
	return gs.Flags[FlagConfined]
}

// HasGenre reports whether a genre is unlocked.
func (gs *GameState) HasGenre(id string) bool {
	return slices.Contains(gs.Career.UnlockedGenres, id)
}

// HasStyle reports whether a style is unlocked.
func (gs *GameState) HasStyle(id string) bool {
	return slices.Contains(gs.Career.UnlockedStyles, id)
}

// AddAchievement records an achievement once. It returns false if already present.
func (gs *GameState) AddAchievement(id string) bool {
	if slices.Contains(gs.Achievements, id) {
		return false
	}
	gs.Achievements = append(gs.Achievements, id)
	return true
}

// IsOver reports whether an ending has been reached.
func (gs *GameState) IsOver() bool {
	return gs.Ending != nil
}

