package content

import "github.com/jwebster45206/manga-engine/pkg/conditionals"

// Default scoring weights applied when a genre leaves a stat weight out.
const (
	DefaultArtWeight   = 0.5
	DefaultStoryWeight = 0.5
	DefaultCharmWeight = 0.2
	DefaultCostEnergy  = 20
)

// Personalities recognised by line pools and NPC generation.
const (
	Sunny    = "sunny"
	Gloomy   = "gloomy"
	Arrogant = "arrogant"
	Gentle   = "gentle"
	Stoic    = "stoic"
	Flirty   = "flirty"
)

// Personalities lists every personality in generation order.
var Personalities = []string{Sunny, Gloomy, Arrogant, Gentle, Stoic, Flirty}

// StatMods holds optional per-stat numbers. Nil means "not present".
type StatMods struct {
	Art   *float64 `json:"art,omitempty"`
	Story *float64 `json:"story,omitempty"`
	Charm *float64 `json:"charm,omitempty"`
}

// Weights is a fully resolved set of scoring weights.
type Weights struct {
	Art   float64 `json:"art"`
	Story float64 `json:"story"`
	Charm float64 `json:"charm"`
}

// Genre is a manga genre a work can be serialized in.
type Genre struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BaseIncome  int       `json:"base_income"`
	BaseFans    int       `json:"base_fans"`
	Weights     *StatMods `json:"weights,omitempty"`
	CostEnergy  int       `json:"cost_energy,omitempty"`
}

// ResolvedWeights fills missing or zero weights with the defaults.
func (g *Genre) ResolvedWeights() Weights {
	w := Weights{Art: DefaultArtWeight, Story: DefaultStoryWeight, Charm: DefaultCharmWeight}
	if g == nil || g.Weights == nil {
		return w
	}
	if g.Weights.Art != nil && *g.Weights.Art != 0 {
		w.Art = *g.Weights.Art
	}
	if g.Weights.Story != nil && *g.Weights.Story != 0 {
		w.Story = *g.Weights.Story
	}
	if g.Weights.Charm != nil && *g.Weights.Charm != 0 {
		w.Charm = *g.Weights.Charm
	}
	return w
}

// EnergyCost is the base energy needed to draw one chapter.
func (g *Genre) EnergyCost() int {
	if g == nil || g.CostEnergy <= 0 {
		return DefaultCostEnergy
	}
	return g.CostEnergy
}

// Style is a drawing style with genre affinities.
type Style struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	GoodFor     []string `json:"good_for,omitempty"`
	BadFor      []string `json:"bad_for,omitempty"`
}

// Synergy labels.
const (
	SynergyGood    = "good"
	SynergyBad     = "bad"
	SynergyNeutral = "neutral"
)

// SynergyWith returns the affinity label between this style and a genre.
func (s *Style) SynergyWith(genreID string) string {
	if s == nil {
		return SynergyNeutral
	}
	for _, id := range s.GoodFor {
		if id == genreID {
			return SynergyGood
		}
	}
	for _, id := range s.BadFor {
		if id == genreID {
			return SynergyBad
		}
	}
	return SynergyNeutral
}

// EffectRetention boosts the following chapter's income and fans.
const EffectRetention = "retention"

// PlotFocus is a per-chapter strategy modifier.
type PlotFocus struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CostMod     float64   `json:"cost_mod,omitempty"`
	ScoreMod    float64   `json:"score_mod,omitempty"`
	StatBonus   *StatMods `json:"stat_bonus,omitempty"`
	Risk        float64   `json:"risk,omitempty"`
	FansMod     float64   `json:"fans_mod,omitempty"`
	Effect      string    `json:"effect,omitempty"`
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// CostMultiplier returns cost_mod, defaulting to 1. Safe on a nil focus.
func (f *PlotFocus) CostMultiplier() float64 {
	if f == nil {
		return 1
	}
	return orOne(f.CostMod)
}

// ScoreMultiplier returns score_mod, defaulting to 1. Safe on a nil focus.
func (f *PlotFocus) ScoreMultiplier() float64 {
	if f == nil {
		return 1
	}
	return orOne(f.ScoreMod)
}

// FansMultiplier returns fans_mod, defaulting to 1. Safe on a nil focus.
func (f *PlotFocus) FansMultiplier() float64 {
	if f == nil {
		return 1
	}
	return orOne(f.FansMod)
}

// FavorDelta changes one NPC's favor. An empty NPCID targets the event's NPC.
type FavorDelta struct {
	NPCID  string `json:"npc_id,omitempty"`
	Amount int    `json:"amount"`
}

// KinDelta changes the stats of the fixed family character.
type KinDelta struct {
	Affection int `json:"affection,omitempty"`
	Restraint int `json:"restraint,omitempty"`
	Jealousy  int `json:"jealousy,omitempty"`
	Trust     int `json:"trust,omitempty"`
}

// StatusConfined sets the persistent confinement flag.
const StatusConfined = "confined"

// Effects is a data-only description of what a choice does to the game.
type Effects struct {
	Money              int             `json:"money,omitempty"`
	Fans               int             `json:"fans,omitempty"`
	Energy             int             `json:"energy,omitempty"`
	Art                float64         `json:"art,omitempty"`
	Story              float64         `json:"story,omitempty"`
	Charm              float64         `json:"charm,omitempty"`
	Darkness           float64         `json:"darkness,omitempty"`
	DatingWithNPCFavor int             `json:"dating_with_npc_favor,omitempty"` // favor for the event's NPC, else the first on the roster
	Favor              []FavorDelta    `json:"favor,omitempty"`
	Kin                *KinDelta       `json:"kin,omitempty"`
	Status             string          `json:"status,omitempty"`
	SetFlags           map[string]bool `json:"set_flags,omitempty"`
}

// Choice is one option presented by an event.
type Choice struct {
	Text      string   `json:"text"`
	Effects   *Effects `json:"effects,omitempty"`
	NextEvent string   `json:"next_event,omitempty"`
}

// EventDef is a narrative event definition.
type EventDef struct {
	ID         string             `json:"id"`
	Title      string             `json:"title,omitempty"`
	Trigger    string             `json:"trigger"`
	Once       bool               `json:"once,omitempty"`
	Conditions *conditionals.When `json:"conditions,omitempty"`
	TriggerVal *int               `json:"trigger_val,omitempty"` // minimum favor of the attached NPC for NPC-chain triggers
	Text       string             `json:"text"`
	Choices    []Choice           `json:"choices,omitempty"`
}

// Line is one piece of dialogue gated by favor.
type Line struct {
	Text     string `json:"text"`
	MinFavor int    `json:"min_favor,omitempty"`
}

// LinePool maps a personality (or "default") to its lines.
type LinePool map[string][]Line

// DefaultPool is the personality key used by pools that are not personality specific.
const DefaultPool = "default"

// KinStats are the preset stats of a fixed family character.
type KinStats struct {
	Affection int `json:"affection"`
	Restraint int `json:"restraint"`
	Jealousy  int `json:"jealousy"`
	Trust     int `json:"trust"`
}

// FixedNPC is a hand-written character that is present from the start.
type FixedNPC struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Relation    string      `json:"relation"`
	Personality string      `json:"personality"`
	Description string      `json:"description,omitempty"`
	Avatar      int         `json:"avatar,omitempty"`
	Stats       KinStats    `json:"stats"`
	Events      []*EventDef `json:"events,omitempty"`
}

// Plots holds chapter blurb templates. {title} is replaced with the work title.
type Plots struct {
	FirstChapter string              `json:"first_chapter,omitempty"`
	Generic      []string            `json:"generic,omitempty"`
	ByGenre      map[string][]string `json:"by_genre,omitempty"`
}

// Feedback holds reader comment pools.
type Feedback struct {
	High    []string            `json:"high,omitempty"`
	Mid     []string            `json:"mid,omitempty"`
	Low     []string            `json:"low,omitempty"`
	ByGenre map[string][]string `json:"by_genre,omitempty"`
}
