package content

import (
	"errors"
	"sort"
)

// ErrNotLoaded is returned when content is used before it has been loaded.
var ErrNotLoaded = errors.New("content not loaded")

// Tables is the read-only content the engines consume.
// Build one with LoadDir or Defaults, or fill the exported fields and call Finalize.
type Tables struct {
	Genres       []*Genre
	Styles       []*Style
	Focuses      []*PlotFocus
	Events       []*EventDef
	Interactions map[string]LinePool
	FixedNPCs    []*FixedNPC
	Plots        Plots
	Feedback     Feedback

	genres  map[string]*Genre
	styles  map[string]*Style
	focuses map[string]*PlotFocus
	events  map[string]*EventDef
	loaded  bool
}

// Finalize indexes the tables and marks them loaded.
// Events owned by fixed NPCs are merged into the event list.
func (t *Tables) Finalize() *Tables {
	t.genres = make(map[string]*Genre, len(t.Genres))
	for _, g := range t.Genres {
		t.genres[g.ID] = g
	}
	t.styles = make(map[string]*Style, len(t.Styles))
	for _, s := range t.Styles {
		t.styles[s.ID] = s
	}
	t.focuses = make(map[string]*PlotFocus, len(t.Focuses))
	for _, f := range t.Focuses {
		t.focuses[f.ID] = f
	}

	t.events = make(map[string]*EventDef, len(t.Events))
	for _, e := range t.Events {
		t.events[e.ID] = e
	}
	for _, npc := range t.FixedNPCs {
		for _, e := range npc.Events {
			if _, dup := t.events[e.ID]; dup {
				continue
			}
			t.events[e.ID] = e
			t.Events = append(t.Events, e)
		}
	}

	if t.Interactions == nil {
		t.Interactions = map[string]LinePool{}
	}
	t.loaded = true
	return t
}

// Loaded reports whether the tables are ready for use.
func (t *Tables) Loaded() bool {
	return t != nil && t.loaded
}

// Genre looks up a genre by id.
func (t *Tables) Genre(id string) (*Genre, bool) {
	if !t.Loaded() {
		return nil, false
	}
	g, ok := t.genres[id]
	return g, ok
}

// Style looks up a style by id.
func (t *Tables) Style(id string) (*Style, bool) {
	if !t.Loaded() {
		return nil, false
	}
	s, ok := t.styles[id]
	return s, ok
}

// Focus looks up a plot focus by id.
func (t *Tables) Focus(id string) (*PlotFocus, bool) {
	if !t.Loaded() {
		return nil, false
	}
	f, ok := t.focuses[id]
	return f, ok
}

// Event looks up an event definition by id.
func (t *Tables) Event(id string) (*EventDef, bool) {
	if !t.Loaded() {
		return nil, false
	}
	e, ok := t.events[id]
	return e, ok
}

// GenreIDs returns all genre ids in sorted order.
func (t *Tables) GenreIDs() ([]string, error) {
	if !t.Loaded() {
		return nil, ErrNotLoaded
	}
	return sortedKeys(t.genres), nil
}

// StyleIDs returns all style ids in sorted order.
func (t *Tables) StyleIDs() ([]string, error) {
	if !t.Loaded() {
		return nil, ErrNotLoaded
	}
	return sortedKeys(t.styles), nil
}

// Lines returns the pool for a category and personality.
func (t *Tables) Lines(category, personality string) []Line {
	if !t.Loaded() {
		return nil
	}
	pool, ok := t.Interactions[category]
	if !ok {
		return nil
	}
	return pool[personality]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func f64(v float64) *float64 { return &v }

// DefaultFocuses returns the built-in plot focus strategies.
func DefaultFocuses() []*PlotFocus {
	return []*PlotFocus{
		{
			ID:          "filler",
			Name:        "Filler",
			Description: "A low-effort chapter to keep the schedule.",
			CostMod:     0.5,
			ScoreMod:    0.6,
		},
		{
			ID:          "climax",
			Name:        "Climax",
			Description: "A major turn in the main plot.",
			CostMod:     1.5,
			StatBonus:   &StatMods{Story: f64(1.5), Art: f64(0.8)},
			Risk:        0.2,
		},
		{
			ID:          "fanservice",
			Name:        "Fan Service",
			Description: "Cliched, but readers love it.",
			CostMod:     1.0,
			StatBonus:   &StatMods{Charm: f64(2.0), Story: f64(0.5)},
			FansMod:     1.5,
		},
		{
			ID:          "cliffhanger",
			Name:        "Cliffhanger",
			Description: "Stop right at the crucial moment.",
			CostMod:     1.2,
			StatBonus:   &StatMods{Story: f64(1.2)},
			Effect:      EffectRetention,
		},
	}
}

// Defaults returns the minimal built-in tables used when loading fails.
func Defaults() *Tables {
	t := &Tables{
		Genres: []*Genre{{
			ID:         "school_romance",
			Name:       "School Romance",
			BaseIncome: 100,
			BaseFans:   10,
		}},
		Styles: []*Style{{
			ID:   "standard",
			Name: "Standard",
		}},
		Focuses: DefaultFocuses(),
	}
	return t.Finalize()
}
