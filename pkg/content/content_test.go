package content

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestResolvedWeights(t *testing.T) {
	g := &Genre{ID: "x"}
	assert.Equal(t, Weights{Art: 0.5, Story: 0.5, Charm: 0.2}, g.ResolvedWeights())

	art := 0.9
	g.Weights = &StatMods{Art: &art}
	assert.Equal(t, Weights{Art: 0.9, Story: 0.5, Charm: 0.2}, g.ResolvedWeights())

	// An explicit zero counts as missing.
	zero := 0.0
	g.Weights = &StatMods{Art: &art, Story: &zero, Charm: &zero}
	assert.Equal(t, Weights{Art: 0.9, Story: 0.5, Charm: 0.2}, g.ResolvedWeights())

	assert.Equal(t, DefaultCostEnergy, g.EnergyCost())
	g.CostEnergy = 35
	assert.Equal(t, 35, g.EnergyCost())
}

func TestSynergyWith(t *testing.T) {
	s := &Style{ID: "shoujo", GoodFor: []string{"school_romance"}, BadFor: []string{"horror_suspense"}}
	assert.Equal(t, SynergyGood, s.SynergyWith("school_romance"))
	assert.Equal(t, SynergyBad, s.SynergyWith("horror_suspense"))
	assert.Equal(t, SynergyNeutral, s.SynergyWith("ceo_romance"))

	var none *Style
	assert.Equal(t, SynergyNeutral, none.SynergyWith("school_romance"))
}

func TestFocusMultipliers(t *testing.T) {
	var none *PlotFocus
	assert.Equal(t, 1.0, none.CostMultiplier())
	assert.Equal(t, 1.0, none.ScoreMultiplier())
	assert.Equal(t, 1.0, none.FansMultiplier())

	f := &PlotFocus{CostMod: 1.5, FansMod: 1.5}
	assert.Equal(t, 1.5, f.CostMultiplier())
	assert.Equal(t, 1.0, f.ScoreMultiplier())
}

func TestUnloadedTables(t *testing.T) {
	var nilTables *Tables
	assert.False(t, nilTables.Loaded())

	tables := &Tables{Genres: []*Genre{{ID: "a"}}}
	_, ok := tables.Genre("a")
	assert.False(t, ok, "lookups must fail before Finalize")

	_, err := tables.GenreIDs()
	assert.True(t, errors.Is(err, ErrNotLoaded))
	assert.Nil(t, tables.Lines("chat", Sunny))
}

func TestDefaults(t *testing.T) {
	tables := Defaults()
	require.True(t, tables.Loaded())

	g, ok := tables.Genre("school_romance")
	require.True(t, ok)
	assert.Equal(t, 100, g.BaseIncome)

	_, ok = tables.Style("standard")
	assert.True(t, ok)

	for _, id := range []string{"filler", "climax", "fanservice", "cliffhanger"} {
		_, ok := tables.Focus(id)
		assert.True(t, ok, "missing focus %s", id)
	}
}

func TestFinalizeMergesFixedNPCEvents(t *testing.T) {
	tables := (&Tables{
		Events: []*EventDef{{ID: "a", Trigger: "work"}},
		FixedNPCs: []*FixedNPC{{
			ID:     "kin_brother",
			Events: []*EventDef{{ID: "kin_witness", Trigger: "kin"}, {ID: "a", Trigger: "work"}},
		}},
	}).Finalize()

	assert.Len(t, tables.Events, 2)
	_, ok := tables.Event("kin_witness")
	assert.True(t, ok)

	// finalizing twice must not duplicate
	tables.Finalize()
	assert.Len(t, tables.Events, 2)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "genres.json", `[
		{"id": "school_romance", "name": "School Romance", "base_income": 100, "base_fans": 10, "weights": {"art": 0.4}},
		{"id": "horror_suspense", "name": "Horror", "base_income": 120, "base_fans": 8, "cost_energy": 30}
	]`)
	writeFile(t, dir, "styles.yaml", `
- id: standard
  name: Standard
- id: gothic
  name: Gothic
  good_for: [horror_suspense]
  bad_for: [school_romance]
`)
	writeFile(t, dir, "events.json", `{
		"daily_work": [{"id": "deadline", "trigger": "work", "text": "The editor calls."}],
		"encounters": [{"id": "rain", "trigger": "go_out", "once": true, "text": "It rains.",
			"conditions": {"min_fans": 100},
			"choices": [{"text": "Run", "effects": {"energy": -5}, "next_event": "deadline"}]}]
	}`)
	writeFile(t, dir, "interactions.yml", `
chat:
  sunny:
    - text: Hi!
    - text: I missed you.
      min_favor: 40
`)

	tables, err := LoadDir(context.Background(), dir, testLogger())
	require.NoError(t, err)
	require.True(t, tables.Loaded())

	g, ok := tables.Genre("school_romance")
	require.True(t, ok)
	assert.Equal(t, 0.4, g.ResolvedWeights().Art)

	s, ok := tables.Style("gothic")
	require.True(t, ok)
	assert.Equal(t, SynergyGood, s.SynergyWith("horror_suspense"))

	assert.Len(t, tables.Events, 2)
	rain, ok := tables.Event("rain")
	require.True(t, ok)
	require.NotNil(t, rain.Conditions)
	require.NotNil(t, rain.Conditions.MinFans)
	assert.Equal(t, 100, *rain.Conditions.MinFans)
	assert.Equal(t, -5, rain.Choices[0].Effects.Energy)

	lines := tables.Lines("chat", Sunny)
	require.Len(t, lines, 2)
	assert.Equal(t, 40, lines[1].MinFavor)

	// focuses fall back to the built-in set
	_, ok = tables.Focus("climax")
	assert.True(t, ok)
}

func TestLoadDirMissingRequired(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "genres.json", `[]`)

	_, err := LoadDir(context.Background(), dir, testLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTable))
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "genres.json", `not json`)
	writeFile(t, dir, "styles.json", `[]`)

	tables := LoadOrDefault(context.Background(), dir, testLogger())
	require.True(t, tables.Loaded())
	_, ok := tables.Genre("school_romance")
	assert.True(t, ok)
}

func TestLoadShippedContent(t *testing.T) {
	tables, err := LoadDir(context.Background(), filepath.Join("..", "..", "data"), testLogger())
	require.NoError(t, err)

	assert.Len(t, tables.Genres, 8)
	_, ok := tables.Genre("school_romance")
	assert.True(t, ok)
	_, ok = tables.Style("standard")
	assert.True(t, ok)
	assert.Len(t, tables.Focuses, 4)

	for _, id := range []string{"scripted_first_meet", "kin_witness", "kin_allowance", "breakup_normal_start", "breakup_blackened_end", "champion_party"} {
		_, ok := tables.Event(id)
		assert.True(t, ok, "missing event %s", id)
	}
	require.Len(t, tables.FixedNPCs, 1)
	assert.Equal(t, "kin_brother", tables.FixedNPCs[0].ID)
	assert.NotEmpty(t, tables.Lines("chat", Gloomy))
	assert.NotEmpty(t, tables.Feedback.ByGenre["horror_suspense"])
}
