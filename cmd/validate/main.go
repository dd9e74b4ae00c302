package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/jwebster45206/manga-engine/pkg/conditionals"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/narrative"
	"github.com/jwebster45206/manga-engine/pkg/romance"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <content-dir>\n", os.Args[0])
		os.Exit(1)
	}

	validator := &ContentValidator{}
	if err := validator.validateDir(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	for _, w := range validator.warnings {
		fmt.Println("warning:" + strings.TrimPrefix(w, "  -"))
	}

	fmt.Println("Content is valid!")
}

// ContentValidator checks a content directory strictly: unknown fields,
// id format and cross references between tables.
type ContentValidator struct {
	errors   []string
	warnings []string
}

var tableNames = []string{"genres", "styles", "focuses", "events", "interactions", "fixed_npcs", "plots", "feedback"}

var requiredTables = map[string]bool{"genres": true, "styles": true}

// Events started by the game loop by id.
var scriptedEvents = []string{
	"scripted_first_meet",
	"kin_witness",
	"kin_allowance",
	"breakup_normal_start",
	"breakup_blackened_start",
}

var interactionCategories = []string{
	romance.Chat, romance.Date, romance.Gift, romance.Provoke,
	romance.CategoryGreeting, romance.CategoryJealousy,
}

func (v *ContentValidator) validateDir(dir string) error {
	fmt.Printf("Validating %s...\n", dir)
	v.errors = nil
	v.warnings = nil

	var (
		t      content.Tables
		events []*content.EventDef
	)
	targets := map[string]any{
		"genres":       &t.Genres,
		"styles":       &t.Styles,
		"focuses":      &t.Focuses,
		"interactions": &t.Interactions,
		"fixed_npcs":   &t.FixedNPCs,
		"plots":        &t.Plots,
		"feedback":     &t.Feedback,
	}

	for _, name := range tableNames {
		path, err := findTable(dir, name)
		if err != nil {
			return err
		}
		if path == "" {
			if requiredTables[name] {
				v.addError(fmt.Sprintf("required table %s is missing", name))
			}
			continue
		}
		data, err := readAsJSON(path)
		if err != nil {
			return err
		}
		if name == "events" {
			events, err = decodeEvents(data)
		} else {
			err = decodeStrict(data, targets[name])
		}
		if err != nil {
			return fmt.Errorf("file %s failed strict unmarshaling: %w", path, err)
		}
	}

	v.validateTables(&t, events)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}
	return nil
}

// findTable returns the single file for a table, or an error if more than one format exists.
func findTable(dir, name string) (string, error) {
	var found []string
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			found = append(found, path)
		}
	}
	if len(found) > 1 {
		return "", fmt.Errorf("table %s is defined more than once: %s", name, strings.Join(found, ", "))
	}
	if len(found) == 0 {
		return "", nil
	}
	return found[0], nil
}

// readAsJSON returns the file as JSON, converting YAML first.
func readAsJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if filepath.Ext(path) == ".json" {
		if !json.Valid(data) {
			return nil, fmt.Errorf("file %s contains invalid JSON", path)
		}
		return data, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("file %s contains invalid YAML: %w", path, err)
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("file %s cannot be represented as JSON: %w", path, err)
	}
	return out, nil
}

func decodeStrict(data []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// decodeEvents accepts a flat list or groups keyed by name.
func decodeEvents(data []byte) ([]*content.EventDef, error) {
	var list []*content.EventDef
	if err := decodeStrict(data, &list); err == nil {
		return list, nil
	}
	var groups map[string][]*content.EventDef
	if err := decodeStrict(data, &groups); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		list = append(list, groups[name]...)
	}
	return list, nil
}

func (v *ContentValidator) validateTables(t *content.Tables, events []*content.EventDef) {
	genres := map[string]bool{}
	for _, g := range t.Genres {
		v.validateIDFormat("genre ID", g.ID)
		v.checkDuplicate("genre", g.ID, genres)
		if g.BaseIncome < 0 || g.BaseFans < 0 || g.CostEnergy < 0 {
			v.addError(fmt.Sprintf("genre %s has negative numbers", g.ID))
		}
	}
	if !genres[state.StartingGenre] {
		v.addError(fmt.Sprintf("genre %s is the starting genre and must exist", state.StartingGenre))
	}

	styles := map[string]bool{}
	for _, s := range t.Styles {
		v.validateIDFormat("style ID", s.ID)
		v.checkDuplicate("style", s.ID, styles)
		for _, id := range append(slices.Clone(s.GoodFor), s.BadFor...) {
			if !genres[id] {
				v.addError(fmt.Sprintf("style %s references unknown genre '%s'", s.ID, id))
			}
		}
		for _, id := range s.GoodFor {
			if slices.Contains(s.BadFor, id) {
				v.addError(fmt.Sprintf("style %s lists genre '%s' as both good and bad", s.ID, id))
			}
		}
	}
	if !styles[state.StartingStyle] {
		v.addError(fmt.Sprintf("style %s is the starting style and must exist", state.StartingStyle))
	}

	focuses := map[string]bool{}
	for _, f := range t.Focuses {
		v.validateIDFormat("focus ID", f.ID)
		v.checkDuplicate("focus", f.ID, focuses)
		if f.Risk < 0 || f.Risk > 1 {
			v.addError(fmt.Sprintf("focus %s risk must be between 0 and 1", f.ID))
		}
		if f.Effect != "" && f.Effect != content.EffectRetention {
			v.addError(fmt.Sprintf("focus %s has unknown effect '%s'", f.ID, f.Effect))
		}
	}

	fixed := map[string]bool{}
	for _, npc := range t.FixedNPCs {
		v.validateIDFormat("fixed NPC ID", npc.ID)
		v.checkDuplicate("fixed NPC", npc.ID, fixed)
		v.validatePersonality("fixed NPC "+npc.ID, npc.Personality)
		events = append(events, npc.Events...)
	}

	all := map[string]bool{}
	for _, e := range events {
		v.validateIDFormat("event ID", e.ID)
		v.checkDuplicate("event", e.ID, all)
	}
	for _, e := range events {
		v.validateEvent(e, all, fixed)
	}
	for _, id := range scriptedEvents {
		if !all[id] {
			v.addWarning(fmt.Sprintf("event %s is not defined; the game falls back to plain text", id))
		}
	}
	for _, p := range content.Personalities {
		if !all["first_meet_"+p] && !all["scripted_first_meet"] {
			v.addWarning(fmt.Sprintf("no first meeting event for personality %s", p))
		}
	}

	for category, pool := range t.Interactions {
		if !slices.Contains(interactionCategories, category) {
			v.addError(fmt.Sprintf("interaction category '%s' is unknown", category))
		}
		for personality, lines := range pool {
			if personality != content.DefaultPool {
				v.validatePersonality("interaction "+category, personality)
			}
			for i, line := range lines {
				if strings.TrimSpace(line.Text) == "" {
					v.addError(fmt.Sprintf("interaction %s/%s line %d is empty", category, personality, i))
				}
			}
		}
	}

	for genre := range t.Plots.ByGenre {
		if !genres[genre] {
			v.addError(fmt.Sprintf("plots reference unknown genre '%s'", genre))
		}
	}
	for genre := range t.Feedback.ByGenre {
		if !genres[genre] {
			v.addError(fmt.Sprintf("feedback references unknown genre '%s'", genre))
		}
	}
}

func (v *ContentValidator) validateEvent(e *content.EventDef, events, fixed map[string]bool) {
	if !slices.Contains(narrative.Triggers, e.Trigger) {
		v.addError(fmt.Sprintf("event %s has unknown trigger '%s'", e.ID, e.Trigger))
	}
	if strings.TrimSpace(e.Text) == "" {
		v.addError(fmt.Sprintf("event %s has no text", e.ID))
	}
	if e.TriggerVal != nil && e.Trigger != narrative.TriggerGloomyChain {
		v.addError(fmt.Sprintf("event %s sets trigger_val but only %s events use it", e.ID, narrative.TriggerGloomyChain))
	}
	if e.Conditions != nil {
		v.validateConditions(e.Conditions, "event "+e.ID, fixed)
	}

	for i, c := range e.Choices {
		where := fmt.Sprintf("event %s choice %d", e.ID, i+1)
		if strings.TrimSpace(c.Text) == "" {
			v.addError(where + " has no text")
		}
		if c.NextEvent != "" && !events[c.NextEvent] {
			v.addError(fmt.Sprintf("%s chains to unknown event '%s'", where, c.NextEvent))
		}
		if c.NextEvent == e.ID {
			v.addError(where + " chains to itself")
		}
		if c.Effects == nil {
			continue
		}
		for _, fd := range c.Effects.Favor {
			if fd.NPCID != "" && !fixed[fd.NPCID] {
				v.addError(fmt.Sprintf("%s changes favor of unknown NPC '%s'", where, fd.NPCID))
			}
		}
		if c.Effects.Status != "" && c.Effects.Status != content.StatusConfined {
			v.addError(fmt.Sprintf("%s sets unknown status '%s'", where, c.Effects.Status))
		}
		for flag := range c.Effects.SetFlags {
			v.validateIDFormat(where+" flag", flag)
		}
	}
}

func (v *ContentValidator) validateConditions(when *conditionals.When, where string, fixed map[string]bool) {
	if isEmptyWhen(when) {
		v.addError(where + " has empty 'conditions' clause - no conditions specified")
		return
	}
	for flag := range when.Flags {
		v.validateIDFormat(where+" flag", flag)
	}
	if when.NPC != nil {
		if when.NPC.NPCID != "" && !fixed[when.NPC.NPCID] {
			v.addError(fmt.Sprintf("%s checks unknown NPC '%s'", where, when.NPC.NPCID))
		}
		if len(when.NPC.Min) == 0 {
			v.addError(where + " has an npc condition with no minimums")
		}
	}
}

func isEmptyWhen(w *conditionals.When) bool {
	return w.MinArt == nil && w.MinStory == nil && w.MinCharm == nil && w.MinDarkness == nil &&
		w.MinFans == nil && w.MinMoney == nil && w.MinDay == nil &&
		w.DatingWith == "" && w.NPC == nil && len(w.Flags) == 0
}

func (v *ContentValidator) validatePersonality(where, p string) {
	if !slices.Contains(content.Personalities, p) {
		v.addError(fmt.Sprintf("%s has unknown personality '%s'", where, p))
	}
}

func (v *ContentValidator) checkDuplicate(kind, id string, seen map[string]bool) {
	if seen[id] {
		v.addError(fmt.Sprintf("duplicate %s ID '%s'", kind, id))
	}
	seen[id] = true
}

func (v *ContentValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		v.addError(fieldName + " is empty")
		return
	}
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *ContentValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
