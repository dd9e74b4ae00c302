package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ErrMissingTable is returned when a required table file is absent.
var ErrMissingTable = errors.New("required content table missing")

var extensions = []string{".json", ".yaml", ".yml"}

// findTable returns the path of name.{json,yaml,yml} under dir, or "" if none exists.
func findTable(dir, name string) string {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// decodeFile decodes a JSON or YAML file into target.
// YAML is normalised through JSON so a single set of struct tags serves both formats.
func decodeFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if filepath.Ext(path) != ".json" {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse yaml %s: %w", path, err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("failed to convert yaml %s: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// loadTable decodes table name from dir into target. Missing optional tables are skipped.
func loadTable(dir, name string, required bool, target any) error {
	path := findTable(dir, name)
	if path == "" {
		if required {
			return fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		return nil
	}
	return decodeFile(path, target)
}

// eventFile accepts either a flat list of events or named groups of events.
type eventFile []*EventDef

func (ef *eventFile) UnmarshalJSON(data []byte) error {
	var list []*EventDef
	if err := json.Unmarshal(data, &list); err == nil {
		*ef = list
		return nil
	}
	var groups map[string][]*EventDef
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	for _, name := range sortedKeys(groups) {
		*ef = append(*ef, groups[name]...)
	}
	return nil
}

// LoadDir reads every content table from dir concurrently.
func LoadDir(ctx context.Context, dir string, logger *slog.Logger) (*Tables, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		t      Tables
		events eventFile
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return loadTable(dir, "genres", true, &t.Genres) })
	g.Go(func() error { return loadTable(dir, "styles", true, &t.Styles) })
	g.Go(func() error { return loadTable(dir, "focuses", false, &t.Focuses) })
	g.Go(func() error { return loadTable(dir, "events", false, &events) })
	g.Go(func() error { return loadTable(dir, "interactions", false, &t.Interactions) })
	g.Go(func() error { return loadTable(dir, "fixed_npcs", false, &t.FixedNPCs) })
	g.Go(func() error { return loadTable(dir, "plots", false, &t.Plots) })
	g.Go(func() error { return loadTable(dir, "feedback", false, &t.Feedback) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(t.Focuses) == 0 {
		t.Focuses = DefaultFocuses()
	}
	t.Events = events
	t.Finalize()

	logger.Info("Content loaded",
		"dir", dir,
		"genres", len(t.Genres),
		"styles", len(t.Styles),
		"focuses", len(t.Focuses),
		"events", len(t.Events),
		"fixed_npcs", len(t.FixedNPCs))
	return &t, nil
}

// LoadOrDefault loads dir, falling back to the built-in tables on any error.
func LoadOrDefault(ctx context.Context, dir string, logger *slog.Logger) *Tables {
	if logger == nil {
		logger = slog.Default()
	}
	t, err := LoadDir(ctx, dir, logger)
	if err != nil {
		logger.Error("Failed to load content, using built-in defaults", "dir", dir, "error", err)
		return Defaults()
	}
	return t
}
