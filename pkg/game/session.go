// Package game wires the engines around one game state and exposes the player actions.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/manga-engine/pkg/calendar"
	"github.com/jwebster45206/manga-engine/pkg/career"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/narrative"
	"github.com/jwebster45206/manga-engine/pkg/romance"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const (
	DefaultMaxDays  = 60
	DefaultGoalFans = 10000
)

// Options configures a Session. Zero values take defaults.
type Options struct {
	MaxDays  int
	GoalFans int
	Roller   dice.Roller
	Logger   *slog.Logger
	Journal  Journal
}

func (o Options) withDefaults() Options {
	if o.MaxDays <= 0 {
		o.MaxDays = DefaultMaxDays
	}
	if o.GoalFans <= 0 {
		o.GoalFans = DefaultGoalFans
	}
	if o.Roller == nil {
		o.Roller = dice.New()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Journal == nil {
		o.Journal = NewMemoryJournal()
	}
	return o
}

// Outcome is what an action produced. Only the fields that apply are set.
type Outcome struct {
	Message      string                     `json:"message,omitempty"`
	Notes        []string                   `json:"notes,omitempty"`
	Work         *state.Work                `json:"work,omitempty"`
	Chapter      *career.ChapterResult      `json:"chapter,omitempty"`
	Plot         string                     `json:"plot,omitempty"`
	Feedback     *career.Feedback           `json:"feedback,omitempty"`
	History      *state.HistoryEntry        `json:"history,omitempty"`
	Encounter    *romance.EncounterResult   `json:"encounter,omitempty"`
	Interaction  *romance.InteractionResult `json:"interaction,omitempty"`
	Break        *romance.BreakResult       `json:"break,omitempty"`
	Report       *calendar.DailyReport      `json:"report,omitempty"`
	Resolution   *narrative.Resolution      `json:"resolution,omitempty"`
	Event        *state.ActiveEvent         `json:"event,omitempty"`
	Achievements []Achievement              `json:"achievements,omitempty"`
	Ending       *state.Ending              `json:"ending,omitempty"`
}

// Session owns one game state and the engines that act on it.
// A Session is not safe for concurrent use.
type Session struct {
	gs      *state.GameState
	tables  *content.Tables
	opts    Options
	cal     *calendar.Calendar
	career  *career.Engine
	romance *romance.Engine
	events  *narrative.Dispatcher
	roller  dice.Roller
	logger  *slog.Logger
	journal Journal
}

// NewSession starts a new game. Unloaded tables fall back to the built-in content.
func NewSession(ctx context.Context, playerName string, tables *content.Tables, opts Options) *Session {
	s := newSession(state.NewGameState(playerName), tables, opts)
	calendar.StartNewDay(s.gs)
	s.record(ctx, CategoryCalendar, fmt.Sprintf("%s opens a studio.", s.gs.Player.Name), nil)
	return s
}

// Resume wraps a loaded game state.
func Resume(gs *state.GameState, tables *content.Tables, opts Options) *Session {
	gs.Normalize()
	s := newSession(gs, tables, opts)
	if gs.DaySnapshot == nil {
		calendar.StartNewDay(gs)
	}
	return s
}

func newSession(gs *state.GameState, tables *content.Tables, opts Options) *Session {
	opts = opts.withDefaults()
	if tables == nil || !tables.Loaded() {
		tables = content.Defaults()
	}
	rom := romance.New(tables, opts.Roller, opts.Logger)
	s := &Session{
		gs:      gs,
		tables:  tables,
		opts:    opts,
		cal:     calendar.New(opts.Roller, opts.Logger),
		career:  career.New(tables, opts.Roller, opts.Logger),
		romance: rom,
		events:  narrative.NewDispatcher(tables, rom, opts.Roller, opts.Logger),
		roller:  opts.Roller,
		logger:  opts.Logger.With("game_id", gs.ID.String()),
		journal: opts.Journal,
	}
	rom.EnsureFixedNPCs(gs)
	return s
}

// State returns the live game state.
func (s *Session) State() *state.GameState {
	return s.gs
}

// Tables returns the content the session plays with.
func (s *Session) Tables() *content.Tables {
	return s.tables
}

// ready rejects actions once the game is over or while an event awaits a choice.
func (s *Session) ready() error {
	if s.gs.IsOver() {
		return fmt.Errorf("%w: the game has ended", state.ErrInvalidState)
	}
	if s.gs.ActiveEvent != nil {
		return fmt.Errorf("%w: resolve event %s first", state.ErrInvalidState, s.gs.ActiveEvent.Def.ID)
	}
	return nil
}

// pay debits energy and money after checking both.
func (s *Session) pay(energy, money int) error {
	if err := calendar.CanAfford(s.gs, energy, money); err != nil {
		return err
	}
	if err := calendar.ConsumeEnergy(s.gs, energy); err != nil {
		return err
	}
	s.gs.Player.Money -= money
	return nil
}

func (s *Session) record(ctx context.Context, category, message string, data map[string]any) {
	e := Entry{
		Day:      s.gs.World.Day,
		Category: category,
		Message:  message,
		Data:     data,
		At:       time.Now(),
	}
	if err := s.journal.Append(ctx, s.gs.ID, e); err != nil {
		s.logger.Warn("Failed to write journal entry", "category", category, "error", err)
	}
}

// finish runs the end-of-action checks and fills the shared Outcome fields.
func (s *Session) finish(ctx context.Context, out *Outcome) *Outcome {
	out.Achievements = s.checkAchievements(ctx)
	if !s.gs.IsOver() {
		if end := s.checkEnding(); end != nil {
			s.gs.Ending = end
			s.gs.ActiveEvent = nil
			s.gs.PendingEvents = nil
			s.logger.Info("Game ended", "ending", end.ID, "day", end.Day)
			s.record(ctx, CategoryEnding, end.Title, map[string]any{"ending": end.ID})
		}
	}
	out.Ending = s.gs.Ending
	out.Event = s.gs.ActiveEvent
	s.gs.Touch()
	return out
}

// Choose resolves the active event and starts the next chained one, if any.
func (s *Session) Choose(ctx context.Context, index int) (*Outcome, error) {
	if s.gs.IsOver() {
		return nil, fmt.Errorf("%w: the game has ended", state.ErrInvalidState)
	}
	res, err := s.events.ResolveChoice(s.gs, index)
	if err != nil {
		return nil, err
	}
	s.record(ctx, CategoryEvent, res.Choice, map[string]any{"event_id": res.EventID, "notes": res.Notes})
	s.events.Resume(s.gs)
	return s.finish(ctx, &Outcome{Resolution: res, Notes: res.Notes}), nil
}

// Continue presents the next pending chained event if nothing is active.
func (s *Session) Continue(ctx context.Context) (*Outcome, error) {
	if s.gs.IsOver() {
		return nil, fmt.Errorf("%w: the game has ended", state.ErrInvalidState)
	}
	out := &Outcome{}
	if s.gs.ActiveEvent == nil {
		if _, ok := s.events.Resume(s.gs); !ok {
			out.Message = "Nothing else happens."
		}
	}
	return s.finish(ctx, out), nil
}

// Rest ends the day.
func (s *Session) Rest(ctx context.Context) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	report := s.cal.AdvanceDay(s.gs)
	out := &Outcome{Report: &report}

	if _, ok := s.events.CheckTriggers(s.gs, narrative.TriggerGloomyChain); !ok {
		s.events.CheckTriggers(s.gs, narrative.TriggerRest)
	}

	s.record(ctx, CategoryCalendar, fmt.Sprintf("Day %d begins.", report.Day), map[string]any{
		"energy":  report.EnergyRestored,
		"upkeep":  report.UpkeepCharged,
		"changes": report.Changes,
	})
	return s.finish(ctx, out), nil
}
