// Package career scores chapters and moves the player up the rankings.
package career

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Scoring multipliers.
const (
	GoodSynergyMod   = 1.3
	BadSynergyMod    = 0.7
	CriticalFailMod  = 0.6
	CriticalHitMod   = 1.5
	criticalHitAbove = 0.9
	IncomePerScore   = 5.0
	FansPerScore     = 0.5
	RetentionBonus   = 1.2
)

// Work labels by final total score.
const (
	LabelFlop    = "flop"
	LabelKnown   = "known"
	LabelPopular = "popular"
	LabelClassic = "classic"
)

const unknownName = "Unknown"

// Allocation is extra stat points spent on one chapter.
type Allocation struct {
	Art   float64 `json:"art"`
	Story float64 `json:"story"`
	Charm float64 `json:"charm"`
}

// Draft is the player's plan for a chapter. Focus may be nil.
type Draft struct {
	Focus     *content.PlotFocus `json:"focus,omitempty"`
	Allocated Allocation         `json:"allocated"`
}

// ChapterResult reports a drawn chapter.
type ChapterResult struct {
	Chapter           int     `json:"chapter"`
	Title             string  `json:"title"`
	Score             float64 `json:"score"`
	Rank              int     `json:"rank"`
	Tier              int     `json:"tier"`
	Income            int     `json:"income"`
	Fans              int     `json:"fans"`
	SynergyMsg        string  `json:"synergy_msg,omitempty"`
	FocusMsg          string  `json:"focus_msg,omitempty"`
	IsChampion        bool    `json:"is_champion"`
	IsCriticalSuccess bool    `json:"is_critical_success"`
	IsCriticalFail    bool    `json:"is_critical_fail"`
	RetentionApplied  bool    `json:"retention_applied"`
}

// Engine runs the manga career.
type Engine struct {
	tables *content.Tables
	roller dice.Roller
	logger *slog.Logger
}

// New creates a career Engine.
func New(tables *content.Tables, roller dice.Roller, logger *slog.Logger) *Engine {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tables == nil {
		tables = &content.Tables{}
	}
	return &Engine{tables: tables, roller: roller, logger: logger}
}

// StartSerialization begins a new work and replaces any current one.
// Unknown genre or style ids fall back to placeholder names.
func (e *Engine) StartSerialization(gs *state.GameState, title, genreID, styleID string) *state.Work {
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("Untitled #%d", len(gs.Career.History)+1)
	}

	work := &state.Work{
		Title:     title,
		GenreID:   genreID,
		GenreName: unknownName,
		StyleID:   styleID,
		StyleName: unknownName,
		Synergy:   content.SynergyNeutral,
		StartDay:  gs.World.Day,
	}
	if g, ok := e.tables.Genre(genreID); ok {
		work.GenreName = g.Name
	} else {
		e.logger.Warn("Unknown genre for new work", "genre_id", genreID)
	}
	if s, ok := e.tables.Style(styleID); ok {
		work.StyleName = s.Name
		work.Synergy = s.SynergyWith(genreID)
	} else {
		e.logger.Warn("Unknown style for new work", "style_id", styleID)
	}

	if gs.Career.CurrentWork != nil {
		e.logger.Warn("Overwriting active work", "game_id", gs.ID.String(), "title", gs.Career.CurrentWork.Title)
	}
	gs.Career.CurrentWork = work
	gs.Career.FocusEffects = nil

	e.logger.Info("Serialization started",
		"game_id", gs.ID.String(),
		"title", work.Title,
		"genre", genreID,
		"style", styleID,
		"synergy", work.Synergy)
	return work
}

// SynergyMessage describes the synergy label of a work.
func SynergyMessage(label string) string {
	switch label {
	case content.SynergyGood:
		return fmt.Sprintf("Perfect match: good synergy (x%.1f)", GoodSynergyMod)
	case content.SynergyBad:
		return fmt.Sprintf("Awkward match: bad synergy (x%.1f)", BadSynergyMod)
	}
	return ""
}

func synergyMod(label string) float64 {
	switch label {
	case content.SynergyGood:
		return GoodSynergyMod
	case content.SynergyBad:
		return BadSynergyMod
	}
	return 1
}

// ScoreBase is the attribute part of a chapter score.
func ScoreBase(attrs state.Attributes, alloc Allocation, w content.Weights) float64 {
	return (attrs.Art+alloc.Art)*w.Art +
		(attrs.Story+alloc.Story)*w.Story +
		(attrs.Charm+alloc.Charm)*w.Charm
}

// DrawChapter scores one chapter of the current work and updates the ranking.
// It does not credit income or fans to the player.
func (e *Engine) DrawChapter(gs *state.GameState, attrs state.Attributes, draft Draft) (*ChapterResult, error) {
	work := gs.Career.CurrentWork
	if work == nil {
		return nil, fmt.Errorf("%w: no active work", state.ErrInvalidState)
	}

	genre, _ := e.tables.Genre(work.GenreID)
	focus := draft.Focus
	var focusMsgs []string

	score := ScoreBase(attrs, draft.Allocated, genre.ResolvedWeights())

	if focus != nil && focus.StatBonus != nil {
		for _, bonus := range []*float64{focus.StatBonus.Art, focus.StatBonus.Story, focus.StatBonus.Charm} {
			if bonus != nil {
				score *= *bonus
			}
		}
	}
	score *= focus.ScoreMultiplier()
	if focus != nil {
		focusMsgs = append(focusMsgs, fmt.Sprintf("Strategy: %s", focus.Name))
	}

	score *= synergyMod(work.Synergy)

	result := &ChapterResult{SynergyMsg: SynergyMessage(work.Synergy)}

	risk := 0.0
	if focus != nil {
		risk = focus.Risk
	}
	if e.roller.Float64() < risk {
		score *= CriticalFailMod
		result.IsCriticalFail = true
		focusMsgs = append(focusMsgs, "The art collapsed under deadline pressure!")
	} else if e.roller.Float64() > criticalHitAbove {
		score *= CriticalHitMod
		result.IsCriticalSuccess = true
		focusMsgs = append(focusMsgs, "Readers are calling this chapter a masterpiece!")
	}

	work.Chapter++
	bonus := e.takeRetention(gs, work.Chapter)
	if bonus != 1 {
		result.RetentionApplied = true
		focusMsgs = append(focusMsgs, fmt.Sprintf("Last cliffhanger pays off: +%.0f%% buzz", (bonus-1)*100))
	}
	if focus != nil && focus.Effect == content.EffectRetention {
		gs.Career.FocusEffects = append(gs.Career.FocusEffects, state.FocusEffect{
			Type:    content.EffectRetention,
			Chapter: work.Chapter + 1,
			Value:   RetentionBonus,
		})
	}

	result.Income = int(math.Floor(score * IncomePerScore * bonus))
	result.Fans = int(math.Floor(score * FansPerScore * focus.FansMultiplier() * bonus))

	work.TotalScore += score
	if result.Income > work.MaxIncome {
		work.MaxIncome = result.Income
	}
	work.LastChapterScore = score

	result.IsChampion = e.UpdateRanking(gs, work.TotalScore)
	result.Chapter = work.Chapter
	result.Title = work.Title
	result.Score = score
	result.Rank = gs.Career.CurrentRank
	result.Tier = gs.Career.RankingTier
	result.FocusMsg = strings.Join(focusMsgs, "\n")

	e.logger.Debug("Chapter drawn",
		"game_id", gs.ID.String(),
		"title", work.Title,
		"chapter", work.Chapter,
		"score", score,
		"rank", result.Rank,
		"champion", result.IsChampion)
	return result, nil
}

// takeRetention consumes any retention bonus queued for chapter and returns its multiplier.
func (e *Engine) takeRetention(gs *state.GameState, chapter int) float64 {
	bonus := 1.0
	kept := gs.Career.FocusEffects[:0]
	for _, fx := range gs.Career.FocusEffects {
		if fx.Type == content.EffectRetention && fx.Chapter == chapter {
			bonus *= fx.Value
			continue
		}
		if fx.Chapter >= chapter {
			kept = append(kept, fx)
		}
	}
	gs.Career.FocusEffects = kept
	return bonus
}

// Label classifies a finished work by total score.
func Label(totalScore float64) string {
	switch {
	case totalScore > 5000:
		return LabelClassic
	case totalScore > 2000:
		return LabelPopular
	case totalScore > 500:
		return LabelKnown
	}
	return LabelFlop
}

// EndSerialization files the current work into history.
func (e *Engine) EndSerialization(gs *state.GameState) (*state.HistoryEntry, error) {
	work := gs.Career.CurrentWork
	if work == nil {
		return nil, fmt.Errorf("%w: no active work", state.ErrInvalidState)
	}

	entry := state.HistoryEntry{
		Work:   *work,
		Label:  Label(work.TotalScore),
		EndDay: gs.World.Day,
	}
	gs.Career.History = append([]state.HistoryEntry{entry}, gs.Career.History...)
	gs.Career.CurrentWork = nil
	gs.Career.FocusEffects = nil

	e.logger.Info("Serialization ended",
		"game_id", gs.ID.String(),
		"title", work.Title,
		"chapters", work.Chapter,
		"total_score", work.TotalScore,
		"label", entry.Label)
	return &entry, nil
}

// UnlockRandomGenre unlocks one locked genre at random. It returns nil, nil when
// every genre is already unlocked.
func (e *Engine) UnlockRandomGenre(gs *state.GameState) (*content.Genre, error) {
	ids, err := e.tables.GenreIDs()
	if err != nil {
		return nil, err
	}
	id, ok := dice.Pick(e.roller, locked(ids, gs.Career.UnlockedGenres))
	if !ok {
		return nil, nil
	}
	gs.Career.UnlockedGenres = append(gs.Career.UnlockedGenres, id)
	g, _ := e.tables.Genre(id)
	return g, nil
}

// UnlockRandomStyle unlocks one locked style at random. It returns nil, nil when
// every style is already unlocked.
func (e *Engine) UnlockRandomStyle(gs *state.GameState) (*content.Style, error) {
	ids, err := e.tables.StyleIDs()
	if err != nil {
		return nil, err
	}
	id, ok := dice.Pick(e.roller, locked(ids, gs.Career.UnlockedStyles))
	if !ok {
		return nil, nil
	}
	gs.Career.UnlockedStyles = append(gs.Career.UnlockedStyles, id)
	s, _ := e.tables.Style(id)
	return s, nil
}

func locked(all, unlocked []string) []string {
	have := make(map[string]bool, len(unlocked))
	for _, id := range unlocked {
		have[id] = true
	}
	var out []string
	for _, id := range all {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}
