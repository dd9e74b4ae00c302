package game

import (
	"context"
	"fmt"
	"math"

	"github.com/jwebster45206/manga-engine/pkg/career"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/narrative"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// SkillGain is the art and story practice earned per drawn chapter.
const SkillGain = 0.5

// ChapterCost is the energy a chapter costs before allocated points.
func ChapterCost(genre *content.Genre, focus *content.PlotFocus) int {
	return int(math.Round(float64(genre.EnergyCost()) * focus.CostMultiplier()))
}

// AllocationCost is one energy per allocated point, rounded up.
func AllocationCost(a career.Allocation) int {
	return int(math.Ceil(a.Art + a.Story + a.Charm))
}

// StartWork begins a serialization with an unlocked genre and style.
func (s *Session) StartWork(ctx context.Context, title, genreID, styleID string) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if cur := s.gs.Career.CurrentWork; cur != nil {
		return nil, fmt.Errorf("%w: %q is still running", state.ErrInvalidState, cur.Title)
	}
	if _, ok := s.tables.Genre(genreID); !ok {
		return nil, fmt.Errorf("%w: genre %s", state.ErrNotFound, genreID)
	}
	if _, ok := s.tables.Style(styleID); !ok {
		return nil, fmt.Errorf("%w: style %s", state.ErrNotFound, styleID)
	}
	if !s.gs.HasGenre(genreID) {
		return nil, fmt.Errorf("%w: genre %s is locked", state.ErrInvalidState, genreID)
	}
	if !s.gs.HasStyle(styleID) {
		return nil, fmt.Errorf("%w: style %s is locked", state.ErrInvalidState, styleID)
	}

	work := s.career.StartSerialization(s.gs, title, genreID, styleID)
	out := &Outcome{
		Work:    work,
		Message: fmt.Sprintf("%q is now in serialization!", work.Title),
		Notes:   []string{career.SynergyMessage(work.Synergy)},
	}
	s.record(ctx, CategoryCareer, out.Message, map[string]any{"genre": genreID, "style": styleID, "synergy": work.Synergy})
	return s.finish(ctx, out), nil
}

// DrawChapter pays for and publishes the next chapter. focusID may be empty.
func (s *Session) DrawChapter(ctx context.Context, focusID string, alloc career.Allocation) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	work := s.gs.Career.CurrentWork
	if work == nil {
		return nil, fmt.Errorf("%w: no active work", state.ErrInvalidState)
	}
	if alloc.Art < 0 || alloc.Story < 0 || alloc.Charm < 0 {
		return nil, fmt.Errorf("%w: allocated points cannot be negative", state.ErrInvalidState)
	}
	var focus *content.PlotFocus
	if focusID != "" {
		f, ok := s.tables.Focus(focusID)
		if !ok {
			return nil, fmt.Errorf("%w: focus %s", state.ErrNotFound, focusID)
		}
		focus = f
	}

	genre, _ := s.tables.Genre(work.GenreID)
	cost := ChapterCost(genre, focus) + AllocationCost(alloc)
	if err := s.pay(cost, 0); err != nil {
		return nil, err
	}

	res, err := s.career.DrawChapter(s.gs, s.gs.Player.Attributes, career.Draft{Focus: focus, Allocated: alloc})
	if err != nil {
		return nil, err
	}
	p := &s.gs.Player
	p.Money += res.Income
	p.Fans += res.Fans
	p.Attributes.Art += SkillGain
	p.Attributes.Story += SkillGain

	fb := s.career.ReaderFeedback(work)
	out := &Outcome{
		Chapter:  res,
		Work:     work,
		Plot:     s.career.PlotDescription(work),
		Feedback: &fb,
		Message:  printer.Sprintf("Chapter %d is out! Fans +%d, income +%d.", res.Chapter, res.Fans, res.Income),
	}
	for _, msg := range []string{res.SynergyMsg, res.FocusMsg} {
		if msg != "" {
			out.Notes = append(out.Notes, msg)
		}
	}

	if res.IsChampion {
		cleared := res.Tier - 1
		if res.Rank == 1 {
			cleared = res.Tier
		}
		out.Notes = append(out.Notes, fmt.Sprintf("You topped the %s chart!", career.TierName(cleared)))
		s.events.CheckTriggers(s.gs, narrative.TriggerChampion)
	} else {
		s.events.CheckTriggers(s.gs, narrative.TriggerWork)
	}

	s.record(ctx, CategoryCareer, out.Message, map[string]any{
		"title":    work.Title,
		"chapter":  res.Chapter,
		"score":    res.Score,
		"rank":     res.Rank,
		"champion": res.IsChampion,
	})
	return s.finish(ctx, out), nil
}

// FinishWork ends the current serialization.
func (s *Session) FinishWork(ctx context.Context) (*Outcome, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	entry, err := s.career.EndSerialization(s.gs)
	if err != nil {
		return nil, err
	}
	out := &Outcome{
		History: entry,
		Message: printer.Sprintf("%q is complete after %d chapters. Verdict: %s (total %.0f).",
			entry.Work.Title, entry.Work.Chapter, entry.Label, entry.Work.TotalScore),
	}
	s.record(ctx, CategoryCareer, out.Message, map[string]any{"label": entry.Label, "chapters": entry.Work.Chapter})
	return s.finish(ctx, out), nil
}
