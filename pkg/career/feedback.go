package career

import (
	"strings"

	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Reader reaction pools are chosen by the last chapter's score.
const (
	HighScore = 80.0
	LowScore  = 50.0
)

var (
	defaultFirstChapter = "The first chapter of {title} raises the curtain on a brand new story!"
	defaultPlots        = []string{
		"In the latest chapter of {title}, the mysterious stranger's identity is about to be revealed...",
		"{title} takes a sharp turn as the hero uncovers a long-buried secret!",
		"The story of {title} builds toward a fierce confrontation!",
	}
	defaultHigh = []string{"A masterpiece in the making!", "I live for this series every week!"}
	defaultMid  = []string{"Decent, but the pacing drags a little.", "Checking in. Hope the quality holds."}
	defaultLow  = []string{"Did the artist pull an all-nighter? It shows.", "I can't follow the plot at all."}
)

// Feedback is the readers' reaction to a chapter.
type Feedback struct {
	Comments   []string `json:"comments"`
	HotComment string   `json:"hot_comment"`
}

func fillTitle(tmpl, title string) string {
	return strings.ReplaceAll(tmpl, "{title}", title)
}

// PlotDescription returns a teaser line for the work's latest chapter.
func (e *Engine) PlotDescription(work *state.Work) string {
	if work == nil {
		return ""
	}
	plots := e.tables.Plots
	if work.Chapter <= 1 {
		first := plots.FirstChapter
		if first == "" {
			first = defaultFirstChapter
		}
		return fillTitle(first, work.Title)
	}

	pool := append([]string{}, plots.Generic...)
	pool = append(pool, plots.ByGenre[work.GenreID]...)
	if len(pool) == 0 {
		pool = defaultPlots
	}
	tmpl, _ := dice.Pick(e.roller, pool)
	return fillTitle(tmpl, work.Title)
}

// ReaderFeedback samples reader comments for the work's latest chapter.
// The first comment drawn is promoted to the hot comment.
func (e *Engine) ReaderFeedback(work *state.Work) Feedback {
	if work == nil {
		return Feedback{}
	}
	fb := e.tables.Feedback
	var pool, fallback []string
	switch {
	case work.LastChapterScore >= HighScore:
		pool, fallback = fb.High, defaultHigh
	case work.LastChapterScore < LowScore:
		pool, fallback = fb.Low, defaultLow
	default:
		pool, fallback = fb.Mid, defaultMid
	}
	if len(pool) == 0 {
		pool = fallback
	}

	var comments []string
	if c, ok := dice.Pick(e.roller, pool); ok {
		comments = append(comments, c)
	}
	if c, ok := dice.Pick(e.roller, fb.ByGenre[work.GenreID]); ok {
		comments = append(comments, c)
	}

	out := Feedback{Comments: comments}
	if len(comments) > 0 {
		out.HotComment = comments[0]
	}
	dice.Shuffle(e.roller, out.Comments)
	return out
}
