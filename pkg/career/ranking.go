package career

import (
	"math"

	"github.com/jwebster45206/manga-engine/pkg/state"
)

// Tier is one rung of the ranking ladder.
type Tier struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	MaxRank  int     `json:"max_rank"`
	ReqScore float64 `json:"req_score"`
}

// Tiers is the ranking ladder, easiest first.
var Tiers = []Tier{
	{ID: 0, Name: "Neighborhood Favorites", MaxRank: 100, ReqScore: 500},
	{ID: 1, Name: "Global Bestsellers", MaxRank: 1000, ReqScore: 5000},
	{ID: 2, Name: "Solar System Heritage", MaxRank: 10000, ReqScore: 50000},
	{ID: 3, Name: "Timeline Masterpieces", MaxRank: 99999, ReqScore: 500000},
}

// TierName returns the display name of a tier index.
func TierName(tier int) string {
	if tier < 0 || tier >= len(Tiers) {
		return "Off the charts"
	}
	return Tiers[tier].Name
}

// UpdateRanking moves the player's rank within the current tier from a work's total score.
// It returns true when the player reaches #1 from a lower rank. A champion in any
// tier but the last is promoted and drops to the bottom of the next tier.
func (e *Engine) UpdateRanking(gs *state.GameState, totalScore float64) bool {
	c := &gs.Career
	if c.RankingTier < 0 || c.RankingTier >= len(Tiers) {
		return false
	}
	tier := Tiers[c.RankingTier]

	progress := math.Min(1, totalScore/tier.ReqScore)
	if progress < 0 {
		progress = 0
	}
	newRank := int(math.Floor(float64(tier.MaxRank)-float64(tier.MaxRank)*progress)) + 1
	if newRank < 1 {
		newRank = 1
	}

	champion := newRank == 1 && c.CurrentRank != 1
	if champion && c.RankingTier+1 < len(Tiers) {
		c.RankingTier++
		c.CurrentRank = Tiers[c.RankingTier].MaxRank
		e.logger.Info("Ranking tier cleared",
			"game_id", gs.ID.String(),
			"new_tier", c.RankingTier,
			"tier_name", Tiers[c.RankingTier].Name)
		return true
	}

	c.CurrentRank = newRank
	if champion {
		e.logger.Info("Final ranking tier won", "game_id", gs.ID.String())
	}
	return champion
}
