package game

import (
	"context"
	"fmt"

	"github.com/jwebster45206/manga-engine/pkg/state"
)

// BankruptcyLine is the balance below which the game ends at once.
const BankruptcyLine = -100

// Ending types.
const (
	EndingBad   = "bad"
	EndingHappy = "happy"
)

// Ending ids.
const (
	EndingBankrupt = "bankrupt"
	EndingCage     = "gilded_cage"
	EndingHeir     = "family_heir"
	EndingSingle   = "single_star"
	EndingHarem    = "harem"
	EndingPureLove = "pure_love"
)

// checkEnding returns the ending reached by the current state, if any.
func (s *Session) checkEnding() *state.Ending {
	gs := s.gs
	day := gs.World.Day
	if gs.Player.Money < BankruptcyLine {
		return &state.Ending{
			ID:    EndingBankrupt,
			Type:  EndingBad,
			Title: "On the Brink (Bad Ending)",
			Text: "Your savings are gone and the landlord has changed the locks.\n" +
				"Standing on the street with your suitcase, you see your father's secretary waiting.\n" +
				"\"The family has sent me to bring you home.\"\n\nThe dream is over. An arranged marriage is not.",
			Day: day,
		}
	}
	if day <= s.opts.MaxDays {
		return nil
	}

	if kin := gs.Kin(); kin != nil && kin.Kin.Restraint <= 0 {
		return &state.Ending{
			ID:    EndingCage,
			Type:  EndingBad,
			Title: "Bird in a Gilded Cage",
			Text: fmt.Sprintf("You never became a great mangaka. You never even left the golden bedroom.\n"+
				"%s kept his promise. You share every breath and every sin, until the end.", kin.Name),
			Day: day,
		}
	}
	if gs.Player.Fans < s.opts.GoalFans {
		return &state.Ending{
			ID:    EndingHeir,
			Type:  EndingBad,
			Title: "Back to the Family Business (Bad Ending)",
			Text: "\"Had enough?\" Your father's secretary hands you a plane ticket.\n" +
				"You could not prove yourself. The brushes go into a box and you take your seat as heir.\n" +
				"Some nights you still dream about manga.",
			Day: day,
		}
	}

	switch n := gs.DatingCount(); {
	case n == 0:
		return &state.Ending{
			ID:    EndingSingle,
			Type:  EndingHappy,
			Title: "Single Star Mangaka (Normal Ending)",
			Text: "You did it! Your manga became anime and films.\n" +
				"There is nobody at your side, but with the applause of your fans you decide freedom is the finest luxury.",
			Day: day,
		}
	case n >= 2:
		return &state.Ending{
			ID:    EndingHarem,
			Type:  EndingHappy,
			Title: "Why Choose? (Harem Ending)",
			Text: "Who says a mangaka gets only one muse?\n" +
				"They meet at your signing event and the air crackles. Tonight's showdown will be great material.",
			Day: day,
		}
	default:
		lover := "your lover"
		for _, npc := range gs.NPCs {
			if npc.Status == state.StatusDating {
				lover = npc.Name
				break
			}
		}
		return &state.Ending{
			ID:    EndingPureLove,
			Type:  EndingHappy,
			Title: fmt.Sprintf("Happily Ever After with %s (Happy Ending)", lover),
			Text: fmt.Sprintf("You found success and a love that is yours alone.\n"+
				"%s smiles as he tidies your drafts. The sun is bright outside the window.", lover),
			Day: day,
		}
	}
}

// Achievement is a one-time milestone.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	check       func(*state.GameState) bool
}

// Achievements is every milestone in check order.
var Achievements = []Achievement{
	{
		ID:          "first_pot_of_gold",
		Title:       "First Pot of Gold",
		Description: "Have at least 5,000 in savings.",
		check:       func(gs *state.GameState) bool { return gs.Player.Money >= 5000 },
	},
	{
		ID:          "heartbreaker",
		Title:       "Heartbreaker",
		Description: "Keep two men above 50 favor at once.",
		check: func(gs *state.GameState) bool {
			n := 0
			for _, npc := range gs.NPCs {
				if npc.Favor() > 50 {
					n++
				}
			}
			return n >= 2
		},
	},
	{
		ID:          "forbidden",
		Title:       "Forbidden",
		Description: "Push your brother's restraint below 20.",
		check: func(gs *state.GameState) bool {
			kin := gs.Kin()
			return kin != nil && kin.Kin.Restraint < 20
		},
	},
	{
		ID:          "workaholic",
		Title:       "Workaholic",
		Description: "Finish ten works.",
		check:       func(gs *state.GameState) bool { return len(gs.Career.History) >= 10 },
	},
}

// checkAchievements records newly met milestones and returns them.
func (s *Session) checkAchievements(ctx context.Context) []Achievement {
	var unlocked []Achievement
	for _, a := range Achievements {
		if !a.check(s.gs) || !s.gs.AddAchievement(a.ID) {
			continue
		}
		unlocked = append(unlocked, a)
		s.logger.Info("Achievement unlocked", "achievement", a.ID)
		s.record(ctx, CategoryEnding, "Achievement unlocked: "+a.Title, map[string]any{"achievement": a.ID})
	}
	return unlocked
}
