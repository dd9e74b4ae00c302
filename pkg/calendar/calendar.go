// Package calendar runs the day/resource cycle: energy debits, day advance,
// weekly upkeep and the daily delta report.
package calendar

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/state"
)

const (
	// Upkeep is the living cost charged every UpkeepPeriod days.
	Upkeep       = 500
	UpkeepPeriod = 7

	EnergyNormal = 100
	EnergyBad    = 60
	EnergyGood   = 120

	badSleepBelow  = 0.15
	goodSleepAbove = 0.9
)

// Delta is the change in tracked values over one day.
type Delta struct {
	Money int     `json:"money"`
	Fans  int     `json:"fans"`
	Art   float64 `json:"art"`
	Story float64 `json:"story"`
	Charm float64 `json:"charm"`
}

// DailyReport is the product of advancing the day.
type DailyReport struct {
	Day            int      `json:"day"`
	Events         []string `json:"events"`
	Changes        Delta    `json:"changes"`
	EnergyRestored int      `json:"energy_restored"`
	UpkeepCharged  bool     `json:"upkeep_charged"`
	Bankrupt       bool     `json:"bankrupt"`
}

// Calendar advances time on a game state.
type Calendar struct {
	roller dice.Roller
	logger *slog.Logger
}

// New creates a Calendar. A nil roller uses the default source.
func New(roller dice.Roller, logger *slog.Logger) *Calendar {
	if roller == nil {
		roller = dice.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calendar{roller: roller, logger: logger}
}

// CanAfford reports whether the player has at least the given energy and money.
func CanAfford(gs *state.GameState, energy, money int) error {
	if gs.Player.Energy < energy {
		return fmt.Errorf("%w: need %d energy, have %d", state.ErrInsufficientResource, energy, gs.Player.Energy)
	}
	if gs.Player.Money < money {
		return fmt.Errorf("%w: need %d money, have %d", state.ErrInsufficientResource, money, gs.Player.Money)
	}
	return nil
}

// ConsumeEnergy deducts amount only if the player has that much energy.
func ConsumeEnergy(gs *state.GameState, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: negative energy cost %d", state.ErrInvalidState, amount)
	}
	if err := CanAfford(gs, amount, 0); err != nil {
		return err
	}
	gs.Player.Energy -= amount
	return nil
}

// StartNewDay snapshots the tracked values. Calling it twice in a row is harmless.
func StartNewDay(gs *state.GameState) {
	p := gs.Player
	gs.DaySnapshot = &state.DaySnapshot{
		Money: p.Money,
		Fans:  p.Fans,
		Art:   p.Attributes.Art,
		Story: p.Attributes.Story,
		Charm: p.Attributes.Charm,
	}
}

func deltaSince(gs *state.GameState) Delta {
	snap := gs.DaySnapshot
	if snap == nil {
		return Delta{}
	}
	p := gs.Player
	return Delta{
		Money: p.Money - snap.Money,
		Fans:  p.Fans - snap.Fans,
		Art:   p.Attributes.Art - snap.Art,
		Story: p.Attributes.Story - snap.Story,
		Charm: p.Attributes.Charm - snap.Charm,
	}
}

// AdvanceDay closes the current day and opens the next one.
func (c *Calendar) AdvanceDay(gs *state.GameState) DailyReport {
	report := DailyReport{
		Changes: deltaSince(gs),
		Events:  []string{},
	}
	closing := gs.World.Day
	gs.World.Day++
	report.Day = gs.World.Day

	roll := c.roller.Float64()
	switch {
	case roll < badSleepBelow:
		report.EnergyRestored = EnergyBad
		report.Events = append(report.Events, "You had nightmares all night. You wake up exhausted.")
	case roll > goodSleepAbove:
		report.EnergyRestored = EnergyGood
		report.Events = append(report.Events, "You slept like a log and woke up full of energy!")
	default:
		report.EnergyRestored = EnergyNormal
		report.Events = append(report.Events, "A quiet night. You feel rested.")
	}
	gs.Player.Energy = report.EnergyRestored

	if closing%UpkeepPeriod == 0 {
		gs.Player.Money -= Upkeep
		report.UpkeepCharged = true
		report.Events = append(report.Events, fmt.Sprintf("Rent and bills are due: -%d.", Upkeep))
		if gs.Player.Money < 0 {
			report.Bankrupt = true
			report.Events = append(report.Events, "Warning: your account is overdrawn. Find income fast.")
		}
	}

	StartNewDay(gs)

	c.logger.Debug("Day advanced",
		"game_id", gs.ID.String(),
		"day", report.Day,
		"energy", report.EnergyRestored,
		"upkeep", report.UpkeepCharged)
	return report
}
