package game

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/pkg/career"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/dice"
	"github.com/jwebster45206/manga-engine/pkg/romance"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testTables(extra ...*content.EventDef) *content.Tables {
	t := &content.Tables{
		Genres: []*content.Genre{
			{ID: "school_romance", Name: "School Romance", BaseIncome: 100, BaseFans: 10},
			{ID: "horror_suspense", Name: "Horror Suspense", CostEnergy: 30},
		},
		Styles: []*content.Style{
			{ID: "standard", Name: "Standard"},
			{ID: "noir", Name: "Noir"},
		},
		Focuses: content.DefaultFocuses(),
		FixedNPCs: []*content.FixedNPC{{
			ID:          "kin_brother",
			Name:        "Sei",
			Relation:    state.RelationBrother,
			Personality: content.Stoic,
			Stats:       content.KinStats{Affection: 30, Restraint: 50},
		}},
		Events: append([]*content.EventDef{
			{ID: "scripted_first_meet", Trigger: "script", Text: "You bump into {npc_name}.",
				Choices: []content.Choice{{Text: "Apologize"}}},
			{ID: "kin_witness", Trigger: "script", Text: "Sei watches you walk with {npc_name}.",
				Choices: []content.Choice{{Text: "Let go of his hand", Effects: &content.Effects{Kin: &content.KinDelta{Restraint: 5}}}}},
			{ID: "breakup_blackened_start", Trigger: "script", Text: "{npc_name} locks the door."},
			{ID: "breakup_normal_start", Trigger: "script", Text: "{npc_name} walks away."},
			{ID: "champion_party", Trigger: "champion", Text: "Your editor throws a party."},
		}, extra...),
	}
	return t.Finalize()
}

func newTestSession(t *testing.T, roller dice.Roller, opts Options, extra ...*content.EventDef) *Session {
	t.Helper()
	opts.Roller = roller
	opts.Logger = testLogger()
	return NewSession(context.Background(), "Aki", testTables(extra...), opts)
}

func rosterNPC(id string, favor int, status state.Status) *state.NPC {
	return &state.NPC{ID: id, Name: "Name-" + id, Kind: state.KindRoster, Personality: content.Sunny, Favorability: favor, Status: status}
}

func TestNewSessionAddsFixedNPCsAndJournals(t *testing.T) {
	j := NewMemoryJournal()
	s := newTestSession(t, dice.NewSequence(0.5), Options{Journal: j})

	kin := s.State().Kin()
	require.NotNil(t, kin)
	assert.Equal(t, "kin_brother", kin.ID)
	assert.Equal(t, 50, kin.Kin.Restraint)
	assert.NotNil(t, s.State().DaySnapshot)

	entries, err := j.List(context.Background(), s.State().ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CategoryCalendar, entries[0].Category)
}

func TestResumeDoesNotDuplicateFixedNPCs(t *testing.T) {
	s := newTestSession(t, dice.NewSequence(0.5), Options{})
	gs := s.State()
	gs.Flags = nil

	r := Resume(gs, testTables(), Options{Roller: dice.NewSequence(0.5), Logger: testLogger()})
	assert.Len(t, r.State().NPCs, 1)
	assert.NotNil(t, r.State().Flags)
}

func TestStartWork(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		genre   string
		style   string
		wantErr error
	}{
		{"unknown genre", "space_opera", "standard", state.ErrNotFound},
		{"unknown style", "school_romance", "cubist", state.ErrNotFound},
		{"locked genre", "horror_suspense", "standard", state.ErrInvalidState},
		{"locked style", "school_romance", "noir", state.ErrInvalidState},
		{"starting pair", "school_romance", "standard", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, dice.NewSequence(0.5), Options{})
			out, err := s.StartWork(ctx, "First Love", tt.genre, tt.style)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, s.State().Career.CurrentWork)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "First Love", out.Work.Title)
			assert.Same(t, out.Work, s.State().Career.CurrentWork)
		})
	}

	t.Run("second work is rejected", func(t *testing.T) {
		s := newTestSession(t, dice.NewSequence(0.5), Options{})
		_, err := s.StartWork(ctx, "One", "school_romance", "standard")
		require.NoError(t, err)
		_, err = s.StartWork(ctx, "Two", "school_romance", "standard")
		assert.True(t, errors.Is(err, state.ErrInvalidState))
		assert.Equal(t, "One", s.State().Career.CurrentWork.Title)
	})
}

func TestChapterCost(t *testing.T) {
	tables := testTables()
	sr, _ := tables.Genre("school_romance")
	hs, _ := tables.Genre("horror_suspense")
	filler, _ := tables.Focus("filler")
	climax, _ := tables.Focus("climax")
	cliff, _ := tables.Focus("cliffhanger")

	assert.Equal(t, 20, ChapterCost(sr, nil))
	assert.Equal(t, 10, ChapterCost(sr, filler))
	assert.Equal(t, 30, ChapterCost(sr, climax))
	assert.Equal(t, 24, ChapterCost(sr, cliff))
	assert.Equal(t, 45, ChapterCost(hs, climax))
	assert.Equal(t, 3, AllocationCost(career.Allocation{Art: 1, Story: 1.5}))
}

func TestDrawChapter(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, dice.NewSequence(0.5), Options{})
	gs := s.State()

	_, err := s.DrawChapter(ctx, "", career.Allocation{})
	assert.True(t, errors.Is(err, state.ErrInvalidState), "no work yet")

	_, err = s.StartWork(ctx, "First Love", "school_romance", "standard")
	require.NoError(t, err)

	_, err = s.DrawChapter(ctx, "mystery", career.Allocation{})
	assert.True(t, errors.Is(err, state.ErrNotFound))
	_, err = s.DrawChapter(ctx, "", career.Allocation{Art: -1})
	assert.True(t, errors.Is(err, state.ErrInvalidState))
	assert.Equal(t, state.StartingEnergy, gs.Player.Energy, "rejected drafts cost nothing")

	out, err := s.DrawChapter(ctx, "filler", career.Allocation{})
	require.NoError(t, err)
	// (10*0.5 + 10*0.5 + 10*0.2) * 0.6 = 7.2
	assert.InDelta(t, 7.2, out.Chapter.Score, 1e-9)
	assert.Equal(t, 36, out.Chapter.Income)
	assert.Equal(t, 3, out.Chapter.Fans)
	assert.Equal(t, 1, out.Chapter.Chapter)
	assert.Equal(t, state.StartingEnergy-10, gs.Player.Energy)
	assert.Equal(t, state.StartingMoney+36, gs.Player.Money)
	assert.Equal(t, 3, gs.Player.Fans)
	assert.Equal(t, state.StartingStat+SkillGain, gs.Player.Attributes.Art)
	assert.Equal(t, state.StartingStat+SkillGain, gs.Player.Attributes.Story)
	assert.Contains(t, out.Plot, "First Love")
	require.NotNil(t, out.Feedback)
	assert.NotEmpty(t, out.Feedback.HotComment)
	assert.Nil(t, out.Event)

	gs.Player.Energy = 5
	_, err = s.DrawChapter(ctx, "", career.Allocation{})
	assert.True(t, errors.Is(err, state.ErrInsufficientResource))
	assert.Equal(t, 5, gs.Player.Energy)
	assert.Equal(t, 1, gs.Career.CurrentWork.Chapter)
}

func TestDrawChapterChampionSkipsWorkEvents(t *testing.T) {
	ctx := context.Background()
	workEvent := &content.EventDef{ID: "fan_letter", Trigger: "work", Text: "A fan letter arrives."}
	s := newTestSession(t, dice.NewSequence(0.5), Options{}, workEvent)
	gs := s.State()

	_, err := s.StartWork(ctx, "Hit", "school_romance", "standard")
	require.NoError(t, err)
	gs.Career.CurrentWork.TotalScore = 499

	out, err := s.DrawChapter(ctx, "", career.Allocation{})
	require.NoError(t, err)
	assert.True(t, out.Chapter.IsChampion)
	assert.Equal(t, 1, gs.Career.RankingTier)
	require.NotNil(t, out.Event)
	assert.Equal(t, "champion_party", out.Event.Def.ID)
	assert.Contains(t, strings.Join(out.Notes, "\n"), "Neighborhood Favorites")
}

func TestActiveEventBlocksActions(t *testing.T) {
	ctx := context.Background()
	workEvent := &content.EventDef{ID: "fan_letter", Trigger: "work", Text: "A fan letter arrives.",
		Choices: []content.Choice{{Text: "Read it", Effects: &content.Effects{Money: 50}}}}
	s := newTestSession(t, dice.NewSequence(0.5), Options{}, workEvent)

	_, err := s.StartWork(ctx, "Letters", "school_romance", "standard")
	require.NoError(t, err)
	out, err := s.DrawChapter(ctx, "", career.Allocation{})
	require.NoError(t, err)
	require.NotNil(t, out.Event)

	_, err = s.Rest(ctx)
	assert.True(t, errors.Is(err, state.ErrInvalidState))
	_, err = s.Train(ctx, "art")
	assert.True(t, errors.Is(err, state.ErrInvalidState))

	money := s.State().Player.Money
	out, err = s.Choose(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "fan_letter", out.Resolution.EventID)
	assert.Equal(t, money+50, s.State().Player.Money)
	assert.Nil(t, out.Event)

	_, err = s.Rest(ctx)
	assert.NoError(t, err)
}

func TestTrain(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, dice.NewSequence(0.5), Options{})
	gs := s.State()

	_, err := s.Train(ctx, "charm")
	assert.True(t, errors.Is(err, state.ErrInvalidState))
	assert.Equal(t, state.StartingEnergy, gs.Player.Energy)

	_, err = s.Train(ctx, "art")
	require.NoError(t, err)
	assert.Equal(t, state.StartingStat+3, gs.Player.Attributes.Art)
	assert.Equal(t, state.StartingEnergy-TrainCost, gs.Player.Energy)

	gs.Player.Energy = TrainCost - 1
	_, err = s.Train(ctx, "story")
	assert.True(t, errors.Is(err, state.ErrInsufficientResource))
	assert.Equal(t, state.StartingStat, gs.Player.Attributes.Story)
}

func TestHuntInspiration(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		roll       float64
		allStyles  bool
		wantStyle  bool
		wantGenre  bool
		storyDelta float64
	}{
		{"rare style", 0.1, false, true, false, 0},
		{"style exhausted falls to genre", 0.1, true, false, true, 0},
		{"genre", 0.5, false, false, true, 0},
		{"nothing found", 0.9, false, false, false, InspireFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, dice.NewSequence(tt.roll), Options{})
			gs := s.State()
			if tt.allStyles {
				gs.Career.UnlockedStyles = []string{"standard", "noir"}
			}
			_, err := s.HuntInspiration(ctx)
			require.NoError(t, err)
			assert.Equal(t, state.StartingEnergy-InspireCost, gs.Player.Energy)
			assert.Equal(t, tt.wantStyle, !tt.allStyles && gs.HasStyle("noir"))
			assert.Equal(t, tt.wantGenre, gs.HasGenre("horror_suspense"))
			assert.Equal(t, state.StartingStat+tt.storyDelta, gs.Player.Attributes.Story)
		})
	}
}

func TestWanderFirstMeetingThenGreet(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, dice.NewSequence(0.5), Options{})
	gs := s.State()

	out, err := s.Wander(ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Event)
	assert.Equal(t, "scripted_first_meet", out.Event.Def.ID)
	roster := gs.RosterNPCs()
	require.Len(t, roster, 1)
	first := roster[0]
	assert.Equal(t, first.ID, out.Event.TargetNPCID)
	assert.Contains(t, out.Event.Text, first.Name)
	assert.True(t, gs.Flags[state.FlagFirstEncounter])
	assert.Equal(t, state.StartingEnergy-WanderCost, gs.Player.Energy)

	_, err = s.Greet(ctx, first.ID)
	assert.True(t, errors.Is(err, state.ErrInvalidState), "event must be resolved first")

	_, err = s.Choose(ctx, 0)
	require.NoError(t, err)
	_, err = s.Greet(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, GreetFavor, first.Favorability)

	_, err = s.Greet(ctx, first.ID)
	assert.True(t, errors.Is(err, state.ErrInvalidState), "one greeting per meeting")
}

func TestWanderWhileConfined(t *testing.T) {
	ctx := context.Background()
	goOut := &content.EventDef{ID: "street_festival", Trigger: "go_out", Text: "A festival!"}
	s := newTestSession(t, dice.NewSequence(0.5), Options{}, goOut)
	gs := s.State()
	gs.SetFlag(state.FlagConfined, true)

	out, err := s.Wander(ctx)
	require.NoError(t, err)
	assert.False(t, out.Encounter.Met)
	assert.Nil(t, out.Event)
	assert.Contains(t, out.Message, "locked")
}

func TestWanderGoOutEvent(t *testing.T) {
	ctx := context.Background()
	goOut := &content.EventDef{ID: "street_festival", Trigger: "go_out", Text: "A festival!"}
	s := newTestSession(t, dice.NewSequence(0.8), Options{}, goOut)
	gs := s.State()
	gs.SetFlag(state.FlagFirstEncounter, true)

	out, err := s.Wander(ctx)
	require.NoError(t, err)
	assert.False(t, out.Encounter.Met)
	require.NotNil(t, out.Event)
	assert.Equal(t, "street_festival", out.Event.Def.ID)
}

func TestWanderKinAllowance(t *testing.T) {
	ctx := context.Background()
	allowance := &content.EventDef{ID: "kin_allowance", Trigger: "script", Text: "A transfer from your brother."}
	s := newTestSession(t, dice.NewSequence(0.8, 0.2), Options{}, allowance)
	gs := s.State()
	gs.SetFlag(state.FlagFirstEncounter, true)
	gs.Player.Money = 50

	out, err := s.Wander(ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Event)
	assert.Equal(t, "kin_allowance", out.Event.Def.ID)
	assert.Equal(t, "kin_brother", out.Event.TargetNPCID)
}

func TestInteract(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, dice.NewSequence(0.99), Options{})
	gs := s.State()
	gs.NPCs = append(gs.NPCs, rosterNPC("ren", 10, state.StatusStranger))

	_, err := s.Interact(ctx, "ren", "wink")
	assert.True(t, errors.Is(err, state.ErrInvalidState))
	_, err = s.Interact(ctx, "ghost", romance.Chat)
	assert.True(t, errors.Is(err, state.ErrNotFound))
	assert.Equal(t, state.StartingEnergy, gs.Player.Energy)

	out, err := s.Interact(ctx, "ren", romance.Date)
	require.NoError(t, err)
	assert.False(t, out.Interaction.Success, "favor too low for a date")
	assert.Equal(t, state.StartingEnergy-30, gs.Player.Energy)
	assert.Equal(t, state.StartingMoney-200, gs.Player.Money)

	out, err = s.Interact(ctx, "ren", romance.Gift)
	require.NoError(t, err)
	assert.True(t, out.Interaction.Success)
	assert.Equal(t, 25, gs.FindNPC("ren").Favorability)
	assert.Equal(t, state.StartingMoney-700, gs.Player.Money)

	_, err = s.Interact(ctx, "ren", romance.Gift)
	assert.True(t, errors.Is(err, state.ErrInsufficientResource))
	assert.Equal(t, 25, gs.FindNPC("ren").Favorability)
}

func TestDateWitnessedByKin(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, dice.NewSequence(0.05), Options{})
	gs := s.State()
	gs.NPCs = append(gs.NPCs, rosterNPC("ren", 50, state.StatusStranger))

	out, err := s.Interact(ctx, "ren", romance.Date)
	require.NoError(t, err)
	assert.True(t, out.Interaction.Success)
	require.NotNil(t, out.Event)
	assert.Equal(t, "kin_witness", out.Event.Def.ID)
	assert.Equal(t, "ren", out.Event.TargetNPCID)
	assert.Contains(t, out.Event.Text, "Name-ren")
	assert.Equal(t, 40, gs.Kin().Kin.Restraint)

	_, err = s.Choose(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 45, gs.Kin().Kin.Restraint)
}

func TestBreakContactScenes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		roll       float64
		status     state.Status
		wantStatus state.Status
		wantScene  string
		confined   bool
	}{
		{"dating blackens", 0.05, state.StatusDating, state.StatusImprisoned, "breakup_blackened_start", true},
		{"dating breaks cleanly", 0.99, state.StatusDating, state.StatusBroken, "breakup_normal_start", false},
		{"stranger has no scene", 0.05, state.StatusStranger, state.StatusStranger, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, dice.NewSequence(tt.roll), Options{})
			gs := s.State()
			gs.NPCs = append(gs.NPCs, rosterNPC("ren", 85, tt.status))

			out, err := s.BreakContact(ctx, "ren")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, gs.FindNPC("ren").Status)
			assert.Equal(t, tt.confined, gs.IsConfined())
			if tt.wantScene == "" {
				assert.Nil(t, out.Event)
				return
			}
			require.NotNil(t, out.Event)
			assert.Equal(t, tt.wantScene, out.Event.Def.ID)
			assert.True(t, strings.HasPrefix(out.Event.Text, "Name-ren"))
		})
	}

	s := newTestSession(t, dice.NewSequence(0.5), Options{})
	_, err := s.BreakContact(ctx, "ghost")
	assert.True(t, errors.Is(err, state.ErrNotFound))
}

func TestRestRunsGloomyChain(t *testing.T) {
	ctx := context.Background()
	watch := &content.EventDef{ID: "gloomy_watch", Trigger: "gloomy_chain", TriggerVal: intPtr(30), Text: "{npc_name} waits outside."}
	s := newTestSession(t, dice.NewSequence(0.5), Options{}, watch)
	gs := s.State()
	g := rosterNPC("kage", 40, state.StatusStranger)
	g.Personality = content.Gloomy
	gs.NPCs = append(gs.NPCs, g)

	out, err := s.Rest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Report.Day)
	assert.Equal(t, 2, gs.World.Day)
	require.NotNil(t, out.Event)
	assert.Equal(t, "kage", out.Event.TargetNPCID)
	assert.Equal(t, "Name-kage waits outside.", out.Event.Text)
}

func intPtr(v int) *int { return &v }

func TestRestFallsBackToRestEvents(t *testing.T) {
	ctx := context.Background()
	night := &content.EventDef{ID: "quiet_night", Trigger: "rest", Text: "You sleep like a stone."}
	s := newTestSession(t, dice.NewSequence(0.5), Options{}, night)

	out, err := s.Rest(ctx)
	require.NoError(t, err)
	require.NotNil(t, out.Event)
	assert.Equal(t, "quiet_night", out.Event.Def.ID)
}

func TestEndings(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		setup  func(gs *state.GameState)
		wantID string
	}{
		{"bankrupt", func(gs *state.GameState) { gs.Player.Money = -101 }, EndingBankrupt},
		{"kin cage", func(gs *state.GameState) { gs.Kin().Kin.Restraint = 0; gs.Player.Fans = 20000 }, EndingCage},
		{"fan goal missed", func(gs *state.GameState) { gs.Player.Fans = 9999 }, EndingHeir},
		{"single", func(gs *state.GameState) { gs.Player.Fans = 10000 }, EndingSingle},
		{"pure love", func(gs *state.GameState) {
			gs.Player.Fans = 10000
			gs.NPCs = append(gs.NPCs, rosterNPC("ren", 90, state.StatusDating))
		}, EndingPureLove},
		{"harem", func(gs *state.GameState) {
			gs.Player.Fans = 10000
			gs.NPCs = append(gs.NPCs, rosterNPC("ren", 90, state.StatusDating), rosterNPC("kai", 90, state.StatusDating))
		}, EndingHarem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, dice.NewSequence(0.5), Options{MaxDays: 1})
			gs := s.State()
			tt.setup(gs)

			out, err := s.Rest(ctx)
			require.NoError(t, err)
			require.NotNil(t, out.Ending)
			assert.Equal(t, tt.wantID, out.Ending.ID)
			assert.True(t, gs.IsOver())

			_, err = s.Train(ctx, "art")
			assert.True(t, errors.Is(err, state.ErrInvalidState), "no actions after the ending")
		})
	}

	t.Run("pure love names the partner", func(t *testing.T) {
		s := newTestSession(t, dice.NewSequence(0.5), Options{MaxDays: 1})
		gs := s.State()
		gs.Player.Fans = 10000
		gs.NPCs = append(gs.NPCs, rosterNPC("ren", 90, state.StatusDating))
		out, err := s.Rest(ctx)
		require.NoError(t, err)
		assert.Contains(t, out.Ending.Title, "Name-ren")
	})

	t.Run("no ending before the day limit", func(t *testing.T) {
		s := newTestSession(t, dice.NewSequence(0.5), Options{})
		out, err := s.Rest(ctx)
		require.NoError(t, err)
		assert.Nil(t, out.Ending)
	})
}

func TestAchievementsUnlockOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, dice.NewSequence(0.5), Options{})
	gs := s.State()
	gs.Player.Money = 6000

	out, err := s.Train(ctx, "art")
	require.NoError(t, err)
	require.Len(t, out.Achievements, 1)
	assert.Equal(t, "first_pot_of_gold", out.Achievements[0].ID)

	out, err = s.Train(ctx, "story")
	require.NoError(t, err)
	assert.Empty(t, out.Achievements)
	assert.Equal(t, []string{"first_pot_of_gold"}, gs.Achievements)
}

type failingJournal struct{ calls int }

func (f *failingJournal) Append(context.Context, uuid.UUID, Entry) error {
	f.calls++
	return errors.New("journal down")
}
func (f *failingJournal) List(context.Context, uuid.UUID) ([]Entry, error) { return nil, nil }
func (f *failingJournal) Clear(context.Context, uuid.UUID) error           { return nil }

func TestJournalFailureIsNotFatal(t *testing.T) {
	fj := &failingJournal{}
	s := newTestSession(t, dice.NewSequence(0.5), Options{Journal: fj})
	_, err := s.Train(context.Background(), "art")
	assert.NoError(t, err)
	assert.Equal(t, 2, fj.calls)
}
