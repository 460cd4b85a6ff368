package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgeByID(t *testing.T, id string) BadgeDefinition {
	t.Helper()
	for _, b := range DefaultCatalog() {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("badge %q not in default catalog", id)
	return BadgeDefinition{}
}

func newState() *UserState {
	return &UserState{UserID: "alice", Categories: map[Category]CategoryProgress{}}
}

func TestDefaultCatalogIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range DefaultCatalog() {
		require.NotEmpty(t, b.ID)
		require.False(t, seen[b.ID], "duplicate id %s", b.ID)
		require.NotNil(t, b.Requirement, "badge %s", b.ID)
		seen[b.ID] = true
	}
}

func TestProgressOfCategoryLevel(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Categories[CategoryMental] = CategoryProgress{Level: 1, XP: 40}

	assert.InDelta(t, 0.2, e.ProgressOf(badgeByID(t, "calm_mind"), state), 1e-9)

	state.Categories[CategoryMental] = CategoryProgress{Level: 7}
	assert.Equal(t, 1.0, e.ProgressOf(badgeByID(t, "calm_mind"), state))
}

func TestOverallLevelBadges(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Categories[CategoryPhysical] = CategoryProgress{Level: 2}
	state.Categories[CategoryMental] = CategoryProgress{Level: 2}

	award := e.CheckAndAward(state, DefaultCatalog(), nil)
	assert.Contains(t, award.NewlyAwarded, "first_steps")
	assert.NotContains(t, award.NewlyAwarded, "getting_started")
	assert.InDelta(t, 2.0/3.0, e.ProgressOf(badgeByID(t, "getting_started"), state), 1e-9)
}

func TestChallengeCompletionBadge(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.ChallengesCompleted = []string{"c1", "c2"}

	award := e.CheckAndAward(state, DefaultCatalog(), nil)
	assert.NotContains(t, award.NewlyAwarded, "challenger")

	state.Stats.ChallengesCompleted = append(state.Stats.ChallengesCompleted, "c3")
	award = e.CheckAndAward(state, DefaultCatalog(), nil)
	assert.Equal(t, []string{"challenger"}, award.NewlyAwarded)
	require.Len(t, award.Badges, 1)
	assert.False(t, award.Badges[0].EarnedAt.IsZero())
}

func TestRoutineAndTaskCompletionBadges(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.TotalTasksCompleted = 10
	state.Stats.RoutinesCompleted = 5

	award := e.CheckAndAward(state, DefaultCatalog(), nil)
	assert.ElementsMatch(t, []string{"first_task", "productive", "team_player"}, award.NewlyAwarded)
}

func TestStreakBadges(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.CurrentStreak = 7
	state.Stats.BestStreak = 30

	award := e.CheckAndAward(state, DefaultCatalog(), nil)
	assert.ElementsMatch(t, []string{"hot_streak", "on_fire"}, award.NewlyAwarded)
}

func TestCheckAndAwardIsIdempotent(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.TotalTasksCompleted = 1
	earned := map[string]bool{}

	first := e.CheckAndAward(state, DefaultCatalog(), earned)
	require.Equal(t, []string{"first_task"}, first.NewlyAwarded)
	assert.True(t, earned["first_task"])

	second := e.CheckAndAward(state, DefaultCatalog(), earned)
	assert.Empty(t, second.NewlyAwarded)
	assert.Empty(t, second.Badges)
	assert.Len(t, state.Badges, 1)
}

func TestCheckAndAwardSkipsEarnedFromState(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.TotalTasksCompleted = 1
	state.Badges = []UserBadge{{BadgeID: "first_task"}}

	award := e.CheckAndAward(state, DefaultCatalog(), map[string]bool{})
	assert.Empty(t, award.NewlyAwarded)
}

func TestPrestigeBadgeIsBinary(t *testing.T) {
	e := NewBadgeEngine(nil)
	badge := BadgeDefinition{ID: "reborn", Requirement: PrestigeRequirement{Threshold: 0}}
	state := newState()

	assert.Equal(t, 0.0, e.ProgressOf(badge, state))
	assert.Empty(t, e.CheckAndAward(state, []BadgeDefinition{badge}, nil).NewlyAwarded)

	state.Prestige = 1
	assert.Equal(t, 1.0, e.ProgressOf(badge, state))
	assert.Equal(t, []string{"reborn"}, e.CheckAndAward(state, []BadgeDefinition{badge}, nil).NewlyAwarded)
}

func TestMalformedBadgesAreSkipped(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.TotalTasksCompleted = 100
	catalog := []BadgeDefinition{
		{ID: "astral", Requirement: LevelRequirement{Threshold: 5, Category: "astral"}},
		{ID: "zero", Requirement: CompletionRequirement{Threshold: 0}},
		{ID: "nan", Requirement: StreakRequirement{Threshold: math.NaN()}},
		{ID: "missing"},
		{ID: "ok", Requirement: CompletionRequirement{Threshold: 50}},
	}

	award := e.CheckAndAward(state, catalog, nil)
	assert.Equal(t, []string{"ok"}, award.NewlyAwarded)
	for _, b := range catalog[:4] {
		assert.Equal(t, 0.0, e.ProgressOf(b, state), b.ID)
	}
}

func TestCheckAndAwardWithoutState(t *testing.T) {
	e := NewBadgeEngine(nil)
	assert.Empty(t, e.CheckAndAward(nil, DefaultCatalog(), nil).NewlyAwarded)
	assert.Empty(t, e.CheckAndAward(newState(), nil, nil).NewlyAwarded)
	assert.Equal(t, 0.0, e.ProgressOf(badgeByID(t, "first_task"), nil))
}

func TestProgressListsEarnedFirst(t *testing.T) {
	e := NewBadgeEngine(nil)
	state := newState()
	state.Stats.CurrentStreak = 3
	e.CheckAndAward(state, DefaultCatalog(), nil)

	rows := e.Progress(state, DefaultCatalog())
	require.Len(t, rows, len(DefaultCatalog()))
	assert.Equal(t, "hot_streak", rows[0].Badge.ID)
	assert.True(t, rows[0].Earned)
	require.NotNil(t, rows[0].EarnedAt)
	for _, r := range rows[1:] {
		assert.False(t, r.Earned, r.Badge.ID)
		assert.GreaterOrEqual(t, r.Progress, 0.0)
		assert.LessOrEqual(t, r.Progress, 1.0)
	}
}
