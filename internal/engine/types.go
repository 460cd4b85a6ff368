package engine

import "time"

type Category string

const (
	CategoryPhysical      Category = "physical"
	CategoryMental        Category = "mental"
	CategoryIntellectual  Category = "intellectual"
	CategorySpiritual     Category = "spiritual"
	CategoryFinancial     Category = "financial"
	CategoryCareer        Category = "career"
	CategoryRelationships Category = "relationships"
)

// Categories lists every life category in display order.
var Categories = []Category{
	CategoryPhysical,
	CategoryMental,
	CategoryIntellectual,
	CategorySpiritual,
	CategoryFinancial,
	CategoryCareer,
	CategoryRelationships,
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryPhysical, CategoryMental, CategoryIntellectual, CategorySpiritual,
		CategoryFinancial, CategoryCareer, CategoryRelationships:
		return true
	default:
		return false
	}
}

// DefaultCategory is used when user input is missing/invalid.
const DefaultCategory Category = CategoryMental

type Difficulty int

const (
	DifficultyTrivial Difficulty = 1
	DifficultyEasy    Difficulty = 2
	DifficultyMedium  Difficulty = 3
	DifficultyHard    Difficulty = 4
	DifficultyEpic    Difficulty = 5
)

func (d Difficulty) IsValid() bool {
	return d >= DifficultyTrivial && d <= DifficultyEpic
}

// XPSource records why XP was granted.
type XPSource string

const (
	XPSourceTask      XPSource = "task"
	XPSourceHabit     XPSource = "habit"
	XPSourceRoutine   XPSource = "routine"
	XPSourceChallenge XPSource = "challenge"
	XPSourceManual    XPSource = "manual"
)

func (s XPSource) IsValid() bool {
	switch s {
	case XPSourceTask, XPSourceHabit, XPSourceRoutine, XPSourceChallenge, XPSourceManual:
		return true
	default:
		return false
	}
}

// CategoryProgress is the per-category level. XP is the remainder inside Level.
type CategoryProgress struct {
	Level int
	XP    int
}

// UserStats are counters maintained by the persistence layer on successful completions.
type UserStats struct {
	CurrentStreak       int
	BestStreak          int
	TotalTasksCompleted int
	RoutinesCompleted   int
	ChallengesCompleted []string
}

type UserBadge struct {
	BadgeID  string
	EarnedAt time.Time
}

// UserState is the user aggregate as reported by the gateway.
type UserState struct {
	UserID     string
	Categories map[Category]CategoryProgress
	Prestige   int
	Stats      UserStats
	Badges     []UserBadge
}

// Overall derives the overall progress from the categories.
func (u *UserState) Overall() OverallProgress {
	info := OverallLevelInfo(u.Categories)
	return OverallProgress{Level: info.Level, XP: info.CurrentLevelXP, Prestige: u.Prestige}
}

// EarnedBadgeIDs returns the set of badge ids already held by the user.
func (u *UserState) EarnedBadgeIDs() map[string]bool {
	out := make(map[string]bool, len(u.Badges))
	for _, b := range u.Badges {
		out[b.BadgeID] = true
	}
	return out
}

type OverallProgress struct {
	Level    int
	XP       int
	Prestige int
}
