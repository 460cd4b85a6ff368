package engine

import (
	"errors"
	"time"

	"go.uber.org/zap"
)

// Award is the result of one catalog evaluation.
type Award struct {
	NewlyAwarded []string
	Badges       []UserBadge
}

// BadgeProgress is a display row for one catalog entry.
type BadgeProgress struct {
	Badge    BadgeDefinition
	Earned   bool
	EarnedAt *time.Time
	Progress float64
}

// BadgeEngine evaluates badge definitions against a user aggregate.
type BadgeEngine struct {
	log *zap.Logger
	now func() time.Time
}

func NewBadgeEngine(log *zap.Logger) *BadgeEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &BadgeEngine{log: log, now: func() time.Time { return time.Now().UTC() }}
}

// CheckAndAward returns the badges in catalog whose requirement is met and that are not yet earned.
//
// alreadyEarned may be nil, in which case the badges on state are used. Newly awarded ids are added
// to alreadyEarned and appended to state.Badges, so a second call with the same inputs awards nothing.
// Malformed definitions are logged and skipped; a nil state yields an empty award.
func (e *BadgeEngine) CheckAndAward(state *UserState, catalog []BadgeDefinition, alreadyEarned map[string]bool) Award {
	var award Award
	if state == nil || len(catalog) == 0 {
		return award
	}
	if alreadyEarned == nil {
		alreadyEarned = state.EarnedBadgeIDs()
	} else {
		for _, b := range state.Badges {
			alreadyEarned[b.BadgeID] = true
		}
	}

	now := e.now()
	for _, b := range catalog {
		if b.ID == "" || alreadyEarned[b.ID] {
			continue
		}
		current, threshold, err := requirementTarget(b, state)
		if err != nil {
			e.logEvaluation(err)
			continue
		}
		if current < threshold {
			continue
		}
		alreadyEarned[b.ID] = true
		award.NewlyAwarded = append(award.NewlyAwarded, b.ID)
		award.Badges = append(award.Badges, UserBadge{BadgeID: b.ID, EarnedAt: now})
	}

	state.Badges = append(state.Badges, award.Badges...)
	return award
}

// ProgressOf returns how close state is to earning badge, in [0,1].
// Prestige badges report 0 or 1. Malformed badges report 0.
func (e *BadgeEngine) ProgressOf(badge BadgeDefinition, state *UserState) float64 {
	current, threshold, err := requirementTarget(badge, state)
	if err != nil {
		e.logEvaluation(err)
		return 0
	}
	if badge.Requirement.Kind() == RequirementPrestige {
		if current >= threshold {
			return 1
		}
		return 0
	}
	return ratio(current, threshold)
}

// Progress returns one row per catalog entry, earned badges first in catalog order.
func (e *BadgeEngine) Progress(state *UserState, catalog []BadgeDefinition) []BadgeProgress {
	if state == nil {
		return nil
	}
	earnedAt := make(map[string]time.Time, len(state.Badges))
	for _, b := range state.Badges {
		earnedAt[b.BadgeID] = b.EarnedAt
	}

	var earned, open []BadgeProgress
	for _, b := range catalog {
		if at, ok := earnedAt[b.ID]; ok {
			at := at
			earned = append(earned, BadgeProgress{Badge: b, Earned: true, EarnedAt: &at, Progress: 1})
			continue
		}
		open = append(open, BadgeProgress{Badge: b, Progress: e.ProgressOf(b, state)})
	}
	return append(earned, open...)
}

func (e *BadgeEngine) logEvaluation(err error) {
	var evalErr EvaluationError
	if errors.As(err, &evalErr) {
		e.log.Warn("badge evaluation skipped", zap.String("badge", evalErr.BadgeID), zap.String("reason", evalErr.Reason))
		return
	}
	e.log.Warn("badge evaluation skipped", zap.Error(err))
}

// DefaultCatalog returns the built-in badge catalog.
// Keep ids stable: earned badges are stored by id.
func DefaultCatalog() []BadgeDefinition {
	return []BadgeDefinition{
		// Overall level milestones
		levelBadge("first_steps", "First Steps", "Reach level 2", "🌱", "", 2),
		levelBadge("getting_started", "Getting Started", "Reach level 3", "🌿", "", 3),
		levelBadge("on_the_path", "On the Path", "Reach level 5", "🌳", "", 5),
		levelBadge("seasoned", "Seasoned", "Reach level 10", "⭐", "", 10),
		levelBadge("master", "Master", "Reach level 20", "💫", "", 20),

		// Category level milestones
		levelBadge("strong", "Strong", "Physical level 5", "💪", CategoryPhysical, 5),
		levelBadge("calm_mind", "Calm Mind", "Mental level 5", "🧘", CategoryMental, 5),
		levelBadge("bookworm", "Bookworm", "Intellectual level 5", "📚", CategoryIntellectual, 5),
		levelBadge("grounded", "Grounded", "Spiritual level 5", "🕯️", CategorySpiritual, 5),
		levelBadge("saver", "Saver", "Financial level 5", "💰", CategoryFinancial, 5),
		levelBadge("professional", "Professional", "Career level 5", "💼", CategoryCareer, 5),
		levelBadge("good_company", "Good Company", "Relationships level 5", "🤝", CategoryRelationships, 5),

		// Streaks
		streakBadge("hot_streak", "Hot Streak", "3 day streak", "🔥", 3),
		streakBadge("on_fire", "On Fire", "7 day streak", "☄️", 7),
		streakBadge("unstoppable", "Unstoppable", "30 day streak", "🚀", 30),

		// Task completion milestones
		completionBadge("first_task", "First Quest", "Complete 1 task", "✓", "", 1),
		completionBadge("productive", "Productive", "Complete 10 tasks", "📋", "", 10),
		completionBadge("achiever", "Achiever", "Complete 50 tasks", "🏅", "", 50),
		completionBadge("powerhouse", "Powerhouse", "Complete 100 tasks", "🏆", "", 100),
		completionBadge("team_player", "Team Player", "Finish 5 shared routines", "🔁", BadgeCategoryRoutine, 5),
		completionBadge("challenger", "Challenger", "Finish 3 challenges", "⚔️", BadgeCategoryChallenge, 3),

		// Prestige
		{ID: "prestige_1", Name: "Reborn", Description: "Prestige once", Icon: "👑", Requirement: PrestigeRequirement{Threshold: 1}},
	}
}

func levelBadge(id, name, desc, icon string, cat Category, level float64) BadgeDefinition {
	return BadgeDefinition{ID: id, Name: name, Description: desc, Icon: icon, Category: string(cat),
		Requirement: LevelRequirement{Threshold: level, Category: cat}}
}

func streakBadge(id, name, desc, icon string, days float64) BadgeDefinition {
	return BadgeDefinition{ID: id, Name: name, Description: desc, Icon: icon, Requirement: StreakRequirement{Threshold: days}}
}

func completionBadge(id, name, desc, icon, category string, count float64) BadgeDefinition {
	return BadgeDefinition{ID: id, Name: name, Description: desc, Icon: icon, Category: category,
		Requirement: CompletionRequirement{Threshold: count}}
}
