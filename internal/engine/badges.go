package engine

import "math"

type RequirementKind string

const (
	RequirementLevel      RequirementKind = "level"
	RequirementStreak     RequirementKind = "streak"
	RequirementCompletion RequirementKind = "completion"
	RequirementPrestige   RequirementKind = "prestige"
)

func (k RequirementKind) IsValid() bool {
	switch k {
	case RequirementLevel, RequirementStreak, RequirementCompletion, RequirementPrestige:
		return true
	default:
		return false
	}
}

// Requirement is implemented only by the requirement types in this package.
type Requirement interface {
	Kind() RequirementKind
	isRequirement()
}

// LevelRequirement compares a category level, or the overall level when Category is empty.
type LevelRequirement struct {
	Threshold float64
	Category  Category
}

// StreakRequirement compares the current daily streak.
type StreakRequirement struct {
	Threshold float64
}

// CompletionRequirement compares a completion counter chosen by the badge category.
type CompletionRequirement struct {
	Threshold float64
}

// PrestigeRequirement is met once the overall prestige reaches max(Threshold, 1).
type PrestigeRequirement struct {
	Threshold float64
}

func (LevelRequirement) Kind() RequirementKind      { return RequirementLevel }
func (StreakRequirement) Kind() RequirementKind     { return RequirementStreak }
func (CompletionRequirement) Kind() RequirementKind { return RequirementCompletion }
func (PrestigeRequirement) Kind() RequirementKind   { return RequirementPrestige }

func (LevelRequirement) isRequirement()      {}
func (StreakRequirement) isRequirement()     {}
func (CompletionRequirement) isRequirement() {}
func (PrestigeRequirement) isRequirement()   {}

// Badge categories that select the completion counter.
const (
	BadgeCategoryRoutine   = "routine"
	BadgeCategoryChallenge = "challenge"
)

// BadgeDefinition is an immutable catalog entry.
type BadgeDefinition struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    string
	Requirement Requirement
}

// requirementTarget resolves the current value and the threshold the badge compares it against.
func requirementTarget(b BadgeDefinition, state *UserState) (current float64, threshold float64, err error) {
	if state == nil {
		return 0, 0, EvaluationError{BadgeID: b.ID, Reason: "user state unavailable"}
	}

	switch req := b.Requirement.(type) {
	case LevelRequirement:
		if err := checkThreshold(b.ID, req.Threshold); err != nil {
			return 0, 0, err
		}
		if req.Category == "" {
			return float64(OverallLevelInfo(state.Categories).Level), req.Threshold, nil
		}
		if !req.Category.IsValid() {
			return 0, 0, EvaluationError{BadgeID: b.ID, Reason: "unknown category " + string(req.Category)}
		}
		cp := normalizeProgress(state.Categories[req.Category])
		return float64(cp.Level), req.Threshold, nil
	case StreakRequirement:
		if err := checkThreshold(b.ID, req.Threshold); err != nil {
			return 0, 0, err
		}
		return float64(state.Stats.CurrentStreak), req.Threshold, nil
	case CompletionRequirement:
		if err := checkThreshold(b.ID, req.Threshold); err != nil {
			return 0, 0, err
		}
		switch b.Category {
		case BadgeCategoryRoutine:
			return float64(state.Stats.RoutinesCompleted), req.Threshold, nil
		case BadgeCategoryChallenge:
			return float64(len(state.Stats.ChallengesCompleted)), req.Threshold, nil
		default:
			return float64(state.Stats.TotalTasksCompleted), req.Threshold, nil
		}
	case PrestigeRequirement:
		if math.IsNaN(req.Threshold) {
			return 0, 0, EvaluationError{BadgeID: b.ID, Reason: "threshold is not a number"}
		}
		return float64(state.Prestige), math.Max(req.Threshold, 1), nil
	case nil:
		return 0, 0, EvaluationError{BadgeID: b.ID, Reason: "missing requirement"}
	default:
		return 0, 0, EvaluationError{BadgeID: b.ID, Reason: "unsupported requirement"}
	}
}

func checkThreshold(badgeID string, threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return EvaluationError{BadgeID: badgeID, Reason: "threshold must be a positive number"}
	}
	return nil
}
