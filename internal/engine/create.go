package engine

import (
	"errors"
	"fmt"
	"strings"
)

type CreateTaskInput struct {
	Kind          TaskKind
	Title         string
	Category      Category
	Difficulty    Difficulty
	HabitInterval HabitInterval
	// RoutineID joins an existing routine; empty starts a new one.
	RoutineID    string
	Participants []string
	// ChallengeID groups challenge tasks; required for challenge tasks.
	ChallengeID string
}

// PlannedTask is a validated task ready to be stored, with its XP value frozen.
type PlannedTask struct {
	Kind          TaskKind
	Title         string
	Category      Category
	Difficulty    Difficulty
	XPValue       int
	HabitInterval HabitInterval
	RoutineID     string
	Participants  []string
	ChallengeID   string
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", errors.New("title is required")
	}
	return t, nil
}

// Plan validates in against the creator's state and computes the task XP.
func (in CreateTaskInput) Plan(userID string, state *UserState) (PlannedTask, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return PlannedTask{}, err
	}
	if !in.Kind.IsValid() {
		return PlannedTask{}, fmt.Errorf("invalid task kind: %q", in.Kind)
	}
	if !in.Difficulty.IsValid() {
		return PlannedTask{}, fmt.Errorf("invalid difficulty: %d", in.Difficulty)
	}
	cat := in.Category
	if !cat.IsValid() {
		cat = DefaultCategory
	}

	overall := 1
	catLevel := 1
	if state != nil {
		overall = OverallLevelInfo(state.Categories).Level
		catLevel = normalizeProgress(state.Categories[cat]).Level
	}
	if err := CanUseDifficulty(overall, in.Difficulty); err != nil {
		return PlannedTask{}, err
	}
	xp, err := CalculateXP(in.Difficulty, catLevel)
	if err != nil {
		return PlannedTask{}, err
	}

	p := PlannedTask{
		Kind:       in.Kind,
		Title:      title,
		Category:   cat,
		Difficulty: in.Difficulty,
		XPValue:    xp,
	}
	switch in.Kind {
	case TaskKindHabit:
		interval := in.HabitInterval
		if interval == "" {
			interval = HabitIntervalDaily
		}
		if !interval.IsValid() {
			return PlannedTask{}, ValidationError{Field: "habit interval", Reason: fmt.Sprintf("unknown value %q", in.HabitInterval)}
		}
		p.HabitInterval = interval
	case TaskKindRoutine:
		p.RoutineID = strings.TrimSpace(in.RoutineID)
		p.Participants = uniqueParticipants(userID, in.Participants)
	case TaskKindChallenge:
		p.ChallengeID = strings.TrimSpace(in.ChallengeID)
		if p.ChallengeID == "" {
			return PlannedTask{}, ValidationError{Field: "challenge id", Reason: "is required"}
		}
	}
	return p, nil
}

// uniqueParticipants always includes the creator, first, and drops blanks and duplicates.
func uniqueParticipants(creator string, in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range append([]string{creator}, in...) {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
