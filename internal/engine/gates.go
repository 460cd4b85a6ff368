package engine

import "fmt"

// difficultyUnlocks lists, in ascending order, the overall level at which each difficulty opens.
var difficultyUnlocks = []struct {
	difficulty Difficulty
	level      int
}{
	{DifficultyTrivial, 1},
	{DifficultyEasy, 1},
	{DifficultyMedium, 3},
	{DifficultyHard, 6},
	{DifficultyEpic, 10},
}

// UnlockLevel returns the overall level that opens d.
func UnlockLevel(d Difficulty) (int, bool) {
	for _, u := range difficultyUnlocks {
		if u.difficulty == d {
			return u.level, true
		}
	}
	return 0, false
}

// MaxDifficultyForLevel returns the hardest difficulty open at the given overall level.
func MaxDifficultyForLevel(level int) Difficulty {
	best := DifficultyTrivial
	for _, u := range difficultyUnlocks {
		if level < u.level {
			break
		}
		best = u.difficulty
	}
	return best
}

// CanUseDifficulty reports a DifficultyGateError when the overall level has not reached d yet.
func CanUseDifficulty(level int, d Difficulty) error {
	required, ok := UnlockLevel(d)
	if !ok {
		return ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unknown difficulty %d", d)}
	}
	if level < required {
		return DifficultyGateError{Difficulty: d, RequiredLevel: required, CurrentLevel: level}
	}
	return nil
}

type DifficultyGateError struct {
	Difficulty    Difficulty
	RequiredLevel int
	CurrentLevel  int
}

func (e DifficultyGateError) Error() string {
	return fmt.Sprintf("difficulty %d unlocks at overall level %d (now %d)", e.Difficulty, e.RequiredLevel, e.CurrentLevel)
}
