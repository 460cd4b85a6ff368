package engine

import (
	"fmt"
	"math"
)

const (
	// XPCurveCoef scales the per-level requirement: XP_next = 100 * (Level^1.5)
	XPCurveCoef = 100.0

	// TaskBaseXP is the base XP used with difficulty multipliers.
	TaskBaseXP = 10.0

	// CategoryLevelBonusRate is the per-category-level bonus rate (5% per level above 1).
	CategoryLevelBonusRate = 0.05

	// maxLevel bounds curve walks; no reachable XP total gets near it.
	maxLevel = 1_000_000
)

// LevelInfo describes where an XP total sits on the curve.
type LevelInfo struct {
	Level          int
	CurrentLevelXP int
	NextLevelXP    int
	Progress       float64
}

// XPForNextLevel returns the XP needed to go from level to level+1.
// Levels below 1 are treated as level 1.
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	req := XPCurveCoef * math.Pow(float64(level), 1.5)
	// Use ceil to avoid making thresholds easier due to floating point rounding.
	return int(math.Ceil(req))
}

// LevelThreshold returns the cumulative XP at which level is reached. Level 1 requires 0 XP.
func LevelThreshold(level int) int {
	total := 0
	for l := 1; l < level && l < maxLevel; l++ {
		total += XPForNextLevel(l)
	}
	return total
}

// LevelInfoForXP maps a cumulative XP total to its level and the progress inside that level.
// A total exactly on a threshold belongs to the higher level.
func LevelInfoForXP(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	floor := 0
	for level < maxLevel {
		next := XPForNextLevel(level)
		if totalXP < floor+next {
			break
		}
		floor += next
		level++
	}

	cur := totalXP - floor
	next := XPForNextLevel(level)
	return LevelInfo{
		Level:          level,
		CurrentLevelXP: cur,
		NextLevelXP:    next,
		Progress:       ratio(float64(cur), float64(next)),
	}
}

// AddXP applies amount to a category, carrying overflow into as many levels as it covers.
func AddXP(cp CategoryProgress, amount int) CategoryProgress {
	cp = normalizeProgress(cp)
	if amount <= 0 {
		return cp
	}
	cp.XP += amount
	for cp.Level < maxLevel {
		need := XPForNextLevel(cp.Level)
		if cp.XP < need {
			break
		}
		cp.XP -= need
		cp.Level++
	}
	return cp
}

// TotalXP returns the cumulative XP a category represents.
func (cp CategoryProgress) TotalXP() int {
	cp = normalizeProgress(cp)
	return LevelThreshold(cp.Level) + cp.XP
}

func normalizeProgress(cp CategoryProgress) CategoryProgress {
	if cp.Level < 1 {
		cp.Level = 1
	}
	if cp.XP < 0 {
		cp.XP = 0
	}
	return cp
}

// ratio returns num/den clamped to [0,1]; a non-positive denominator yields 0.
func ratio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(num) || math.IsNaN(den) {
		return 0
	}
	r := num / den
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func difficultyMultiplier(d Difficulty) (float64, error) {
	switch d {
	case DifficultyTrivial:
		return 1.0, nil
	case DifficultyEasy:
		return 2.0, nil
	case DifficultyMedium:
		return 5.0, nil
	case DifficultyHard:
		return 10.0, nil
	case DifficultyEpic:
		return 25.0, nil
	default:
		return 0, fmt.Errorf("invalid difficulty: %d", d)
	}
}

// CalculateXP computes task XP and returns an integer XP value.
// The value is intended to be frozen at task creation time.
func CalculateXP(d Difficulty, categoryLevel int) (int, error) {
	mult, err := difficultyMultiplier(d)
	if err != nil {
		return 0, err
	}
	if categoryLevel < 1 {
		categoryLevel = 1
	}

	base := TaskBaseXP * mult
	bonus := 1.0 + float64(categoryLevel-1)*CategoryLevelBonusRate
	xp := base * bonus
	// Round to nearest integer for stable results.
	return int(math.Round(xp)), nil
}
