package engine

import (
	"fmt"
	"strings"
	"time"
)

// HabitInterval is how often a habit comes back after being completed.
type HabitInterval string

const (
	HabitIntervalDaily   HabitInterval = "daily"
	HabitIntervalWeekly  HabitInterval = "weekly"
	HabitIntervalMonthly HabitInterval = "monthly"
)

func (h HabitInterval) IsValid() bool {
	switch h {
	case HabitIntervalDaily, HabitIntervalWeekly, HabitIntervalMonthly:
		return true
	default:
		return false
	}
}

func ParseHabitInterval(input string) (HabitInterval, error) {
	h := HabitInterval(strings.TrimSpace(strings.ToLower(input)))
	if h == "" {
		return HabitIntervalDaily, nil
	}
	if !h.IsValid() {
		return "", ValidationError{Field: "habit interval", Reason: fmt.Sprintf("unknown value %q", input)}
	}
	return h, nil
}

// NextDueDate returns the start of the day on which a habit completed at now is due again.
// Due dates are aligned to local midnight so a daily habit done late in the evening is back the
// next morning.
func NextDueDate(now time.Time, interval HabitInterval) (time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch interval {
	case HabitIntervalDaily:
		return day.AddDate(0, 0, 1), nil
	case HabitIntervalWeekly:
		return day.AddDate(0, 0, 7), nil
	case HabitIntervalMonthly:
		return day.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, ValidationError{Field: "habit interval", Reason: fmt.Sprintf("unknown value %q", interval)}
	}
}

// IsDue reports whether the habit is available at now. Habits without a due date are always due.
func (h HabitTask) IsDue(now time.Time) bool {
	return h.DueDate == nil || !h.DueDate.After(now)
}
