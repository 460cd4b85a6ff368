package engine

import "time"

// AdvanceStreak returns the streak after activity on today, given the last active day.
// Same day keeps the streak, the following day extends it, any gap restarts it at 1.
// Days are DayKey strings; an unparsable lastActive counts as a gap.
func AdvanceStreak(current, best int, lastActive, today string) (int, int) {
	switch {
	case lastActive == today && current > 0:
	case isNextDay(lastActive, today):
		current++
	default:
		current = 1
	}
	if current > best {
		best = current
	}
	return current, best
}

func isNextDay(prev, day string) bool {
	p, err := time.Parse("2006-01-02", prev)
	if err != nil {
		return false
	}
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return false
	}
	return p.AddDate(0, 0, 1).Equal(d)
}
