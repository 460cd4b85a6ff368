package engine

import (
	"testing"
	"time"
)

func TestOverallLevelSumsCategoryTotals(t *testing.T) {
	cats := map[Category]CategoryProgress{
		CategoryPhysical: {Level: 2, XP: 0},  // 100 total
		CategoryMental:   {Level: 2, XP: 50}, // 150 total
	}
	info := OverallLevelInfo(cats)
	if info.Level != 2 || info.CurrentLevelXP != 150 {
		t.Fatalf("OverallLevelInfo=%+v, want level 2 with 150 xp", info)
	}
}

func TestOverallLevelIsOrderIndependent(t *testing.T) {
	want := OverallLevelInfo(map[Category]CategoryProgress{
		CategoryPhysical:  {Level: 3, XP: 12},
		CategoryCareer:    {Level: 1, XP: 99},
		CategoryFinancial: {Level: 4, XP: 300},
	})
	for i := 0; i < 50; i++ {
		got := OverallLevelInfo(map[Category]CategoryProgress{
			CategoryFinancial: {Level: 4, XP: 300},
			CategoryPhysical:  {Level: 3, XP: 12},
			CategoryCareer:    {Level: 1, XP: 99},
		})
		if got != want {
			t.Fatalf("iteration %d: %+v != %+v", i, got, want)
		}
	}
}

func TestOverallLevelOfEmptyUserIsOne(t *testing.T) {
	if got := OverallLevelInfo(nil); got.Level != 1 || got.Progress != 0 {
		t.Fatalf("OverallLevelInfo(nil)=%+v", got)
	}
	var u UserState
	if o := u.Overall(); o.Level != 1 || o.XP != 0 {
		t.Fatalf("Overall()=%+v", o)
	}
}

func TestCategorySummaries(t *testing.T) {
	rows := CategorySummaries(map[Category]CategoryProgress{
		CategoryMental:  {Level: 1, XP: 25},
		Category("zen"): {Level: 2, XP: 1},
	})
	if len(rows) != len(Categories)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(Categories)+1)
	}
	if rows[0].Category != CategoryPhysical || rows[0].Level != 1 || rows[0].ToNext != 100 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Category != CategoryMental || rows[1].Progress != 0.25 || rows[1].ToNext != 75 {
		t.Fatalf("unexpected mental row: %+v", rows[1])
	}
	if last := rows[len(rows)-1]; last.Category != "zen" {
		t.Fatalf("unknown categories should come last, got %+v", last)
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"Physical": CategoryPhysical,
		" mind ":   CategoryMental,
		"study":    CategoryIntellectual,
		"money":    CategoryFinancial,
		"family":   CategoryRelationships,
	}
	for in, want := range cases {
		got, ok := ParseCategory(in)
		if !ok || got != want {
			t.Fatalf("ParseCategory(%q)=%q,%v want %q", in, got, ok, want)
		}
	}
	if got, ok := ParseCategory("astral"); ok || got != DefaultCategory {
		t.Fatalf("ParseCategory(astral)=%q,%v want default,false", got, ok)
	}
}

func TestAdvanceStreak(t *testing.T) {
	cur, best := AdvanceStreak(0, 0, "", "2025-03-14")
	if cur != 1 || best != 1 {
		t.Fatalf("first activity: %d/%d", cur, best)
	}
	cur, best = AdvanceStreak(cur, best, "2025-03-14", "2025-03-14")
	if cur != 1 || best != 1 {
		t.Fatalf("same day: %d/%d", cur, best)
	}
	cur, best = AdvanceStreak(cur, best, "2025-03-14", "2025-03-15")
	if cur != 2 || best != 2 {
		t.Fatalf("next day: %d/%d", cur, best)
	}
	cur, best = AdvanceStreak(cur, best, "2025-03-15", "2025-03-18")
	if cur != 1 || best != 2 {
		t.Fatalf("after gap: %d/%d", cur, best)
	}
	// Month boundary.
	cur, _ = AdvanceStreak(4, 4, "2025-02-28", "2025-03-01")
	if cur != 5 {
		t.Fatalf("month boundary: %d", cur)
	}
}

func TestNextDueDateIsDayAligned(t *testing.T) {
	now := time.Date(2025, 1, 31, 22, 45, 0, 0, time.UTC)
	cases := map[HabitInterval]time.Time{
		HabitIntervalDaily:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		HabitIntervalWeekly:  time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC),
		HabitIntervalMonthly: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	for interval, want := range cases {
		got, err := NextDueDate(now, interval)
		if err != nil {
			t.Fatalf("NextDueDate(%s): %v", interval, err)
		}
		if !got.Equal(want) {
			t.Fatalf("NextDueDate(%s)=%s, want %s", interval, got, want)
		}
	}
	if _, err := NextDueDate(now, "yearly"); err == nil {
		t.Fatalf("expected error for unknown interval")
	}

	due := cases[HabitIntervalDaily]
	h := HabitTask{DueDate: &due}
	if h.IsDue(now) {
		t.Fatalf("habit due tomorrow reported due today")
	}
	if !h.IsDue(now.Add(2 * time.Hour)) {
		t.Fatalf("habit not due after midnight")
	}
}
