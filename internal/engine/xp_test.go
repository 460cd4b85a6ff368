package engine

import "testing"

func TestXPForNextLevel(t *testing.T) {
	cases := map[int]int{
		0: 100,
		1: 100,
		2: 283,
		3: 520,
		4: 800,
	}
	for level, want := range cases {
		if got := XPForNextLevel(level); got != want {
			t.Fatalf("XPForNextLevel(%d)=%d, want %d", level, got, want)
		}
	}
}

func TestXPBoundaries(t *testing.T) {
	if got := LevelThreshold(1); got != 0 {
		t.Fatalf("LevelThreshold(1)=%d, want 0", got)
	}
	l3 := LevelThreshold(3)
	if l3 != 383 {
		t.Fatalf("LevelThreshold(3)=%d, want 383", l3)
	}

	info := LevelInfoForXP(l3 - 1)
	if info.Level != 2 || info.CurrentLevelXP != 282 || info.NextLevelXP != 283 {
		t.Fatalf("LevelInfoForXP(l3-1)=%+v, want level 2 with 282/283", info)
	}

	info = LevelInfoForXP(l3)
	if info.Level != 3 || info.CurrentLevelXP != 0 || info.Progress != 0 {
		t.Fatalf("LevelInfoForXP(l3)=%+v, want level 3 with no progress", info)
	}

	l7 := LevelThreshold(7)
	if got := LevelInfoForXP(l7).Level; got != 7 {
		t.Fatalf("LevelInfoForXP(l7).Level=%d, want 7", got)
	}
}

func TestLevelInfoForXPNegativeIsLevelOne(t *testing.T) {
	info := LevelInfoForXP(-50)
	if info.Level != 1 || info.CurrentLevelXP != 0 {
		t.Fatalf("LevelInfoForXP(-50)=%+v, want level 1 with 0 xp", info)
	}
}

func TestLevelIsMonotonicAndProgressBounded(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 20000; xp += 7 {
		info := LevelInfoForXP(xp)
		if info.Level < prev {
			t.Fatalf("level went down at %d xp: %d < %d", xp, info.Level, prev)
		}
		if info.Progress < 0 || info.Progress > 1 {
			t.Fatalf("progress out of range at %d xp: %f", xp, info.Progress)
		}
		if info.CurrentLevelXP >= info.NextLevelXP {
			t.Fatalf("current %d not below next %d at %d xp", info.CurrentLevelXP, info.NextLevelXP, xp)
		}
		prev = info.Level
	}
}

func TestAddXPCarriesOverflow(t *testing.T) {
	cp := AddXP(CategoryProgress{Level: 1, XP: 90}, 300)
	// 90+300 = 390: 100 to reach level 2, 283 to reach level 3, 7 left.
	if cp.Level != 3 || cp.XP != 7 {
		t.Fatalf("AddXP=%+v, want level 3 xp 7", cp)
	}
	if got := cp.TotalXP(); got != 390 {
		t.Fatalf("TotalXP=%d, want 390", got)
	}

	same := AddXP(CategoryProgress{Level: 2, XP: 10}, 0)
	if same.Level != 2 || same.XP != 10 {
		t.Fatalf("AddXP with 0 changed progress: %+v", same)
	}
	same = AddXP(CategoryProgress{Level: 2, XP: 10}, -40)
	if same.Level != 2 || same.XP != 10 {
		t.Fatalf("AddXP with negative amount changed progress: %+v", same)
	}
}

func TestCategoryLevelProgress(t *testing.T) {
	if got := CategoryLevelProgress(50, 1); got != 0.5 {
		t.Fatalf("CategoryLevelProgress(50, 1)=%f, want 0.5", got)
	}
	if got := CategoryLevelProgress(500, 1); got != 1 {
		t.Fatalf("CategoryLevelProgress clamps to 1, got %f", got)
	}
	if got := CategoryLevelProgress(-5, 1); got != 0 {
		t.Fatalf("CategoryLevelProgress clamps to 0, got %f", got)
	}
}

func TestCalculateXP(t *testing.T) {
	cases := []struct {
		d     Difficulty
		level int
		want  int
	}{
		{DifficultyTrivial, 1, 10},
		{DifficultyMedium, 1, 50},
		{DifficultyEpic, 5, 300},
		{DifficultyEasy, 0, 20},
	}
	for _, c := range cases {
		got, err := CalculateXP(c.d, c.level)
		if err != nil {
			t.Fatalf("CalculateXP(%d, %d): %v", c.d, c.level, err)
		}
		if got != c.want {
			t.Fatalf("CalculateXP(%d, %d)=%d, want %d", c.d, c.level, got, c.want)
		}
	}
	if _, err := CalculateXP(Difficulty(9), 1); err == nil {
		t.Fatalf("expected error for invalid difficulty")
	}
}

func TestDifficultyGates(t *testing.T) {
	if got := MaxDifficultyForLevel(1); got != DifficultyEasy {
		t.Fatalf("MaxDifficultyForLevel(1)=%d, want %d", got, DifficultyEasy)
	}
	if got := MaxDifficultyForLevel(10); got != DifficultyEpic {
		t.Fatalf("MaxDifficultyForLevel(10)=%d, want %d", got, DifficultyEpic)
	}
	err := CanUseDifficulty(2, DifficultyHard)
	gate, ok := err.(DifficultyGateError)
	if !ok {
		t.Fatalf("expected DifficultyGateError, got %v", err)
	}
	if gate.RequiredLevel != 6 || gate.CurrentLevel != 2 {
		t.Fatalf("unexpected gate error: %+v", gate)
	}
	if got := MaxDifficultyForLevel(5); got != DifficultyMedium {
		t.Fatalf("MaxDifficultyForLevel(5)=%d, want %d", got, DifficultyMedium)
	}
	if err := CanUseDifficulty(6, DifficultyHard); err != nil {
		t.Fatalf("CanUseDifficulty(6, hard): %v", err)
	}
	if _, ok := CanUseDifficulty(20, Difficulty(9)).(ValidationError); !ok {
		t.Fatalf("expected ValidationError for unknown difficulty")
	}
}
