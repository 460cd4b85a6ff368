package storage

import "time"

type User struct {
	ID                  string
	Prestige            int
	CurrentStreak       int
	BestStreak          int
	LastActiveDay       *string
	TotalTasksCompleted int
	RoutinesCompleted   int
}

type CategoryRow struct {
	Category string
	Level    int
	XP       int
}

type Task struct {
	ID               string
	UserID           string
	Kind             string
	Title            string
	Category         string
	Difficulty       int
	XPValue          int
	Status           string
	CreatedAt        time.Time
	CompletedAt      *time.Time
	DueDate          *time.Time
	HabitInterval    *string
	RoutineID        *string
	ChallengeID      *string
	IsCompleted      bool
	LastCompleted    *time.Time
	LastCompletedDay *string
}

type RoutineCompletion struct {
	TaskID      string
	DayKey      string
	CompletedBy string
	CompletedAt time.Time
}

type EarnedBadge struct {
	BadgeID  string
	EarnedAt time.Time
}

const (
	statusPending = "pending"
	statusDone    = "done"
)
