package engine

import (
	"fmt"
	"strings"
	"time"
)

type TaskKind string

const (
	TaskKindNormal    TaskKind = "normal"
	TaskKindHabit     TaskKind = "habit"
	TaskKindRoutine   TaskKind = "routine"
	TaskKindChallenge TaskKind = "challenge"
)

func (k TaskKind) IsValid() bool {
	switch k {
	case TaskKindNormal, TaskKindHabit, TaskKindRoutine, TaskKindChallenge:
		return true
	default:
		return false
	}
}

func ParseTaskKind(input string) (TaskKind, error) {
	k := TaskKind(strings.TrimSpace(strings.ToLower(input)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid task kind: %q", input)
	}
	return k, nil
}

// DayKey is the per-day bucket used for routine completions.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Task holds the fields shared by every task kind.
type Task struct {
	ID         string
	Title      string
	Category   Category
	Difficulty Difficulty
	XPValue    int
	CreatedAt  time.Time
}

type NormalTask struct {
	Task
	DueDate *time.Time
}

type HabitTask struct {
	Task
	Interval      HabitInterval
	DueDate       *time.Time
	LastCompleted *time.Time
}

type RoutineCompletion struct {
	CompletedBy string
	CompletedAt time.Time
}

// RoutineTask is shared by Participants; it is done for a day once every participant completed it.
type RoutineTask struct {
	Task
	RoutineID    string
	Participants []string
	Completions  map[string][]RoutineCompletion
	// IsCompleted reports whether the viewing user completed it today.
	IsCompleted bool
}

// ChallengeTask recurs: completion flags it and it stays listed until reset.
type ChallengeTask struct {
	Task
	ChallengeID   string
	IsCompleted   bool
	LastCompleted *time.Time
}

// TaskRef is a task of any kind.
type TaskRef interface {
	Kind() TaskKind
	Info() Task
	isTaskRef()
}

func (NormalTask) Kind() TaskKind    { return TaskKindNormal }
func (HabitTask) Kind() TaskKind     { return TaskKindHabit }
func (RoutineTask) Kind() TaskKind   { return TaskKindRoutine }
func (ChallengeTask) Kind() TaskKind { return TaskKindChallenge }

func (t NormalTask) Info() Task    { return t.Task }
func (t HabitTask) Info() Task     { return t.Task }
func (t RoutineTask) Info() Task   { return t.Task }
func (t ChallengeTask) Info() Task { return t.Task }

func (NormalTask) isTaskRef()    {}
func (HabitTask) isTaskRef()     {}
func (RoutineTask) isTaskRef()   {}
func (ChallengeTask) isTaskRef() {}

// HasParticipant reports whether userID shares this routine.
func (t RoutineTask) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// CompletedBy reports whether userID has an entry for day.
func (t RoutineTask) CompletedBy(userID string, day string) bool {
	for _, c := range t.Completions[day] {
		if c.CompletedBy == userID {
			return true
		}
	}
	return false
}

// DoneForDay reports whether every participant has completed the routine on day.
func (t RoutineTask) DoneForDay(day string) bool {
	if len(t.Participants) == 0 {
		return false
	}
	done := 0
	for _, p := range t.Participants {
		if t.CompletedBy(p, day) {
			done++
		}
	}
	return done >= len(t.Participants)
}

// ActiveTaskCache is the client-held view of the user's open tasks.
type ActiveTaskCache struct {
	Normal    []NormalTask
	Habit     []HabitTask
	Routine   []RoutineTask
	Challenge []ChallengeTask
}

// Len returns the number of tasks across all kinds.
func (c ActiveTaskCache) Len() int {
	return len(c.Normal) + len(c.Habit) + len(c.Routine) + len(c.Challenge)
}

// Find looks a task up by kind and id.
func (c ActiveTaskCache) Find(kind TaskKind, id string) (TaskRef, bool) {
	switch kind {
	case TaskKindNormal:
		if i := indexOf(c.Normal, id); i >= 0 {
			return c.Normal[i], true
		}
	case TaskKindHabit:
		if i := indexOf(c.Habit, id); i >= 0 {
			return c.Habit[i], true
		}
	case TaskKindRoutine:
		if i := indexOf(c.Routine, id); i >= 0 {
			return c.Routine[i], true
		}
	case TaskKindChallenge:
		if i := indexOf(c.Challenge, id); i >= 0 {
			return c.Challenge[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy. Nil slices and maps stay nil so clones compare equal to the original.
func (c ActiveTaskCache) Clone() ActiveTaskCache {
	out := ActiveTaskCache{
		Normal:    cloneSlice(c.Normal, func(t NormalTask) NormalTask { t.DueDate = cloneTime(t.DueDate); return t }),
		Habit:     cloneSlice(c.Habit, cloneHabit),
		Routine:   cloneSlice(c.Routine, cloneRoutine),
		Challenge: cloneSlice(c.Challenge, func(t ChallengeTask) ChallengeTask { t.LastCompleted = cloneTime(t.LastCompleted); return t }),
	}
	return out
}

func cloneHabit(t HabitTask) HabitTask {
	t.DueDate = cloneTime(t.DueDate)
	t.LastCompleted = cloneTime(t.LastCompleted)
	return t
}

func cloneRoutine(t RoutineTask) RoutineTask {
	t.Participants = cloneSlice(t.Participants, func(s string) string { return s })
	if t.Completions != nil {
		m := make(map[string][]RoutineCompletion, len(t.Completions))
		for day, list := range t.Completions {
			m[day] = cloneSlice(list, func(rc RoutineCompletion) RoutineCompletion { return rc })
		}
		t.Completions = m
	}
	return t
}

func cloneSlice[T any](in []T, cp func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i := range in {
		out[i] = cp(in[i])
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func indexOf[T TaskRef](list []T, id string) int {
	for i := range list {
		if list[i].Info().ID == id {
			return i
		}
	}
	return -1
}

func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
