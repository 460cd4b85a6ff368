package engine

import "time"

// Completion is one optimistic completion to apply to the cache.
type Completion struct {
	Kind   TaskKind
	TaskID string
	UserID string
	At     time.Time
}

// ApplyCompletion is the only transform the coordinator applies to the cache.
// It returns a new cache; c is never modified.
//
//   - normal, habit: removed
//   - challenge: flagged completed, LastCompleted stamped, kept
//   - routine: completion appended under the day key; removed only once every participant is done
func ApplyCompletion(c ActiveTaskCache, op Completion) (ActiveTaskCache, error) {
	next := c.Clone()
	switch op.Kind {
	case TaskKindNormal:
		i := indexOf(next.Normal, op.TaskID)
		if i < 0 {
			return c, ErrTaskNotFound
		}
		next.Normal = removeAt(next.Normal, i)
	case TaskKindHabit:
		i := indexOf(next.Habit, op.TaskID)
		if i < 0 {
			return c, ErrTaskNotFound
		}
		next.Habit = removeAt(next.Habit, i)
	case TaskKindChallenge:
		i := indexOf(next.Challenge, op.TaskID)
		if i < 0 {
			return c, ErrTaskNotFound
		}
		t := next.Challenge[i]
		if t.ChallengeID == "" {
			return c, ValidationError{TaskID: op.TaskID, Field: "challenge id", Reason: "is required"}
		}
		if t.IsCompleted {
			return c, ErrAlreadyCompleted
		}
		at := op.At
		t.IsCompleted = true
		t.LastCompleted = &at
		next.Challenge[i] = t
	case TaskKindRoutine:
		i := indexOf(next.Routine, op.TaskID)
		if i < 0 {
			return c, ErrTaskNotFound
		}
		t := next.Routine[i]
		if t.RoutineID == "" {
			return c, ValidationError{TaskID: op.TaskID, Field: "routine id", Reason: "is required"}
		}
		if !t.HasParticipant(op.UserID) {
			return c, ValidationError{TaskID: op.TaskID, Field: "participants", Reason: "user " + op.UserID + " is not a participant"}
		}
		day := DayKey(op.At)
		if t.CompletedBy(op.UserID, day) {
			return c, ErrAlreadyCompleted
		}
		if t.Completions == nil {
			t.Completions = map[string][]RoutineCompletion{}
		}
		t.Completions[day] = append(t.Completions[day], RoutineCompletion{CompletedBy: op.UserID, CompletedAt: op.At})
		t.IsCompleted = t.CompletedBy(op.UserID, day)
		if t.DoneForDay(day) {
			next.Routine = removeAt(next.Routine, i)
		} else {
			next.Routine[i] = t
		}
	default:
		return c, ValidationError{TaskID: op.TaskID, Field: "kind", Reason: "unknown task kind " + string(op.Kind)}
	}
	return next, nil
}

// RestoreTask puts the snapshot's version of one task back into cur, at its snapshot position.
// Other tasks in cur are left as they are.
func RestoreTask(cur, snapshot ActiveTaskCache, kind TaskKind, id string) ActiveTaskCache {
	next := cur.Clone()
	snap := snapshot.Clone()
	switch kind {
	case TaskKindNormal:
		next.Normal = restoreEntry(next.Normal, snap.Normal, id)
	case TaskKindHabit:
		next.Habit = restoreEntry(next.Habit, snap.Habit, id)
	case TaskKindRoutine:
		next.Routine = restoreEntry(next.Routine, snap.Routine, id)
	case TaskKindChallenge:
		next.Challenge = restoreEntry(next.Challenge, snap.Challenge, id)
	}
	return next
}

func restoreEntry[T TaskRef](cur, snap []T, id string) []T {
	if i := indexOf(cur, id); i >= 0 {
		cur = removeAt(cur, i)
	}
	j := indexOf(snap, id)
	if j < 0 {
		return cur
	}
	if j > len(cur) {
		j = len(cur)
	}
	out := make([]T, 0, len(cur)+1)
	out = append(out, cur[:j]...)
	out = append(out, snap[j])
	return append(out, cur[j:]...)
}
