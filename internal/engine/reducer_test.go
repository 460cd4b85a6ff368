package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleCache() ActiveTaskCache {
	return ActiveTaskCache{
		Normal: []NormalTask{
			{Task: Task{ID: "n1", Title: "Run 5k", Category: CategoryPhysical, Difficulty: DifficultyEasy, XPValue: 20}},
			{Task: Task{ID: "n2", Title: "Pay rent", Category: CategoryFinancial, Difficulty: DifficultyTrivial, XPValue: 10}},
			{Task: Task{ID: "n3", Title: "Call mom", Category: CategoryRelationships, Difficulty: DifficultyTrivial, XPValue: 10}},
		},
		Habit: []HabitTask{
			{Task: Task{ID: "h1", Title: "Meditate", Category: CategoryMental, Difficulty: DifficultyTrivial, XPValue: 10}, Interval: HabitIntervalDaily},
		},
		Routine: []RoutineTask{
			{
				Task:         Task{ID: "r1", Title: "Family dinner", Category: CategoryRelationships, Difficulty: DifficultyEasy, XPValue: 20},
				RoutineID:    "rt-1",
				Participants: []string{"alice", "bob", "carol"},
			},
		},
		Challenge: []ChallengeTask{
			{Task: Task{ID: "c1", Title: "No sugar", Category: CategoryPhysical, Difficulty: DifficultyMedium, XPValue: 50}, ChallengeID: "ch-1"},
		},
	}
}

func ids[T TaskRef](list []T) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.Info().ID)
	}
	return out
}

func TestApplyCompletionDoesNotMutateInput(t *testing.T) {
	in := sampleCache()
	before := in.Clone()

	for _, op := range []Completion{
		{Kind: TaskKindNormal, TaskID: "n2", UserID: "alice", At: testNow},
		{Kind: TaskKindHabit, TaskID: "h1", UserID: "alice", At: testNow},
		{Kind: TaskKindRoutine, TaskID: "r1", UserID: "alice", At: testNow},
		{Kind: TaskKindChallenge, TaskID: "c1", UserID: "alice", At: testNow},
	} {
		_, err := ApplyCompletion(in, op)
		require.NoError(t, err, op.TaskID)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Fatalf("input changed (-before +after):\n%s", diff)
	}
}

func TestApplyCompletionRemovesNormalAndHabit(t *testing.T) {
	next, err := ApplyCompletion(sampleCache(), Completion{Kind: TaskKindNormal, TaskID: "n2", UserID: "alice", At: testNow})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n3"}, ids(next.Normal))

	next, err = ApplyCompletion(next, Completion{Kind: TaskKindHabit, TaskID: "h1", UserID: "alice", At: testNow})
	require.NoError(t, err)
	assert.Empty(t, next.Habit)

	_, err = ApplyCompletion(next, Completion{Kind: TaskKindNormal, TaskID: "n2", UserID: "alice", At: testNow})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestApplyCompletionChallenge(t *testing.T) {
	next, err := ApplyCompletion(sampleCache(), Completion{Kind: TaskKindChallenge, TaskID: "c1", UserID: "alice", At: testNow})
	require.NoError(t, err)
	require.Len(t, next.Challenge, 1)
	assert.True(t, next.Challenge[0].IsCompleted)
	require.NotNil(t, next.Challenge[0].LastCompleted)
	assert.True(t, next.Challenge[0].LastCompleted.Equal(testNow))

	again, err := ApplyCompletion(next, Completion{Kind: TaskKindChallenge, TaskID: "c1", UserID: "alice", At: testNow})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	if diff := cmp.Diff(next, again); diff != "" {
		t.Fatalf("rejected completion changed the cache:\n%s", diff)
	}
}

func TestApplyCompletionRoutineWaitsForEveryParticipant(t *testing.T) {
	day := DayKey(testNow)
	c := sampleCache()

	c, err := ApplyCompletion(c, Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "alice", At: testNow})
	require.NoError(t, err)
	require.Len(t, c.Routine, 1)
	assert.True(t, c.Routine[0].CompletedBy("alice", day))
	assert.True(t, c.Routine[0].IsCompleted)

	_, err = ApplyCompletion(c, Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "alice", At: testNow.Add(time.Hour)})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	c, err = ApplyCompletion(c, Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "bob", At: testNow})
	require.NoError(t, err)
	require.Len(t, c.Routine, 1)
	assert.Len(t, c.Routine[0].Completions[day], 2)

	c, err = ApplyCompletion(c, Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "carol", At: testNow})
	require.NoError(t, err)
	assert.Empty(t, c.Routine)
}

func TestApplyCompletionRoutineNextDayIsNew(t *testing.T) {
	c, err := ApplyCompletion(sampleCache(), Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "alice", At: testNow})
	require.NoError(t, err)

	c, err = ApplyCompletion(c, Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "alice", At: testNow.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, c.Routine[0].Completions, 2)
}

func TestApplyCompletionValidation(t *testing.T) {
	c := sampleCache()
	c.Routine[0].RoutineID = ""
	c.Challenge[0].ChallengeID = ""

	var verr ValidationError
	_, err := ApplyCompletion(c, Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "alice", At: testNow})
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "routine id", verr.Field)

	_, err = ApplyCompletion(c, Completion{Kind: TaskKindChallenge, TaskID: "c1", UserID: "alice", At: testNow})
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "challenge id", verr.Field)

	_, err = ApplyCompletion(sampleCache(), Completion{Kind: TaskKindRoutine, TaskID: "r1", UserID: "dave", At: testNow})
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "participants", verr.Field)

	_, err = ApplyCompletion(sampleCache(), Completion{Kind: "quest", TaskID: "n1", UserID: "alice", At: testNow})
	assert.True(t, errors.As(err, &verr), "got %v", err)
}

func TestRestoreTaskKeepsOtherChanges(t *testing.T) {
	snapshot := sampleCache()
	cur := sampleCache()
	cur.Normal = cur.Normal[1:] // n1 removed optimistically
	cur.Normal = append(cur.Normal, NormalTask{Task: Task{ID: "n4", Title: "New"}})
	cur.Habit = nil

	got := RestoreTask(cur, snapshot, TaskKindNormal, "n1")
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, ids(got.Normal))
	assert.Nil(t, got.Habit)
}

func TestRestoreTaskReplacesModifiedEntry(t *testing.T) {
	snapshot := sampleCache()
	cur, err := ApplyCompletion(snapshot, Completion{Kind: TaskKindChallenge, TaskID: "c1", UserID: "alice", At: testNow})
	require.NoError(t, err)

	got := RestoreTask(cur, snapshot, TaskKindChallenge, "c1")
	if diff := cmp.Diff(snapshot, got); diff != "" {
		t.Fatalf("restore mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := sampleCache()
	due := testNow
	c.Habit[0].DueDate = &due
	cp := c.Clone()

	cp.Routine[0].Participants[0] = "mallory"
	*cp.Habit[0].DueDate = testNow.Add(time.Hour)

	assert.Equal(t, "alice", c.Routine[0].Participants[0])
	assert.True(t, c.Habit[0].DueDate.Equal(testNow))
	if diff := cmp.Diff(ActiveTaskCache{}, ActiveTaskCache{}.Clone()); diff != "" {
		t.Fatalf("empty clone differs:\n%s", diff)
	}
}

func TestMemoryCache(t *testing.T) {
	m := NewMemoryCache(sampleCache())
	assert.False(t, m.Stale())

	m.Invalidate()
	assert.True(t, m.Stale())
	assert.Equal(t, 6, m.Read().Len())

	view := m.Read()
	view.Normal = nil
	assert.Len(t, m.Read().Normal, 3)

	m.Write(ActiveTaskCache{})
	assert.False(t, m.Stale())
	assert.Zero(t, m.Read().Len())
}
