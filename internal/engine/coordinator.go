package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CompleteResult describes a committed completion.
type CompleteResult struct {
	TaskID string
	Kind   TaskKind
	// Refreshed is false when the authoritative refetch failed; the cache is then left invalidated.
	Refreshed bool
	Badges    []string
}

// Coordinator applies task completions to the active-task cache optimistically and reconciles
// with the gateway. At most one completion per task id is in flight.
type Coordinator struct {
	gateway      Gateway
	cache        CacheStore
	achievements *Achievements
	log          *zap.Logger
	now          func() time.Time

	mu        sync.Mutex
	inflight  map[string]bool
	completed map[string]bool
	rev       uint64
	// applied counts optimistic writes. refreshSeq numbers refetches; written is the newest one
	// that reached the cache.
	applied    uint64
	refreshSeq uint64
	written    uint64
}

type CoordinatorOption func(*Coordinator)

func WithLogger(log *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if log != nil {
			c.log = log
		}
	}
}

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAchievements runs badge evaluation after every committed completion.
func WithAchievements(a *Achievements) CoordinatorOption {
	return func(c *Coordinator) { c.achievements = a }
}

func NewCoordinator(gateway Gateway, cache CacheStore, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		gateway:   gateway,
		cache:     cache,
		log:       zap.NewNop(),
		now:       time.Now,
		inflight:  map[string]bool{},
		completed: map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteTask completes one task.
//
// The cache is snapshotted, the optimistic transform applied, and the kind-specific gateway call
// dispatched. On failure the snapshot is restored and a PersistenceError returned. On success the
// cache is refetched from the gateway and badges are re-evaluated.
func (c *Coordinator) CompleteTask(ctx context.Context, userID, taskID string, kind TaskKind) (*CompleteResult, error) {
	if userID == "" {
		return nil, ValidationError{TaskID: taskID, Field: "user id", Reason: "is required"}
	}
	if taskID == "" {
		return nil, ValidationError{Field: "task id", Reason: "is required"}
	}
	if !kind.IsValid() {
		return nil, ValidationError{TaskID: taskID, Field: "kind", Reason: "unknown task kind " + string(kind)}
	}

	at := c.now()
	key := completedKey(kind, userID, taskID, at)

	c.mu.Lock()
	if c.inflight[taskID] {
		c.mu.Unlock()
		return nil, ErrCompletionInFlight
	}
	if c.completed[key] {
		c.mu.Unlock()
		return nil, ErrAlreadyCompleted
	}
	snapshot := c.cache.Read()
	ref, ok := snapshot.Find(kind, taskID)
	if !ok {
		c.mu.Unlock()
		return nil, ErrTaskNotFound
	}
	next, err := ApplyCompletion(snapshot, Completion{Kind: kind, TaskID: taskID, UserID: userID, At: at})
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.inflight[taskID] = true
	c.cache.Write(next)
	c.rev++
	c.applied++
	rev := c.rev
	c.mu.Unlock()

	c.log.Debug("optimistic completion applied", zap.String("task", taskID), zap.String("kind", string(kind)))

	if err := c.dispatch(ctx, userID, ref); err != nil {
		c.rollback(snapshot, rev, kind, taskID)
		c.log.Warn("completion rolled back", zap.String("task", taskID), zap.String("kind", string(kind)), zap.Error(err))
		return nil, PersistenceError{TaskID: taskID, Kind: kind, Err: err}
	}

	c.mu.Lock()
	delete(c.inflight, taskID)
	if kind != TaskKindChallenge {
		c.completed[key] = true
	}
	c.mu.Unlock()

	res := &CompleteResult{TaskID: taskID, Kind: kind}
	if err := c.Refresh(ctx, userID); err != nil {
		c.log.Warn("refetch after completion failed", zap.String("task", taskID), zap.Error(err))
	} else {
		res.Refreshed = true
	}
	if c.achievements != nil {
		res.Badges = c.achievements.Evaluate(ctx, userID).NewlyAwarded
	}
	return res, nil
}

// Refresh invalidates the cache and replaces it with the gateway's active tasks.
// On error the cache keeps its last contents and stays invalidated. A refetch that started before
// a newer refetch or an optimistic write is discarded.
func (c *Coordinator) Refresh(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.refreshSeq++
	seq, applied := c.refreshSeq, c.applied
	c.cache.Invalidate()
	c.mu.Unlock()

	fresh, err := c.gateway.ActiveTasks(ctx, userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.written || applied != c.applied {
		c.log.Debug("discarding outdated refetch", zap.String("user", userID), zap.Uint64("seq", seq))
		return nil
	}
	c.cache.Write(fresh)
	c.written = seq
	c.rev++
	return nil
}

// completedKey identifies a committed completion. Habits and routines recur, so their keys carry
// the day; routines also carry the user since every participant completes them.
func completedKey(kind TaskKind, userID, taskID string, at time.Time) string {
	switch kind {
	case TaskKindHabit, TaskKindRoutine:
		return string(kind) + ":" + userID + ":" + taskID + "@" + DayKey(at)
	default:
		return string(kind) + ":" + userID + ":" + taskID
	}
}

func (c *Coordinator) dispatch(ctx context.Context, userID string, ref TaskRef) error {
	switch t := ref.(type) {
	case NormalTask:
		return c.gateway.CompleteNormalTask(ctx, userID, t.ID)
	case HabitTask:
		return c.gateway.CompleteHabitTask(ctx, userID, t.ID)
	case RoutineTask:
		return c.gateway.CompleteRoutineTask(ctx, userID, t.ID, t.RoutineID)
	case ChallengeTask:
		return c.gateway.CompleteChallengeTask(ctx, userID, t.ID, t.ChallengeID, t)
	default:
		return ValidationError{Field: "kind", Reason: "unsupported task reference"}
	}
}

// rollback restores the snapshot. If another write landed after ours, only this task's entry is
// restored so the other write survives.
func (c *Coordinator) rollback(snapshot ActiveTaskCache, rev uint64, kind TaskKind, taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, taskID)
	if c.rev == rev {
		c.cache.Write(snapshot)
	} else {
		c.cache.Write(RestoreTask(c.cache.Read(), snapshot, kind, taskID))
	}
	c.rev++
}
