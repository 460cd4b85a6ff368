package engine

import (
	"context"
	"sync"
)

// Gateway is the authoritative store. Each completion call is atomic; side effects such as XP awards
// and stats counters happen inside it, never in the engine.
type Gateway interface {
	UserAggregate(ctx context.Context, userID string) (*UserState, error)
	ActiveTasks(ctx context.Context, userID string) (ActiveTaskCache, error)

	CompleteNormalTask(ctx context.Context, userID, taskID string) error
	CompleteHabitTask(ctx context.Context, userID, taskID string) error
	CompleteRoutineTask(ctx context.Context, userID, taskID, routineID string) error
	CompleteChallengeTask(ctx context.Context, userID, taskID, challengeID string, task ChallengeTask) error

	AwardXP(ctx context.Context, userID string, xp map[Category]int, source XPSource) error
	SaveEarnedBadges(ctx context.Context, userID string, badges []UserBadge) error
}

// CacheStore holds the active-task view shown by the host UI.
// Only the coordinator writes to it.
type CacheStore interface {
	Read() ActiveTaskCache
	Write(ActiveTaskCache)
	Invalidate()
}

// MemoryCache is a CacheStore kept in process memory.
type MemoryCache struct {
	mu    sync.RWMutex
	state ActiveTaskCache
	stale bool
}

func NewMemoryCache(initial ActiveTaskCache) *MemoryCache {
	return &MemoryCache{state: initial.Clone()}
}

func (m *MemoryCache) Read() ActiveTaskCache {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

func (m *MemoryCache) Write(c ActiveTaskCache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = c.Clone()
	m.stale = false
}

func (m *MemoryCache) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stale = true
}

// Stale reports whether the view was invalidated and not rewritten since.
func (m *MemoryCache) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}
