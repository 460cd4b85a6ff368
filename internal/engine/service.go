package engine

import (
	"context"

	"go.uber.org/zap"
)

// Store is a Gateway that can also create tasks.
type Store interface {
	Gateway
	CreateTask(ctx context.Context, userID string, t PlannedTask) (string, error)
}

// Service wires the coordinator, the badge engine and the cache for one host process.
type Service struct {
	store        Store
	cache        *MemoryCache
	coordinator  *Coordinator
	achievements *Achievements
	log          *zap.Logger
}

func NewService(store Store, catalog CatalogSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	cache := NewMemoryCache(ActiveTaskCache{})
	var badges CatalogSource
	if catalog != nil {
		badges = NewCachedCatalog(catalog)
	}
	ach := NewAchievements(store, badges, NewBadgeEngine(log.Named("badges")), log.Named("achievements"))
	return &Service{
		store:        store,
		cache:        cache,
		coordinator:  NewCoordinator(store, cache, WithLogger(log.Named("coordinator")), WithAchievements(ach)),
		achievements: ach,
		log:          log,
	}
}

func (s *Service) Cache() *MemoryCache         { return s.cache }
func (s *Service) Coordinator() *Coordinator   { return s.coordinator }
func (s *Service) Achievements() *Achievements { return s.achievements }

// Load fills the cache from the store.
func (s *Service) Load(ctx context.Context, userID string) error {
	return s.coordinator.Refresh(ctx, userID)
}

func (s *Service) CompleteTask(ctx context.Context, userID, taskID string, kind TaskKind) (*CompleteResult, error) {
	return s.coordinator.CompleteTask(ctx, userID, taskID, kind)
}

// CreateTask validates in, stores it and refreshes the cache.
func (s *Service) CreateTask(ctx context.Context, userID string, in CreateTaskInput) (string, error) {
	state, err := s.store.UserAggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	planned, err := in.Plan(userID, state)
	if err != nil {
		return "", err
	}
	id, err := s.store.CreateTask(ctx, userID, planned)
	if err != nil {
		return "", err
	}
	if err := s.coordinator.Refresh(ctx, userID); err != nil {
		s.log.Warn("refresh after create failed", zap.String("task", id), zap.Error(err))
	}
	return id, nil
}

// Status is a read-only view of the user's progression.
type Status struct {
	State      *UserState
	Overall    LevelInfo
	Categories []CategorySummary
	Badges     []BadgeProgress
}

func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	state, err := s.store.UserAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Status{
		State:      state,
		Overall:    OverallLevelInfo(state.Categories),
		Categories: CategorySummaries(state.Categories),
		Badges:     s.achievements.Progress(ctx, userID),
	}, nil
}

// AwardXP grants XP outside of task completion and re-evaluates badges.
func (s *Service) AwardXP(ctx context.Context, userID string, xp map[Category]int) (Award, error) {
	if err := s.store.AwardXP(ctx, userID, xp, XPSourceManual); err != nil {
		return Award{}, err
	}
	return s.achievements.Evaluate(ctx, userID), nil
}
