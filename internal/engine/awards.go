package engine

import (
	"context"

	"go.uber.org/zap"
)

// Achievements re-evaluates the badge catalog after a confirmed write and persists new badges.
// It is best-effort: every failure is logged and reported as an empty award.
type Achievements struct {
	gateway Gateway
	catalog CatalogSource
	engine  *BadgeEngine
	log     *zap.Logger
}

func NewAchievements(gateway Gateway, catalog CatalogSource, engine *BadgeEngine, log *zap.Logger) *Achievements {
	if log == nil {
		log = zap.NewNop()
	}
	if engine == nil {
		engine = NewBadgeEngine(log)
	}
	return &Achievements{gateway: gateway, catalog: catalog, engine: engine, log: log}
}

// Engine returns the rule engine used for evaluation.
func (a *Achievements) Engine() *BadgeEngine { return a.engine }

// Evaluate awards every newly satisfied badge for userID in one batch.
func (a *Achievements) Evaluate(ctx context.Context, userID string) Award {
	if a == nil || a.gateway == nil || a.catalog == nil {
		return Award{}
	}
	state, err := a.gateway.UserAggregate(ctx, userID)
	if err != nil || state == nil {
		a.log.Warn("achievements: user aggregate unavailable", zap.String("user", userID), zap.Error(err))
		return Award{}
	}
	catalog, err := a.catalog.AllBadgeDefinitions(ctx)
	if err != nil {
		a.log.Warn("achievements: catalog unavailable", zap.Error(err))
		return Award{}
	}

	award := a.engine.CheckAndAward(state, catalog, nil)
	if len(award.NewlyAwarded) == 0 {
		return Award{}
	}
	if err := a.gateway.SaveEarnedBadges(ctx, userID, award.Badges); err != nil {
		a.log.Warn("achievements: save earned badges", zap.String("user", userID), zap.Strings("badges", award.NewlyAwarded), zap.Error(err))
		return Award{}
	}
	a.log.Info("badges awarded", zap.String("user", userID), zap.Strings("badges", award.NewlyAwarded))
	return award
}

// Progress returns badge progress rows for userID, or nil when the data is unavailable.
func (a *Achievements) Progress(ctx context.Context, userID string) []BadgeProgress {
	if a == nil || a.gateway == nil || a.catalog == nil {
		return nil
	}
	state, err := a.gateway.UserAggregate(ctx, userID)
	if err != nil || state == nil {
		a.log.Warn("achievements: user aggregate unavailable", zap.String("user", userID), zap.Error(err))
		return nil
	}
	catalog, err := a.catalog.AllBadgeDefinitions(ctx)
	if err != nil {
		a.log.Warn("achievements: catalog unavailable", zap.Error(err))
		return nil
	}
	return a.engine.Progress(state, catalog)
}
