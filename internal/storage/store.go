package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lifequest/internal/engine"
)

const (
	// habitDecayWindow and habitDecayAfter: habitDecayAfter or more awards for one habit inside
	// the window halve its XP.
	habitDecayWindow = 7 * 24 * time.Hour
	habitDecayAfter  = 5
)

// Store is the sqlite-backed engine.Store. Every completion runs in one transaction together with
// its XP award and stats update.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

func NewStore(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// WithClock replaces the clock used for completion timestamps and day keys.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

type repos struct {
	users       *UserRepo
	tasks       *TaskRepo
	completions *CompletionRepo
	badges      *BadgeRepo
}

func reposFor(db dbtx) repos {
	return repos{
		users:       NewUserRepo(db),
		tasks:       NewTaskRepo(db),
		completions: NewCompletionRepo(db),
		badges:      NewBadgeRepo(db),
	}
}

func (s *Store) UserAggregate(ctx context.Context, userID string) (*engine.UserState, error) {
	r := reposFor(s.db)
	u, err := r.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	cats, err := r.users.Categories(ctx, userID)
	if err != nil {
		return nil, err
	}
	challenges, err := r.users.ChallengesCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := r.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := &engine.UserState{
		UserID:     userID,
		Categories: make(map[engine.Category]engine.CategoryProgress, len(cats)),
		Prestige:   u.Prestige,
		Stats: engine.UserStats{
			CurrentStreak:       u.CurrentStreak,
			BestStreak:          u.BestStreak,
			TotalTasksCompleted: u.TotalTasksCompleted,
			RoutinesCompleted:   u.RoutinesCompleted,
			ChallengesCompleted: challenges,
		},
	}
	for _, c := range cats {
		state.Categories[engine.Category(c.Category)] = engine.CategoryProgress{Level: c.Level, XP: c.XP}
	}
	for _, b := range badges {
		state.Badges = append(state.Badges, engine.UserBadge{BadgeID: b.BadgeID, EarnedAt: b.EarnedAt})
	}
	return state, nil
}

// ActiveTasks loads the four task lists in parallel. Habits not yet due and routines every
// participant finished today are left out.
func (s *Store) ActiveTasks(ctx context.Context, userID string) (engine.ActiveTaskCache, error) {
	r := reposFor(s.db)
	now := s.now()
	day := engine.DayKey(now)

	var out engine.ActiveTaskCache
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.tasks.ListOwned(gctx, userID, string(engine.TaskKindNormal))
		if err != nil {
			return err
		}
		for _, t := range rows {
			out.Normal = append(out.Normal, engine.NormalTask{Task: toTask(t), DueDate: t.DueDate})
		}
		return nil
	})
	g.Go(func() error {
		rows, err := r.tasks.ListOwned(gctx, userID, string(engine.TaskKindHabit))
		if err != nil {
			return err
		}
		for _, t := range rows {
			if h := toHabit(t); h.IsDue(now) {
				out.Habit = append(out.Habit, h)
			}
		}
		return nil
	})
	g.Go(func() error {
		rows, err := r.tasks.ListRoutinesFor(gctx, userID)
		if err != nil {
			return err
		}
		for _, t := range rows {
			rt, err := s.loadRoutine(gctx, r, t, day)
			if err != nil {
				return err
			}
			if rt.DoneForDay(day) {
				continue
			}
			rt.IsCompleted = rt.CompletedBy(userID, day)
			out.Routine = append(out.Routine, rt)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := r.tasks.ListOwned(gctx, userID, string(engine.TaskKindChallenge))
		if err != nil {
			return err
		}
		for _, t := range rows {
			out.Challenge = append(out.Challenge, toChallenge(t))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return engine.ActiveTaskCache{}, err
	}
	return out, nil
}

func (s *Store) loadRoutine(ctx context.Context, r repos, t Task, day string) (engine.RoutineTask, error) {
	rt := engine.RoutineTask{Task: toTask(t)}
	if t.RoutineID == nil {
		return rt, nil
	}
	rt.RoutineID = *t.RoutineID
	participants, err := r.completions.Participants(ctx, rt.RoutineID)
	if err != nil {
		return rt, err
	}
	rt.Participants = participants
	comps, err := r.completions.RoutineForDay(ctx, t.ID, day)
	if err != nil {
		return rt, err
	}
	if len(comps) > 0 {
		rt.Completions = map[string][]engine.RoutineCompletion{}
		for _, c := range comps {
			rt.Completions[day] = append(rt.Completions[day], engine.RoutineCompletion{CompletedBy: c.CompletedBy, CompletedAt: c.CompletedAt})
		}
	}
	return rt, nil
}

func (s *Store) CompleteNormalTask(ctx context.Context, userID, taskID string) error {
	return s.completeTask(ctx, userID, taskID, engine.TaskKindNormal, engine.XPSourceTask,
		func(ctx context.Context, r repos, t *Task, now time.Time) (int, error) {
			if t.UserID != userID {
				return 0, engine.ErrTaskNotFound
			}
			if t.Status == statusDone {
				return 0, engine.ErrAlreadyCompleted
			}
			if err := r.tasks.MarkDone(ctx, t.ID, now); err != nil {
				return 0, err
			}
			return t.XPValue, nil
		})
}

func (s *Store) CompleteHabitTask(ctx context.Context, userID, taskID string) error {
	return s.completeTask(ctx, userID, taskID, engine.TaskKindHabit, engine.XPSourceHabit,
		func(ctx context.Context, r repos, t *Task, now time.Time) (int, error) {
			if t.UserID != userID {
				return 0, engine.ErrTaskNotFound
			}
			if t.Status == statusDone || !toHabit(*t).IsDue(now) {
				return 0, engine.ErrAlreadyCompleted
			}
			if t.HabitInterval == nil {
				return 0, engine.ValidationError{TaskID: t.ID, Field: "habit interval", Reason: "is missing"}
			}
			interval, err := engine.ParseHabitInterval(*t.HabitInterval)
			if err != nil {
				return 0, err
			}

			recent, err := r.completions.CountAwardsSince(ctx, t.ID, now.Add(-habitDecayWindow))
			if err != nil {
				return 0, err
			}
			xp := t.XPValue
			if recent >= habitDecayAfter {
				xp = int(math.Round(float64(xp) * 0.50))
			}
			if xp < 1 {
				xp = 1
			}

			nextDue, err := engine.NextDueDate(now, interval)
			if err != nil {
				return 0, err
			}
			if err := r.tasks.UpdateHabitAfterCompletion(ctx, t.ID, now, nextDue); err != nil {
				return 0, err
			}
			return xp, nil
		})
}

func (s *Store) CompleteRoutineTask(ctx context.Context, userID, taskID, routineID string) error {
	return s.completeTask(ctx, userID, taskID, engine.TaskKindRoutine, engine.XPSourceRoutine,
		func(ctx context.Context, r repos, t *Task, now time.Time) (int, error) {
			if routineID == "" || t.RoutineID == nil || *t.RoutineID != routineID {
				return 0, engine.ValidationError{TaskID: t.ID, Field: "routine id", Reason: "does not match task"}
			}
			day := engine.DayKey(now)
			rt, err := s.loadRoutine(ctx, r, *t, day)
			if err != nil {
				return 0, err
			}
			if !rt.HasParticipant(userID) {
				return 0, engine.ValidationError{TaskID: t.ID, Field: "participants", Reason: "user " + userID + " is not a participant"}
			}
			inserted, err := r.completions.InsertRoutine(ctx, RoutineCompletion{TaskID: t.ID, DayKey: day, CompletedBy: userID, CompletedAt: now})
			if err != nil {
				return 0, err
			}
			if !inserted {
				return 0, engine.ErrAlreadyCompleted
			}

			rt, err = s.loadRoutine(ctx, r, *t, day)
			if err != nil {
				return 0, err
			}
			if rt.DoneForDay(day) {
				if err := r.users.IncrementRoutinesCompleted(ctx, rt.Participants); err != nil {
					return 0, err
				}
			}
			return t.XPValue, nil
		})
}

func (s *Store) CompleteChallengeTask(ctx context.Context, userID, taskID, challengeID string, task engine.ChallengeTask) error {
	if task.ID != "" && task.ID != taskID {
		return engine.ValidationError{TaskID: taskID, Field: "task", Reason: "reference does not match task id"}
	}
	return s.completeTask(ctx, userID, taskID, engine.TaskKindChallenge, engine.XPSourceChallenge,
		func(ctx context.Context, r repos, t *Task, now time.Time) (int, error) {
			if t.UserID != userID {
				return 0, engine.ErrTaskNotFound
			}
			if challengeID == "" || t.ChallengeID == nil || *t.ChallengeID != challengeID {
				return 0, engine.ValidationError{TaskID: t.ID, Field: "challenge id", Reason: "does not match task"}
			}
			if t.IsCompleted || t.Status == statusDone {
				return 0, engine.ErrAlreadyCompleted
			}
			if err := r.tasks.MarkChallengeCompleted(ctx, t.ID, now); err != nil {
				return 0, err
			}

			all, err := r.tasks.ListByChallenge(ctx, userID, challengeID)
			if err != nil {
				return 0, err
			}
			done := true
			for _, c := range all {
				if !c.IsCompleted {
					done = false
					break
				}
			}
			if done {
				if err := r.users.InsertChallengeCompleted(ctx, userID, challengeID, now); err != nil {
					return 0, err
				}
			}
			return t.XPValue, nil
		})
}

type completeFunc func(ctx context.Context, r repos, t *Task, now time.Time) (int, error)

// completeTask runs apply and the shared side effects (XP award, streak, task counter) in one
// transaction.
func (s *Store) completeTask(ctx context.Context, userID, taskID string, kind engine.TaskKind, source engine.XPSource, apply completeFunc) error {
	now := s.now()
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		u, err := r.users.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		t, err := r.tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		if t == nil {
			return engine.ErrTaskNotFound
		}
		if engine.TaskKind(t.Kind) != kind {
			return engine.ValidationError{TaskID: taskID, Field: "kind", Reason: fmt.Sprintf("task is %s, not %s", t.Kind, kind)}
		}

		xp, err := apply(ctx, r, t, now)
		if err != nil {
			return err
		}
		taskRef := t.ID
		if err := awardXP(ctx, r, userID, &taskRef, map[engine.Category]int{engine.Category(t.Category): xp}, source, now); err != nil {
			return err
		}

		day := engine.DayKey(now)
		last := ""
		if u.LastActiveDay != nil {
			last = *u.LastActiveDay
		}
		u.CurrentStreak, u.BestStreak = engine.AdvanceStreak(u.CurrentStreak, u.BestStreak, last, day)
		u.LastActiveDay = &day
		u.TotalTasksCompleted++
		return r.users.UpdateStats(ctx, u)
	})
	if err != nil {
		return err
	}
	s.log.Debug("task completed", zap.String("user", userID), zap.String("task", taskID), zap.String("kind", string(kind)))
	return nil
}

func (s *Store) AwardXP(ctx context.Context, userID string, xp map[engine.Category]int, source engine.XPSource) error {
	if !source.IsValid() {
		return fmt.Errorf("invalid xp source: %q", source)
	}
	now := s.now()
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		if err := r.users.Ensure(ctx, userID); err != nil {
			return err
		}
		return awardXP(ctx, r, userID, nil, xp, source, now)
	})
}

// awardXP adds XP per category, carrying overflow into levels, and records each grant in the ledger.
func awardXP(ctx context.Context, r repos, userID string, taskID *string, xp map[engine.Category]int, source engine.XPSource, now time.Time) error {
	cats := make([]engine.Category, 0, len(xp))
	for c, amount := range xp {
		if !c.IsValid() {
			return fmt.Errorf("invalid category: %q", c)
		}
		if amount < 0 {
			return fmt.Errorf("negative xp for %s: %d", c, amount)
		}
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	rows, err := r.users.Categories(ctx, userID)
	if err != nil {
		return err
	}
	current := make(map[engine.Category]engine.CategoryProgress, len(rows))
	for _, row := range rows {
		current[engine.Category(row.Category)] = engine.CategoryProgress{Level: row.Level, XP: row.XP}
	}

	for _, c := range cats {
		amount := xp[c]
		if amount == 0 {
			continue
		}
		next := engine.AddXP(current[c], amount)
		if err := r.users.UpsertCategory(ctx, userID, CategoryRow{Category: string(c), Level: next.Level, XP: next.XP}); err != nil {
			return err
		}
		if err := r.completions.InsertAward(ctx, userID, taskID, string(c), amount, string(source), now); err != nil {
			return err
		}
	}
	return nil
}

// SaveEarnedBadges stores badges in one transaction. Badges already held are left unchanged.
func (s *Store) SaveEarnedBadges(ctx context.Context, userID string, badges []engine.UserBadge) error {
	if len(badges) == 0 {
		return nil
	}
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		if err := r.users.Ensure(ctx, userID); err != nil {
			return err
		}
		for _, b := range badges {
			if b.BadgeID == "" {
				return fmt.Errorf("badge id is required")
			}
			if err := r.badges.Insert(ctx, userID, b.BadgeID, b.EarnedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) CreateTask(ctx context.Context, userID string, p engine.PlannedTask) (string, error) {
	id := uuid.NewString()
	in := TaskInsert{
		ID:         id,
		UserID:     userID,
		Kind:       string(p.Kind),
		Title:      p.Title,
		Category:   string(p.Category),
		Difficulty: int(p.Difficulty),
		XPValue:    p.XPValue,
		CreatedAt:  s.now(),
	}

	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		if err := r.users.Ensure(ctx, userID); err != nil {
			return err
		}
		switch p.Kind {
		case engine.TaskKindHabit:
			interval := string(p.HabitInterval)
			in.HabitInterval = &interval
		case engine.TaskKindRoutine:
			routineID := p.RoutineID
			if routineID == "" {
				routineID = uuid.NewString()
			}
			in.RoutineID = &routineID
			participants := p.Participants
			if !slices.Contains(participants, userID) {
				participants = append([]string{userID}, participants...)
			}
			for _, participant := range participants {
				if err := r.users.Ensure(ctx, participant); err != nil {
					return err
				}
				if err := r.completions.AddParticipant(ctx, routineID, participant); err != nil {
					return err
				}
			}
		case engine.TaskKindChallenge:
			challengeID := p.ChallengeID
			in.ChallengeID = &challengeID
		}
		return r.tasks.Insert(ctx, in)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ResetChallenges makes challenge tasks completed before day available again.
func (s *Store) ResetChallenges(ctx context.Context, userID string, day string) (int, error) {
	return NewTaskRepo(s.db).ResetChallenges(ctx, userID, day)
}

// SetPrestige stores the externally computed prestige counter.
func (s *Store) SetPrestige(ctx context.Context, userID string, prestige int) error {
	if prestige < 0 {
		return fmt.Errorf("prestige must not be negative: %d", prestige)
	}
	r := reposFor(s.db)
	if err := r.users.Ensure(ctx, userID); err != nil {
		return err
	}
	return r.users.SetPrestige(ctx, userID, prestige)
}

func toTask(t Task) engine.Task {
	cat, _ := engine.ParseCategory(t.Category)
	return engine.Task{
		ID:         t.ID,
		Title:      t.Title,
		Category:   cat,
		Difficulty: engine.Difficulty(t.Difficulty),
		XPValue:    t.XPValue,
		CreatedAt:  t.CreatedAt,
	}
}

func toHabit(t Task) engine.HabitTask {
	h := engine.HabitTask{Task: toTask(t), DueDate: t.DueDate, LastCompleted: t.LastCompleted}
	if t.HabitInterval != nil {
		h.Interval = engine.HabitInterval(*t.HabitInterval)
	}
	return h
}

func toChallenge(t Task) engine.ChallengeTask {
	c := engine.ChallengeTask{Task: toTask(t), IsCompleted: t.IsCompleted, LastCompleted: t.LastCompleted}
	if t.ChallengeID != nil {
		c.ChallengeID = *t.ChallengeID
	}
	return c
}
