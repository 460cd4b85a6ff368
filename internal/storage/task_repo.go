package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type TaskRepo struct {
	db dbtx
}

func NewTaskRepo(db dbtx) *TaskRepo {
	return &TaskRepo{db: db}
}

type TaskInsert struct {
	ID            string
	UserID        string
	Kind          string
	Title         string
	Category      string
	Difficulty    int
	XPValue       int
	CreatedAt     time.Time
	DueDate       *time.Time
	HabitInterval *string
	RoutineID     *string
	ChallengeID   *string
}

const taskColumns = `id, user_id, kind, title, category, difficulty, xp_value, status, created_at, completed_at, due_date,
	habit_interval, routine_id, challenge_id, is_completed, last_completed, last_completed_day`

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, kind, title, category, difficulty, xp_value,
			status, created_at, due_date,
			habit_interval, routine_id, challenge_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, in.ID, in.UserID, in.Kind, in.Title, in.Category, in.Difficulty, in.XPValue, statusPending, in.CreatedAt, in.DueDate,
		in.HabitInterval, in.RoutineID, in.ChallengeID)
	if err != nil {
		return fmt.Errorf("task insert: %w", err)
	}
	return nil
}

func (r *TaskRepo) Get(ctx context.Context, id string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("task get: %w", err)
	}
	return t, nil
}

// ListOwned returns the user's pending tasks of one kind, oldest first.
func (r *TaskRepo) ListOwned(ctx context.Context, userID, kind string) ([]Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND kind = ? AND status = ?
		ORDER BY created_at ASC, rowid ASC
	`, userID, kind, statusPending)
}

// ListRoutinesFor returns pending routine tasks the user participates in.
func (r *TaskRepo) ListRoutinesFor(ctx context.Context, userID string) ([]Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE kind = 'routine' AND status = ?
			AND routine_id IN (SELECT routine_id FROM routine_participants WHERE user_id = ?)
		ORDER BY created_at ASC, rowid ASC
	`, statusPending, userID)
}

// ListByChallenge returns every task of one challenge owned by the user.
func (r *TaskRepo) ListByChallenge(ctx context.Context, userID, challengeID string) ([]Task, error) {
	return r.list(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND kind = 'challenge' AND challenge_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, userID, challengeID)
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("task scan: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

func (r *TaskRepo) MarkDone(ctx context.Context, id string, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`, statusDone, completedAt, id)
	if err != nil {
		return fmt.Errorf("task mark done: %w", err)
	}
	return nil
}

func (r *TaskRepo) UpdateHabitAfterCompletion(ctx context.Context, id string, completedAt time.Time, nextDueDate time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, last_completed = ?, last_completed_day = ?, due_date = ?
		WHERE id = ?
	`, statusPending, completedAt, completedAt.Format("2006-01-02"), nextDueDate, id)
	if err != nil {
		return fmt.Errorf("habit update after completion: %w", err)
	}
	return nil
}

func (r *TaskRepo) MarkChallengeCompleted(ctx context.Context, id string, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET is_completed = 1, last_completed = ?, last_completed_day = ?
		WHERE id = ?
	`, completedAt, completedAt.Format("2006-01-02"), id)
	if err != nil {
		return fmt.Errorf("challenge mark completed: %w", err)
	}
	return nil
}

// ResetChallenges clears the completed flag on challenge tasks last completed before day.
func (r *TaskRepo) ResetChallenges(ctx context.Context, userID string, day string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET is_completed = 0
		WHERE user_id = ? AND kind = 'challenge' AND status = ? AND is_completed = 1 AND last_completed_day < ?
	`, userID, statusPending, day)
	if err != nil {
		return 0, fmt.Errorf("challenge reset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("challenge reset rows: %w", err)
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*Task, error) {
	var t Task
	var (
		completedAt   sql.NullTime
		dueDate       sql.NullTime
		habitInterval sql.NullString
		routineID     sql.NullString
		challengeID   sql.NullString
		isCompleted   int
		lastCompleted sql.NullTime
		lastDay       sql.NullString
	)
	if err := s.Scan(
		&t.ID, &t.UserID, &t.Kind, &t.Title, &t.Category, &t.Difficulty, &t.XPValue, &t.Status, &t.CreatedAt,
		&completedAt, &dueDate, &habitInterval, &routineID, &challengeID, &isCompleted, &lastCompleted, &lastDay,
	); err != nil {
		return nil, err
	}
	t.CompletedAt = nullTimePtr(completedAt)
	t.DueDate = nullTimePtr(dueDate)
	t.HabitInterval = nullStringPtr(habitInterval)
	t.RoutineID = nullStringPtr(routineID)
	t.ChallengeID = nullStringPtr(challengeID)
	t.IsCompleted = isCompleted != 0
	t.LastCompleted = nullTimePtr(lastCompleted)
	t.LastCompletedDay = nullStringPtr(lastDay)
	return &t, nil
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
