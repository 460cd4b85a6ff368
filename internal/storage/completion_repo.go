package storage

import (
	"context"
	"fmt"
	"time"
)

// CompletionRepo stores routine participation, per-day routine completions and the XP ledger.
type CompletionRepo struct {
	db dbtx
}

func NewCompletionRepo(db dbtx) *CompletionRepo {
	return &CompletionRepo{db: db}
}

func (r *CompletionRepo) AddParticipant(ctx context.Context, routineID, userID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO routine_participants (routine_id, user_id) VALUES (?, ?)`, routineID, userID)
	if err != nil {
		return fmt.Errorf("participant insert: %w", err)
	}
	return nil
}

func (r *CompletionRepo) Participants(ctx context.Context, routineID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id
		FROM routine_participants
		WHERE routine_id = ?
		ORDER BY rowid ASC
	`, routineID)
	if err != nil {
		return nil, fmt.Errorf("participants list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("participants scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("participants rows: %w", err)
	}
	return out, nil
}

// InsertRoutine records one participant's completion for a day. It reports false when the
// participant already has an entry for that day.
func (r *CompletionRepo) InsertRoutine(ctx context.Context, c RoutineCompletion) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO routine_completions (task_id, day_key, completed_by, completed_at)
		VALUES (?, ?, ?, ?)
	`, c.TaskID, c.DayKey, c.CompletedBy, c.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("routine completion insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("routine completion rows: %w", err)
	}
	return n == 1, nil
}

func (r *CompletionRepo) RoutineForDay(ctx context.Context, taskID, day string) ([]RoutineCompletion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, day_key, completed_by, completed_at
		FROM routine_completions
		WHERE task_id = ? AND day_key = ?
		ORDER BY completed_at ASC, completed_by ASC
	`, taskID, day)
	if err != nil {
		return nil, fmt.Errorf("routine completions list: %w", err)
	}
	defer rows.Close()

	var out []RoutineCompletion
	for rows.Next() {
		var c RoutineCompletion
		if err := rows.Scan(&c.TaskID, &c.DayKey, &c.CompletedBy, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("routine completions scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("routine completions rows: %w", err)
	}
	return out, nil
}

func (r *CompletionRepo) InsertAward(ctx context.Context, userID string, taskID *string, category string, amount int, source string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO xp_awards (user_id, task_id, category, amount, source, awarded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, taskID, category, amount, source, at)
	if err != nil {
		return fmt.Errorf("xp award insert: %w", err)
	}
	return nil
}

// CountAwardsSince counts XP awards for a task since the given time.
func (r *CompletionRepo) CountAwardsSince(ctx context.Context, taskID string, since time.Time) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT awarded_at FROM xp_awards WHERE task_id = ?`, taskID)
	if err != nil {
		return 0, fmt.Errorf("xp award count: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return 0, fmt.Errorf("xp award scan: %w", err)
		}
		if !at.Before(since) {
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("xp award rows: %w", err)
	}
	return n, nil
}
