package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type UserRepo struct {
	db dbtx
}

func NewUserRepo(db dbtx) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, prestige, current_streak, best_streak, last_active_day, total_tasks_completed, routines_completed
		FROM users
		WHERE id = ?
	`, id)

	var u User
	var lastDay sql.NullString
	if err := row.Scan(&u.ID, &u.Prestige, &u.CurrentStreak, &u.BestStreak, &lastDay, &u.TotalTasksCompleted, &u.RoutinesCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	if lastDay.Valid {
		u.LastActiveDay = &lastDay.String
	}
	return &u, nil
}

// Ensure creates the user row if it does not exist yet.
func (r *UserRepo) Ensure(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO users (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetOrCreate(ctx context.Context, id string) (*User, error) {
	if err := r.Ensure(ctx, id); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateStats writes the streak and task counters. Routine counters are only ever incremented.
func (r *UserRepo) UpdateStats(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET current_streak = ?, best_streak = ?, last_active_day = ?, total_tasks_completed = ?
		WHERE id = ?
	`, u.CurrentStreak, u.BestStreak, u.LastActiveDay, u.TotalTasksCompleted, u.ID)
	if err != nil {
		return fmt.Errorf("user update stats: %w", err)
	}
	return nil
}

func (r *UserRepo) IncrementRoutinesCompleted(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := r.Ensure(ctx, id); err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, `UPDATE users SET routines_completed = routines_completed + 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("user increment routines: %w", err)
		}
	}
	return nil
}

func (r *UserRepo) Categories(ctx context.Context, userID string) ([]CategoryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, level, xp
		FROM user_categories
		WHERE user_id = ?
		ORDER BY category ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("categories list: %w", err)
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.Category, &c.Level, &c.XP); err != nil {
			return nil, fmt.Errorf("categories scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("categories rows: %w", err)
	}
	return out, nil
}

func (r *UserRepo) UpsertCategory(ctx context.Context, userID string, c CategoryRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_categories (user_id, category, level, xp)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, category) DO UPDATE SET level = excluded.level, xp = excluded.xp
	`, userID, c.Category, c.Level, c.XP)
	if err != nil {
		return fmt.Errorf("category upsert: %w", err)
	}
	return nil
}

func (r *UserRepo) ChallengesCompleted(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT challenge_id
		FROM challenges_completed
		WHERE user_id = ?
		ORDER BY completed_at ASC, challenge_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("challenges completed list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("challenges completed scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("challenges completed rows: %w", err)
	}
	return out, nil
}

func (r *UserRepo) InsertChallengeCompleted(ctx context.Context, userID, challengeID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO challenges_completed (user_id, challenge_id, completed_at)
		VALUES (?, ?, ?)
	`, userID, challengeID, at)
	if err != nil {
		return fmt.Errorf("challenge completed insert: %w", err)
	}
	return nil
}

// SetPrestige stores the prestige counter maintained by the host application.
func (r *UserRepo) SetPrestige(ctx context.Context, userID string, prestige int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET prestige = ? WHERE id = ?`, prestige, userID); err != nil {
		return fmt.Errorf("user set prestige: %w", err)
	}
	return nil
}
