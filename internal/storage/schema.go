package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			prestige INTEGER DEFAULT 0,
			current_streak INTEGER DEFAULT 0,
			best_streak INTEGER DEFAULT 0,
			last_active_day TEXT,
			total_tasks_completed INTEGER DEFAULT 0,
			routines_completed INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS user_categories (
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			level INTEGER DEFAULT 1,
			xp INTEGER DEFAULT 0,
			PRIMARY KEY(user_id, category),
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			difficulty INTEGER DEFAULT 1,
			xp_value INTEGER NOT NULL,

			status TEXT DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			completed_at DATETIME,
			due_date DATETIME,

			habit_interval TEXT,
			routine_id TEXT,
			challenge_id TEXT,
			is_completed INTEGER DEFAULT 0,
			last_completed DATETIME,
			last_completed_day TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS routine_participants (
			routine_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY(routine_id, user_id)
		);`,
		// One row per participant per day: the primary key is what stops double counting.
		`CREATE TABLE IF NOT EXISTS routine_completions (
			task_id TEXT NOT NULL,
			day_key TEXT NOT NULL,
			completed_by TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			PRIMARY KEY(task_id, day_key, completed_by),
			FOREIGN KEY(task_id) REFERENCES tasks(id)
		);`,
		`CREATE TABLE IF NOT EXISTS challenges_completed (
			user_id TEXT NOT NULL,
			challenge_id TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			PRIMARY KEY(user_id, challenge_id)
		);`,
		`CREATE TABLE IF NOT EXISTS user_badges (
			user_id TEXT NOT NULL,
			badge_id TEXT NOT NULL,
			earned_at DATETIME NOT NULL,
			PRIMARY KEY(user_id, badge_id)
		);`,
		// Needed for habit decay (> 5 completions / 7 days) and auditing XP awarded.
		`CREATE TABLE IF NOT EXISTS xp_awards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			task_id TEXT,
			category TEXT NOT NULL,
			amount INTEGER NOT NULL,
			source TEXT NOT NULL,
			awarded_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_kind_status ON tasks(user_id, kind, status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_routine_id ON tasks(routine_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_challenge_id ON tasks(challenge_id);`,
		`CREATE INDEX IF NOT EXISTS idx_routine_participants_user ON routine_participants(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_awards_task_id_awarded_at ON xp_awards(task_id, awarded_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
