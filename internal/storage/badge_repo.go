package storage

import (
	"context"
	"fmt"
	"time"
)

// BadgeRepo stores earned badges. Rows are write-once: a second insert for the same badge is ignored
// and the original earned_at is kept.
type BadgeRepo struct {
	db dbtx
}

func NewBadgeRepo(db dbtx) *BadgeRepo {
	return &BadgeRepo{db: db}
}

func (r *BadgeRepo) Insert(ctx context.Context, userID, badgeID string, earnedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_badges (user_id, badge_id, earned_at)
		VALUES (?, ?, ?)
	`, userID, badgeID, earnedAt)
	if err != nil {
		return fmt.Errorf("badge insert: %w", err)
	}
	return nil
}

func (r *BadgeRepo) ListByUser(ctx context.Context, userID string) ([]EarnedBadge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT badge_id, earned_at
		FROM user_badges
		WHERE user_id = ?
		ORDER BY earned_at ASC, badge_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("badge list: %w", err)
	}
	defer rows.Close()

	var out []EarnedBadge
	for rows.Next() {
		var b EarnedBadge
		if err := rows.Scan(&b.BadgeID, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("badge scan: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("badge rows: %w", err)
	}
	return out, nil
}
