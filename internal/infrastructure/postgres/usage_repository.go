package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository tracks free-tier consumption per session
type UsageRepository struct {
	db *pgxpool.Pool
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// Increment adds one analysis to a session's counter, creating the row
// on first use
func (r *UsageRepository) Increment(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO usage_counters (session_id, analysis_count, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (session_id) DO UPDATE
		SET analysis_count = usage_counters.analysis_count + 1,
		    updated_at = now()
	`, sessionID)
	return err
}

// Count returns how many analyses a session has performed. Unknown
// sessions have count zero.
func (r *UsageRepository) Count(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT analysis_count
		FROM usage_counters
		WHERE session_id = $1
	`, sessionID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
