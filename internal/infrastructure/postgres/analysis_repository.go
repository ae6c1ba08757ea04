package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmenu/backend/internal/domain"
)

// AnalysisRepository is the pgx-backed store for per-image analysis
// records. Records are created once per distinct hash and never mutated.
type AnalysisRepository struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// FindByImageHash returns the most recent analysis for an image hash
func (r *AnalysisRepository) FindByImageHash(ctx context.Context, hash string) (*domain.MenuAnalysis, error) {
	var (
		analysis   domain.MenuAnalysis
		dishesJSON []byte
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, image_hash, is_korean_menu, dish_names, dishes,
		       prompt_tokens, completion_tokens, total_tokens,
		       cost_usd, cost_aud, created_at
		FROM menu_analyses
		WHERE image_hash = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, hash).Scan(
		&analysis.ID, &analysis.ImageHash, &analysis.IsKoreanMenu,
		&analysis.DishNames, &dishesJSON,
		&analysis.Usage.PromptTokens, &analysis.Usage.CompletionTokens,
		&analysis.Usage.TotalTokens, &analysis.Usage.CostUSD,
		&analysis.Usage.CostAUD, &analysis.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(dishesJSON, &analysis.Dishes); err != nil {
		return nil, err
	}

	return &analysis, nil
}

// Create persists a new analysis record
func (r *AnalysisRepository) Create(ctx context.Context, analysis *domain.MenuAnalysis) (*domain.MenuAnalysis, error) {
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now()
	}

	dishesJSON, err := json.Marshal(analysis.Dishes)
	if err != nil {
		return nil, err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO menu_analyses (
			id, image_hash, is_korean_menu, dish_names, dishes,
			prompt_tokens, completion_tokens, total_tokens,
			cost_usd, cost_aud, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, analysis.ID, analysis.ImageHash, analysis.IsKoreanMenu,
		analysis.DishNames, dishesJSON,
		analysis.Usage.PromptTokens, analysis.Usage.CompletionTokens,
		analysis.Usage.TotalTokens, analysis.Usage.CostUSD,
		analysis.Usage.CostAUD, analysis.CreatedAt)
	if err != nil {
		return nil, err
	}

	return analysis, nil
}
