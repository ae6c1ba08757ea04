package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmenu/backend/config"
)

// Connect opens a pgx pool, verifies the connection and initializes the
// schema
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return pool, nil
}

// initSchema creates the tables if they do not exist yet. The UNIQUE
// constraint on korean_name turns the concurrent first-resolution race
// into first-write-wins instead of duplicate rows.
func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS foods (
			id UUID PRIMARY KEY,
			korean_name VARCHAR(255) UNIQUE NOT NULL,
			english_name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			ingredients TEXT[] NOT NULL DEFAULT '{}',
			calories INTEGER NOT NULL DEFAULT 0,
			category VARCHAR(100) NOT NULL DEFAULT '',
			spicy_level INTEGER NOT NULL DEFAULT 0,
			allergens TEXT[] NOT NULL DEFAULT '{}',
			is_vegetarian BOOLEAN NOT NULL DEFAULT false,
			is_vegan BOOLEAN NOT NULL DEFAULT false,
			serving_size VARCHAR(100) NOT NULL DEFAULT '',
			cooking_method VARCHAR(100) NOT NULL DEFAULT '',
			region VARCHAR(100) NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS menu_analyses (
			id UUID PRIMARY KEY,
			image_hash CHAR(64) NOT NULL,
			is_korean_menu BOOLEAN NOT NULL,
			dish_names TEXT[] NOT NULL DEFAULT '{}',
			dishes JSONB NOT NULL DEFAULT '[]',
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			cost_aud DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_menu_analyses_image_hash
			ON menu_analyses (image_hash)`,
		`CREATE TABLE IF NOT EXISTS usage_counters (
			session_id VARCHAR(255) PRIMARY KEY,
			analysis_count INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
