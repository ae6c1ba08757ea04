package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmenu/backend/internal/domain"
)

// FoodRepository is the pgx-backed store for dish records
type FoodRepository struct {
	db *pgxpool.Pool
}

// NewFoodRepository creates a new food repository
func NewFoodRepository(db *pgxpool.Pool) *FoodRepository {
	return &FoodRepository{db: db}
}

const foodColumns = `
	id, korean_name, english_name, description, ingredients, calories,
	category, spicy_level, allergens, is_vegetarian, is_vegan,
	serving_size, cooking_method, region, image_url, created_at, updated_at`

// FindByKoreanName returns the record for an exact Korean name match
func (r *FoodRepository) FindByKoreanName(ctx context.Context, koreanName string) (*domain.Food, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+foodColumns+`
		FROM foods
		WHERE korean_name = $1
	`, koreanName)

	food, err := scanFood(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFoodNotFound
		}
		return nil, err
	}

	return food, nil
}

// Create persists a new dish record. A concurrent insert of the same
// Korean name wins the race silently; the stored row is re-read and
// returned either way.
func (r *FoodRepository) Create(ctx context.Context, food *domain.Food) (*domain.Food, error) {
	if food.ID == "" {
		food.ID = uuid.NewString()
	}
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO foods (
			id, korean_name, english_name, description, ingredients, calories,
			category, spicy_level, allergens, is_vegetarian, is_vegan,
			serving_size, cooking_method, region, image_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (korean_name) DO NOTHING
	`, food.ID, food.KoreanName, food.EnglishName, food.Description,
		food.Ingredients, food.Calories, food.Category, food.SpicyLevel,
		food.Allergens, food.IsVegetarian, food.IsVegan, food.ServingSize,
		food.CookingMethod, food.Region, food.ImageURL, now, now)
	if err != nil {
		return nil, err
	}

	return r.FindByKoreanName(ctx, food.KoreanName)
}

// Update applies an explicit partial edit to an existing record. Nil
// fields are left untouched.
func (r *FoodRepository) Update(ctx context.Context, id string, update domain.FoodUpdate) (*domain.Food, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE foods
		SET english_name = COALESCE($2, english_name),
		    description = COALESCE($3, description),
		    calories = COALESCE($4, calories),
		    image_url = COALESCE($5, image_url),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+foodColumns+`
	`, id, update.EnglishName, update.Description, update.Calories, update.ImageURL)

	food, err := scanFood(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFoodNotFound
		}
		return nil, err
	}

	return food, nil
}

// scanFood reads one foods row
func scanFood(row pgx.Row) (*domain.Food, error) {
	var food domain.Food
	err := row.Scan(
		&food.ID, &food.KoreanName, &food.EnglishName, &food.Description,
		&food.Ingredients, &food.Calories, &food.Category, &food.SpicyLevel,
		&food.Allergens, &food.IsVegetarian, &food.IsVegan, &food.ServingSize,
		&food.CookingMethod, &food.Region, &food.ImageURL,
		&food.CreatedAt, &food.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &food, nil
}
