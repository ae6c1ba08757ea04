package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kmenu/backend/internal/domain"
)

// DishService resolves a single Korean dish name to a DetectedDish.
// Flow: check store -> on miss synthesize via the generative fallback ->
// persist -> attach image.
type DishService struct {
	foods  domain.FoodRepository
	vision domain.VisionClient
	images *ImageService
}

// NewDishService creates a new dish resolver
func NewDishService(foods domain.FoodRepository, vision domain.VisionClient, images *ImageService) *DishService {
	return &DishService{
		foods:  foods,
		vision: vision,
		images: images,
	}
}

// Resolve maps one Korean dish name to a DetectedDish. Store hits yield
// confidence 1.0 and source "database"; generative fallbacks yield 0.8
// and "ai" and persist the new record as a cache-warming side effect.
func (s *DishService) Resolve(ctx context.Context, koreanName string) (*domain.DetectedDish, error) {
	if koreanName == "" {
		return nil, domain.ErrInvalidRequest
	}

	food, err := s.foods.FindByKoreanName(ctx, koreanName)
	if err == nil {
		image := s.images.ResolveImage(ctx, food.KoreanName, food.EnglishName)
		return buildDetectedDish(food, domain.SourceDatabase, image), nil
	}
	if !errors.Is(err, domain.ErrFoodNotFound) {
		return nil, fmt.Errorf("store lookup failed for %q: %w", koreanName, err)
	}

	// Cache miss: synthesize a complete record
	generated, err := s.vision.SynthesizeDish(ctx, koreanName)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed for %q: %w", koreanName, err)
	}

	// Resolve the image with the newly generated English name before
	// persisting, so the record carries its URL from the start
	image := s.images.ResolveImage(ctx, koreanName, generated.EnglishName)
	if image != nil {
		generated.ImageURL = image.URL
	}

	created, err := s.foods.Create(ctx, generated)
	if err != nil {
		return nil, fmt.Errorf("failed to persist %q: %w", koreanName, err)
	}

	log.Printf("[DISH] synthesized and persisted %q (%s)", koreanName, created.EnglishName)
	return buildDetectedDish(created, domain.SourceAI, image), nil
}

// buildDetectedDish derives the query-time fields from a stored record
func buildDetectedDish(food *domain.Food, source string, image *domain.ImageResult) *domain.DetectedDish {
	confidence := domain.ConfidenceAI
	if source == domain.SourceDatabase {
		confidence = domain.ConfidenceDatabase
	}

	dish := &domain.DetectedDish{
		KoreanName:    food.KoreanName,
		EnglishName:   food.EnglishName,
		Description:   food.Description,
		Ingredients:   food.Ingredients,
		Calories:      food.Calories,
		Category:      food.Category,
		SpicyLevel:    food.SpicyLevel,
		Allergens:     food.Allergens,
		IsVegetarian:  food.IsVegetarian,
		IsVegan:       food.IsVegan,
		ServingSize:   food.ServingSize,
		CookingMethod: food.CookingMethod,
		Region:        food.Region,
		Confidence:    confidence,
		Source:        source,
	}

	if image != nil {
		dish.ImageURL = image.URL
		dish.ImageAccuracy = image.Accuracy
	}

	return dish
}
