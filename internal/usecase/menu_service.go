package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/kmenu/backend/internal/domain"
)

// MenuServiceConfig holds configuration for the analysis orchestrator
type MenuServiceConfig struct {
	MaxMenuItems int
	FreeAnalyses int

	// EstimatedSynthesisUsage is charged for each generative dish
	// resolution, since that cost is not separately measured
	EstimatedSynthesisUsage domain.TokenUsage
}

// MenuService is the top-level pipeline: hash dedup -> extraction ->
// per-dish resolution -> aggregation with usage accounting. One dish
// failing never aborts the rest of the batch.
type MenuService struct {
	vision   domain.VisionClient
	dishes   *DishService
	analyses domain.AnalysisRepository
	usage    domain.UsageRepository
	config   MenuServiceConfig
}

// NewMenuService creates the orchestrator
func NewMenuService(
	vision domain.VisionClient,
	dishes *DishService,
	analyses domain.AnalysisRepository,
	usage domain.UsageRepository,
	config MenuServiceConfig,
) *MenuService {
	if config.MaxMenuItems <= 0 {
		config.MaxMenuItems = 3
	}
	if config.FreeAnalyses <= 0 {
		config.FreeAnalyses = 5
	}

	return &MenuService{
		vision:   vision,
		dishes:   dishes,
		analyses: analyses,
		usage:    usage,
		config:   config,
	}
}

// Analyze runs the full pipeline for one menu photo
func (s *MenuService) Analyze(ctx context.Context, image []byte, mimeType, sessionID string) (*domain.AnalysisResponse, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	// Content hash gates entry: the same photo is never analyzed twice
	hash := hashImage(image)
	if cached, err := s.analyses.FindByImageHash(ctx, hash); err == nil {
		log.Printf("[MENU] cache hit for hash %s", hash[:12])
		cacheDate := cached.CreatedAt
		return &domain.AnalysisResponse{
			IsKoreanMenu: cached.IsKoreanMenu,
			Dishes:       cached.Dishes,
			TokenUsage:   cached.Usage,
			Cached:       true,
			CacheDate:    &cacheDate,
		}, nil
	} else if !errors.Is(err, domain.ErrAnalysisNotFound) {
		// A broken cache read degrades to a fresh analysis
		log.Printf("[MENU] cache lookup failed for hash %s: %v", hash[:12], err)
	}

	// Free-tier gate
	count, err := s.usage.Count(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("usage lookup failed: %w", err)
	}
	if count >= s.config.FreeAnalyses {
		return nil, domain.ErrUsageLimitExceeded
	}

	// Extraction
	extraction, err := s.vision.ExtractMenuNames(ctx, base64.StdEncoding.EncodeToString(image), mimeType)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	// Oversized menus are rejected whole, never truncated, so the client
	// can prompt for a smaller photo. Rejected requests resolve nothing
	// and write nothing.
	if extraction.TotalDetected > s.config.MaxMenuItems {
		return nil, &domain.TooManyItemsError{
			Detected: extraction.TotalDetected,
			Limit:    s.config.MaxMenuItems,
		}
	}

	totalUsage := extraction.Usage
	dishes := make([]domain.DetectedDish, 0, len(extraction.DishNames))

	if extraction.IsKoreanMenu {
		// Sequential resolution keeps output order deterministic
		for _, name := range extraction.DishNames {
			dish, err := s.dishes.Resolve(ctx, name)
			if err != nil {
				log.Printf("[MENU] skipping %q: %v", name, err)
				continue
			}
			dishes = append(dishes, *dish)

			if dish.Source == domain.SourceAI {
				totalUsage.Add(s.config.EstimatedSynthesisUsage)
			}
		}
	}

	// Aggregation: persist once per unique image, bill the session
	analysis := &domain.MenuAnalysis{
		ImageHash:    hash,
		IsKoreanMenu: extraction.IsKoreanMenu,
		DishNames:    extraction.DishNames,
		Dishes:       dishes,
		Usage:        totalUsage,
	}
	if _, err := s.analyses.Create(ctx, analysis); err != nil {
		// The response is still valid; only the dedup cache is lost
		log.Printf("[MENU] failed to persist analysis for hash %s: %v", hash[:12], err)
	}

	if err := s.usage.Increment(ctx, sessionID); err != nil {
		log.Printf("[MENU] failed to increment usage for session %q: %v", sessionID, err)
	}

	log.Printf("[MENU] analyzed hash %s: %d/%d dishes resolved, $%.5f",
		hash[:12], len(dishes), len(extraction.DishNames), totalUsage.CostUSD)

	return &domain.AnalysisResponse{
		IsKoreanMenu: extraction.IsKoreanMenu,
		Dishes:       dishes,
		TokenUsage:   totalUsage,
	}, nil
}

// RemainingAnalyses reports how many free analyses a session has left
func (s *MenuService) RemainingAnalyses(ctx context.Context, sessionID string) (used, remaining int, err error) {
	used, err = s.usage.Count(ctx, sessionID)
	if err != nil {
		return 0, 0, fmt.Errorf("usage lookup failed: %w", err)
	}

	remaining = s.config.FreeAnalyses - used
	if remaining < 0 {
		remaining = 0
	}
	return used, remaining, nil
}

// hashImage computes the content address for an image payload
func hashImage(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}
