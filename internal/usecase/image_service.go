package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kmenu/backend/internal/domain"
)

// ImageServiceConfig holds configuration for the image waterfall
type ImageServiceConfig struct {
	CacheTTL time.Duration
}

// ImageService resolves the best available illustrative image for a dish
// through a prioritized waterfall of providers. A provider's candidate
// is accepted only after a reachability probe; everything else falls
// through to the next step.
type ImageService struct {
	providers  []domain.ImageProvider
	alternates domain.AlternateSearcher
	fallback   domain.StockFallback
	prober     domain.URLProber
	cache      domain.ImageCache
	cacheTTL   time.Duration
}

// NewImageService creates the waterfall. providers are tried in slice
// order; alternates and fallback may be nil when not configured.
func NewImageService(
	providers []domain.ImageProvider,
	alternates domain.AlternateSearcher,
	fallback domain.StockFallback,
	prober domain.URLProber,
	cache domain.ImageCache,
	config ImageServiceConfig,
) *ImageService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &ImageService{
		providers:  providers,
		alternates: alternates,
		fallback:   fallback,
		prober:     prober,
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// ResolveImage returns the best validated image for a dish, or nil when
// every provider came up empty. Never returns an error: image failures
// degrade the result, they do not fail the pipeline.
func (s *ImageService) ResolveImage(ctx context.Context, koreanName, englishName string) *domain.ImageResult {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, koreanName); err == nil {
			return cached
		}
	}

	// Step 1-2: providers in priority order, first validated success wins
	for _, provider := range s.providers {
		result, err := s.search(ctx, provider, koreanName, englishName)
		if err != nil || result == nil {
			continue
		}
		return s.accept(ctx, koreanName, result)
	}

	// Step 3: bounded alternate phrasings against the Korean adapter
	if s.alternates != nil {
		result, err := s.alternates.SearchAlternates(ctx, koreanName, englishName)
		if err != nil {
			log.Printf("[IMAGE] alternate search failed for %q: %v", koreanName, err)
		} else if result != nil && s.probe(ctx, result) {
			return s.accept(ctx, koreanName, result)
		}
	}

	// Step 4: generic stock photo as last resort
	if s.fallback != nil {
		result, err := s.fallback.RandomStock(ctx)
		if err != nil {
			log.Printf("[IMAGE] stock fallback failed for %q: %v", koreanName, err)
		} else if result != nil && s.probe(ctx, result) {
			// Not cached: a generic photo must not shadow future lookups
			return result
		}
	}

	log.Printf("[IMAGE] no image resolved for %q", koreanName)
	return nil
}

// search queries one provider and validates its candidate
func (s *ImageService) search(ctx context.Context, provider domain.ImageProvider, koreanName, englishName string) (*domain.ImageResult, error) {
	result, err := provider.Search(ctx, koreanName, englishName)
	if err != nil {
		if !errors.Is(err, domain.ErrProviderUnavailable) {
			log.Printf("[IMAGE] provider %s failed for %q: %v", provider.Name(), koreanName, err)
		}
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	if !s.probe(ctx, result) {
		return nil, nil
	}

	return result, nil
}

// probe validates that the candidate URL is live and serves an image
func (s *ImageService) probe(ctx context.Context, result *domain.ImageResult) bool {
	if err := s.prober.Probe(ctx, result.URL); err != nil {
		log.Printf("[IMAGE] validation failed for %s candidate: %v", result.Provider, err)
		return false
	}
	return true
}

// accept caches a validated result and returns it
func (s *ImageService) accept(ctx context.Context, koreanName string, result *domain.ImageResult) *domain.ImageResult {
	if s.cache != nil {
		if err := s.cache.Set(ctx, koreanName, result, s.cacheTTL); err != nil {
			log.Printf("[IMAGE] failed to cache result for %q: %v", koreanName, err)
		}
	}
	return result
}
