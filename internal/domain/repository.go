package domain

import (
	"context"
	"time"
)

// FoodRepository defines the persistent store for dish records
type FoodRepository interface {
	FindByKoreanName(ctx context.Context, koreanName string) (*Food, error)
	Create(ctx context.Context, food *Food) (*Food, error)
	Update(ctx context.Context, id string, update FoodUpdate) (*Food, error)
}

// AnalysisRepository persists one analysis per distinct image hash
type AnalysisRepository interface {
	FindByImageHash(ctx context.Context, hash string) (*MenuAnalysis, error)
	Create(ctx context.Context, analysis *MenuAnalysis) (*MenuAnalysis, error)
}

// UsageRepository tracks free-tier consumption per session
type UsageRepository interface {
	Increment(ctx context.Context, sessionID string) error
	Count(ctx context.Context, sessionID string) (int, error)
}

// VisionClient defines the generative OCR/text capability
type VisionClient interface {
	// ExtractMenuNames performs OCR-only extraction of Korean dish names
	// from a base64-encoded menu photo
	ExtractMenuNames(ctx context.Context, imageB64, mimeType string) (*ExtractionResult, error)

	// SynthesizeDish generates a complete dish record for a Korean name
	// absent from the store
	SynthesizeDish(ctx context.Context, koreanName string) (*Food, error)
}

// ImageProvider is one search backend in the image waterfall. Search
// returns the provider's best-scored candidate or nil when it has none.
type ImageProvider interface {
	Name() string
	Search(ctx context.Context, koreanName, englishName string) (*ImageResult, error)
}

// AlternateSearcher is implemented by providers that support a bounded
// set of alternate query phrasings, tried after the primary waterfall.
type AlternateSearcher interface {
	SearchAlternates(ctx context.Context, koreanName, englishName string) (*ImageResult, error)
}

// StockFallback supplies a generic stock photo as the waterfall's last resort
type StockFallback interface {
	RandomStock(ctx context.Context) (*ImageResult, error)
}

// URLProber checks that a candidate image URL is live and serves an
// image content type
type URLProber interface {
	Probe(ctx context.Context, url string) error
}

// ImageCache holds recently resolved dish images so repeated analyses
// of common dishes skip the provider waterfall
type ImageCache interface {
	Get(ctx context.Context, koreanName string) (*ImageResult, error)
	Set(ctx context.Context, koreanName string, result *ImageResult, ttl time.Duration) error
	Delete(ctx context.Context, koreanName string) error
}
