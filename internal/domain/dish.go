package domain

import "time"

// Source identifies where a resolved dish's descriptive data came from.
const (
	SourceDatabase = "database"
	SourceAI       = "ai"
)

// Confidence values are fixed per source: store hits always outrank
// generated records.
const (
	ConfidenceDatabase = 1.0
	ConfidenceAI       = 0.8
)

// Accuracy is a coarse label describing how likely an attached image
// actually depicts the named dish.
type Accuracy string

const (
	AccuracyHigh   Accuracy = "high"
	AccuracyMedium Accuracy = "medium"
	AccuracyLow    Accuracy = "low"
)

// DetectedDish is the unit of output per menu item.
type DetectedDish struct {
	KoreanName    string   `json:"koreanName"`
	EnglishName   string   `json:"englishName"`
	Description   string   `json:"description"`
	Ingredients   []string `json:"ingredients"`
	Calories      int      `json:"calories"`
	Category      string   `json:"category"`
	SpicyLevel    int      `json:"spicyLevel"` // 0-5
	Allergens     []string `json:"allergens"`
	IsVegetarian  bool     `json:"isVegetarian"`
	IsVegan       bool     `json:"isVegan"`
	ServingSize   string   `json:"servingSize"`
	CookingMethod string   `json:"cookingMethod"`
	Region        string   `json:"region"`
	Confidence    float64  `json:"confidence"`
	Source        string   `json:"source"` // "database" or "ai"
	ImageURL      string   `json:"imageUrl,omitempty"`
	ImageAccuracy Accuracy `json:"imageAccuracy,omitempty"`
}

// Food is the persisted dish record, keyed by Korean name. Confidence,
// source and image accuracy are derived at query time, not stored.
type Food struct {
	ID            string    `json:"id"`
	KoreanName    string    `json:"koreanName"`
	EnglishName   string    `json:"englishName"`
	Description   string    `json:"description"`
	Ingredients   []string  `json:"ingredients"`
	Calories      int       `json:"calories"`
	Category      string    `json:"category"`
	SpicyLevel    int       `json:"spicyLevel"`
	Allergens     []string  `json:"allergens"`
	IsVegetarian  bool      `json:"isVegetarian"`
	IsVegan       bool      `json:"isVegan"`
	ServingSize   string    `json:"servingSize"`
	CookingMethod string    `json:"cookingMethod"`
	Region        string    `json:"region"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FoodUpdate holds the fields an explicit edit operation may change.
// Nil fields are left untouched.
type FoodUpdate struct {
	EnglishName *string
	Description *string
	Calories    *int
	ImageURL    *string
}

// TokenUsage tracks generative model consumption and its derived cost.
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
	CostAUD          float64 `json:"cost_aud"`
}

// Add accumulates another usage sample into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.CostUSD += other.CostUSD
	u.CostAUD += other.CostAUD
}

// ExtractionResult is what the vision OCR step returns for one image.
type ExtractionResult struct {
	IsKoreanMenu  bool       `json:"isKoreanMenu"`
	DishNames     []string   `json:"dishNames"`
	TotalDetected int        `json:"totalDetected"`
	Usage         TokenUsage `json:"-"`
}

// MenuAnalysis is the persisted result for one distinct image hash.
// Created once per unique image and never mutated afterwards.
type MenuAnalysis struct {
	ID           string         `json:"id"`
	ImageHash    string         `json:"imageHash"` // sha256 hex digest
	IsKoreanMenu bool           `json:"isKoreanMenu"`
	DishNames    []string       `json:"dishNames"`
	Dishes       []DetectedDish `json:"dishes"`
	Usage        TokenUsage     `json:"usage"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// AnalysisResponse is the shape returned upward by the orchestrator.
type AnalysisResponse struct {
	IsKoreanMenu bool           `json:"isKoreanMenu"`
	Dishes       []DetectedDish `json:"dishes"`
	TokenUsage   TokenUsage     `json:"tokenUsage"`
	Cached       bool           `json:"cached,omitempty"`
	CacheDate    *time.Time     `json:"cacheDate,omitempty"`
}

// ImageResult is an ephemeral image-search candidate. It exists only
// within the resolution of a single dish-image lookup.
type ImageResult struct {
	URL      string
	Provider string
	Score    int
	Accuracy Accuracy
}
