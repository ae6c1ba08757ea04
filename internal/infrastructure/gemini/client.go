package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kmenu/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Pricing is the fixed linear token cost model. Rates are configuration
// constants supplied at construction, never looked up per call.
type Pricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
	AUDPerUSD       float64
}

// Client handles communication with the Gemini generateContent API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	maxNames    int
	pricing     Pricing
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client. maxNames bounds how many
// dish names one extraction may return.
func NewClient(apiKey, model, baseURL string, timeout time.Duration, maxNames int, pricing Pricing) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if maxNames <= 0 {
		maxNames = 3
	}

	// Free-tier Gemini allows roughly 1000 requests per hour
	limiter := rate.NewLimiter(rate.Limit(0.278), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		maxNames:    maxNames,
		pricing:     pricing,
		rateLimiter: limiter,
	}
}

// SetDebug enables raw-response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// request/response shapes for the generateContent endpoint

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// ExtractMenuNames performs OCR-only extraction of Korean dish names
// from a base64-encoded menu photo
func (c *Client) ExtractMenuNames(ctx context.Context, imageB64, mimeType string) (*domain.ExtractionResult, error) {
	if imageB64 == "" {
		return nil, domain.ErrInvalidRequest
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: buildExtractionPrompt(c.maxNames)},
				{InlineData: &inlineData{MimeType: mimeType, Data: imageB64}},
			},
		}},
		GenerationConfig: &generationConfig{
			Temperature:      0.1,
			MaxOutputTokens:  1024,
			ResponseMimeType: "application/json",
		},
	}

	text, usage, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		IsKoreanMenu  *bool    `json:"is_korean_menu"`
		DishNames     []string `json:"dish_names"`
		TotalDetected int      `json:"total_detected"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if decoded.IsKoreanMenu == nil {
		return nil, fmt.Errorf("%w: missing is_korean_menu field", domain.ErrMalformedResponse)
	}

	names := make([]string, 0, c.maxNames)
	for _, name := range decoded.DishNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == c.maxNames {
			break
		}
	}

	totalDetected := decoded.TotalDetected
	if totalDetected < len(names) {
		totalDetected = len(names)
	}

	log.Printf("[GEMINI] extracted %d names (total detected: %d, korean: %v)",
		len(names), totalDetected, *decoded.IsKoreanMenu)

	return &domain.ExtractionResult{
		IsKoreanMenu:  *decoded.IsKoreanMenu,
		DishNames:     names,
		TotalDetected: totalDetected,
		Usage:         usage,
	}, nil
}

// SynthesizeDish generates a complete dish record for a Korean name
// absent from the store
func (c *Client) SynthesizeDish(ctx context.Context, koreanName string) (*domain.Food, error) {
	if koreanName == "" {
		return nil, domain.ErrInvalidRequest
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: buildSynthesisPrompt(koreanName)},
			},
		}},
		GenerationConfig: &generationConfig{
			Temperature:      0.2,
			MaxOutputTokens:  1024,
			ResponseMimeType: "application/json",
		},
	}

	text, _, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		EnglishName   string   `json:"english_name"`
		Description   string   `json:"description"`
		Ingredients   []string `json:"ingredients"`
		Calories      int      `json:"calories"`
		Category      string   `json:"category"`
		SpicyLevel    int      `json:"spicy_level"`
		Allergens     []string `json:"allergens"`
		IsVegetarian  bool     `json:"is_vegetarian"`
		IsVegan       bool     `json:"is_vegan"`
		ServingSize   string   `json:"serving_size"`
		CookingMethod string   `json:"cooking_method"`
		Region        string   `json:"region"`
	}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if decoded.EnglishName == "" || decoded.Description == "" {
		return nil, fmt.Errorf("%w: missing required dish fields", domain.ErrMalformedResponse)
	}

	if decoded.SpicyLevel < 0 {
		decoded.SpicyLevel = 0
	}
	if decoded.SpicyLevel > 5 {
		decoded.SpicyLevel = 5
	}
	if len(decoded.Ingredients) > 6 {
		decoded.Ingredients = decoded.Ingredients[:6]
	}

	return &domain.Food{
		KoreanName:    koreanName,
		EnglishName:   decoded.EnglishName,
		Description:   decoded.Description,
		Ingredients:   decoded.Ingredients,
		Calories:      decoded.Calories,
		Category:      decoded.Category,
		SpicyLevel:    decoded.SpicyLevel,
		Allergens:     decoded.Allergens,
		IsVegetarian:  decoded.IsVegetarian,
		IsVegan:       decoded.IsVegan,
		ServingSize:   decoded.ServingSize,
		CookingMethod: decoded.CookingMethod,
		Region:        decoded.Region,
	}, nil
}

// CalculateCost converts raw token counts to USD and AUD using the
// fixed pricing model
func (c *Client) CalculateCost(promptTokens, completionTokens int) (float64, float64) {
	usd := float64(promptTokens)/1000*c.pricing.PromptPer1K +
		float64(completionTokens)/1000*c.pricing.CompletionPer1K
	return usd, usd * c.pricing.AUDPerUSD
}

// generate executes one generateContent call and returns the model's
// text output plus priced token usage
func (c *Client) generate(ctx context.Context, payload generateRequest) (string, domain.TokenUsage, error) {
	var usage domain.TokenUsage

	if c.apiKey == "" {
		return "", usage, fmt.Errorf("%w: missing Gemini API key", domain.ErrProviderUnavailable)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", usage, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", usage, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
		if err != nil {
			return "", usage, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[GEMINI] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if c.debug {
			log.Printf("[GEMINI] raw response: %s", string(raw))
		}

		if resp.StatusCode != http.StatusOK {
			log.Printf("[GEMINI] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(raw))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
			continue
		}

		var decoded generateResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return "", usage, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}

		if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
			return "", usage, fmt.Errorf("%w: empty candidates", domain.ErrMalformedResponse)
		}

		text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
		if text == "" || !json.Valid([]byte(text)) {
			return "", usage, fmt.Errorf("%w: non-JSON model output", domain.ErrMalformedResponse)
		}

		usage.PromptTokens = decoded.UsageMetadata.PromptTokenCount
		usage.CompletionTokens = decoded.UsageMetadata.CandidatesTokenCount
		usage.TotalTokens = decoded.UsageMetadata.TotalTokenCount
		if usage.TotalTokens == 0 {
			usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		}
		usage.CostUSD, usage.CostAUD = c.CalculateCost(usage.PromptTokens, usage.CompletionTokens)

		return text, usage, nil
	}

	return "", usage, lastErr
}
