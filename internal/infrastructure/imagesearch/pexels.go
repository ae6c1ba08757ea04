package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/kmenu/backend/internal/domain"
)

// PexelsClient is the second generic stock photo adapter
type PexelsClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewPexelsClient creates the Pexels adapter. An empty API key disables
// the adapter without error.
func NewPexelsClient(apiKey, baseURL string) *PexelsClient {
	return &PexelsClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Name returns the provider identifier
func (c *PexelsClient) Name() string {
	return "pexels"
}

type pexelsResponse struct {
	Photos []struct {
		Alt string `json:"alt"`
		Src struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

// Search issues English-language query variants and returns the
// top-scoring candidate by alt-text keywords
func (c *PexelsClient) Search(ctx context.Context, koreanName, englishName string) (*domain.ImageResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing Pexels API key", domain.ErrProviderUnavailable)
	}

	queries := stockQueryVariants(englishName)

	var best *domain.ImageResult
	for _, query := range queries {
		decoded, err := c.fetch(ctx, query)
		if err != nil {
			log.Printf("[PEXELS] query %q failed: %v", query, err)
			continue
		}

		for _, photo := range decoded.Photos {
			score := scoreStockCandidate(photo.Alt, englishName)
			if best == nil || score > best.Score {
				best = &domain.ImageResult{
					URL:      photo.Src.Large,
					Provider: c.Name(),
					Score:    score,
					Accuracy: accuracyFromScore(score),
				}
			}
		}

		if best != nil && best.Accuracy == domain.AccuracyHigh {
			break
		}
	}

	if best == nil {
		return nil, nil
	}
	return best, nil
}

// fetch executes one photo search query
func (c *PexelsClient) fetch(ctx context.Context, query string) (*pexelsResponse, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", "10")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var decoded pexelsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &decoded, nil
}
