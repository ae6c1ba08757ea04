package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/kmenu/backend/internal/domain"
)

// stockFallbackQuery is the last-resort generic query used when every
// dish-specific provider failed
const stockFallbackQuery = "korean food traditional cuisine"

// UnsplashClient is a generic stock photo adapter. It doubles as the
// waterfall's default last-resort stock source.
type UnsplashClient struct {
	httpClient   *http.Client
	accessKey    string
	baseURL      string
	fallbackPool int
}

// NewUnsplashClient creates the Unsplash adapter. An empty access key
// disables the adapter without error.
func NewUnsplashClient(accessKey, baseURL string, fallbackPool int) *UnsplashClient {
	if fallbackPool <= 0 {
		fallbackPool = 5
	}

	return &UnsplashClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		accessKey:    accessKey,
		baseURL:      baseURL,
		fallbackPool: fallbackPool,
	}
}

// Name returns the provider identifier
func (c *UnsplashClient) Name() string {
	return "unsplash"
}

type unsplashResponse struct {
	Results []struct {
		AltDescription string `json:"alt_description"`
		Description    string `json:"description"`
		URLs           struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}

// Search issues English-language query variants layered from specific to
// generic and returns the top-scoring candidate
func (c *UnsplashClient) Search(ctx context.Context, koreanName, englishName string) (*domain.ImageResult, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("%w: missing Unsplash access key", domain.ErrProviderUnavailable)
	}

	queries := stockQueryVariants(englishName)

	var best *domain.ImageResult
	for _, query := range queries {
		decoded, err := c.fetch(ctx, query, 10)
		if err != nil {
			log.Printf("[UNSPLASH] query %q failed: %v", query, err)
			continue
		}

		for _, result := range decoded.Results {
			alt := result.AltDescription
			if alt == "" {
				alt = result.Description
			}

			score := scoreStockCandidate(alt, englishName)
			if best == nil || score > best.Score {
				best = &domain.ImageResult{
					URL:      result.URLs.Regular,
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

// RandomStock returns a random pick among the top generic Korean food
// photos. Used only as the waterfall's final fallback; accuracy is
// always low because the photo is not of the requested dish.
func (c *UnsplashClient) RandomStock(ctx context.Context) (*domain.ImageResult, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("%w: missing Unsplash access key", domain.ErrProviderUnavailable)
	}

	decoded, err := c.fetch(ctx, stockFallbackQuery, c.fallbackPool)
	if err != nil {
		return nil, err
	}
	if len(decoded.Results) == 0 {
		return nil, nil
	}

	pick := decoded.Results[rand.Intn(len(decoded.Results))]
	return &domain.ImageResult{
		URL:      pick.URLs.Regular,
		Provider: c.Name(),
		Accuracy: domain.AccuracyLow,
	}, nil
}

// fetch executes one photo search query
func (c *UnsplashClient) fetch(ctx context.Context, query string, perPage int) (*unsplashResponse, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", fmt.Sprintf("%d", perPage))

	reqURL := fmt.Sprintf("%s/search/photos?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

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

	var decoded unsplashResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &decoded, nil
}

// stockQueryVariants layers queries from specific to generic
func stockQueryVariants(englishName string) []string {
	if englishName == "" {
		return []string{stockFallbackQuery}
	}
	return []string{
		"korean " + englishName,
		englishName + " korean food",
		"korean cuisine",
	}
}
