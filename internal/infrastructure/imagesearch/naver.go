package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kmenu/backend/internal/domain"
	"golang.org/x/time/rate"
)

// htmlTagRegex strips the <b> markup Naver embeds in result titles
var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

// NaverClient is the Korean-specialized image search adapter, backed by
// the Naver OpenAPI image search
type NaverClient struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	baseURL      string
	maxAlternate int
	rateLimiter  *rate.Limiter
}

// NewNaverClient creates the Korean-specialized adapter. Missing
// credentials disable the adapter without error; Search then reports
// ErrProviderUnavailable and the waterfall moves on.
func NewNaverClient(clientID, clientSecret, baseURL string, maxAlternate int) *NaverClient {
	if maxAlternate <= 0 {
		maxAlternate = 3
	}

	return &NaverClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		maxAlternate: maxAlternate,
		rateLimiter:  rate.NewLimiter(rate.Limit(5), 10),
	}
}

// Name returns the provider identifier
func (c *NaverClient) Name() string {
	return "naver"
}

// naverResponse is the provider-specific result shape
type naverResponse struct {
	Total int `json:"total"`
	Items []struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		Thumbnail string `json:"thumbnail"`
	} `json:"items"`
}

// Search issues Korean-language query variants and returns the
// highest-scoring non-excluded candidate, or nil when nothing relevant
// was found
func (c *NaverClient) Search(ctx context.Context, koreanName, englishName string) (*domain.ImageResult, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("%w: missing Naver credentials", domain.ErrProviderUnavailable)
	}
	if koreanName == "" {
		return nil, domain.ErrInvalidRequest
	}

	queries := []string{
		koreanName,
		koreanName + " 음식",
		koreanName + " 요리",
		koreanName + " 맛집 음식",
	}

	return c.searchQueries(ctx, queries, koreanName)
}

// SearchAlternates tries a bounded set of recipe-oriented phrasings,
// used by the waterfall only after the primary providers all failed
func (c *NaverClient) SearchAlternates(ctx context.Context, koreanName, englishName string) (*domain.ImageResult, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, fmt.Errorf("%w: missing Naver credentials", domain.ErrProviderUnavailable)
	}

	queries := []string{
		koreanName + " 레시피",
		koreanName + " 만드는 법",
	}
	if englishName != "" {
		queries = append(queries, englishName+" recipe korean")
	}
	if len(queries) > c.maxAlternate {
		queries = queries[:c.maxAlternate]
	}

	return c.searchQueries(ctx, queries, koreanName)
}

// searchQueries runs each query in order and keeps the overall best
// candidate. Ties keep the first encountered in the provider's original
// result order.
func (c *NaverClient) searchQueries(ctx context.Context, queries []string, koreanName string) (*domain.ImageResult, error) {
	var best *domain.ImageResult

	for _, query := range queries {
		candidates, err := c.fetch(ctx, query)
		if err != nil {
			log.Printf("[NAVER] query %q failed: %v", query, err)
			continue
		}

		for _, candidate := range candidates {
			if isExcludedDomain(candidate.Link) {
				continue
			}

			score := scoreKoreanCandidate(candidate, koreanName)
			if best == nil || score > best.Score {
				best = &domain.ImageResult{
					URL:      candidate.Link,
					Provider: c.Name(),
					Score:    score,
					Accuracy: koreanAccuracy(candidate, score),
				}
			}
		}

		// An authentic blog hit will not be beaten by later variants
		if best != nil && best.Accuracy == domain.AccuracyHigh {
			break
		}
	}

	if best == nil {
		return nil, nil
	}

	log.Printf("[NAVER] best candidate for %q: score=%d accuracy=%s", koreanName, best.Score, best.Accuracy)
	return best, nil
}

// fetch executes one image search query
func (c *NaverClient) fetch(ctx context.Context, query string) ([]koreanCandidate, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("display", "10")
	params.Add("sort", "sim")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

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

	var decoded naverResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]koreanCandidate, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		candidates = append(candidates, koreanCandidate{
			Title: strings.TrimSpace(htmlTagRegex.ReplaceAllString(item.Title, "")),
			Link:  item.Link,
		})
	}

	return candidates, nil
}
