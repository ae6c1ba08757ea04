package imagesearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kmenu/backend/internal/domain"
)

// Prober checks that a candidate image URL is live and actually serves
// an image. Failures are ErrValidationFailed so the waterfall can treat
// them as "try the next candidate", never as a pipeline failure.
type Prober struct {
	httpClient *http.Client
}

// NewProber creates a prober with a short bounded timeout
func NewProber(timeout time.Duration) *Prober {
	if timeout == 0 {
		timeout = 3 * time.Second
	}

	return &Prober{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Probe issues a HEAD request and accepts only a 2xx status with an
// image content type
func (p *Prober) Probe(ctx context.Context, url string) error {
	if url == "" {
		return domain.ErrValidationFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", domain.ErrValidationFailed, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: content type %q", domain.ErrValidationFailed, contentType)
	}

	return nil
}
