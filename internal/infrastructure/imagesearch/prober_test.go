package imagesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kmenu/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	prober := NewProber(2 * time.Second)
	ctx := context.Background()

	t.Run("accepts live image URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("Content-Type", "image/jpeg")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		assert.NoError(t, prober.Probe(ctx, server.URL))
	})

	t.Run("rejects non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		err := prober.Probe(ctx, server.URL)
		assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	})

	t.Run("rejects wrong content type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := prober.Probe(ctx, server.URL)
		assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	})

	t.Run("rejects unreachable host", func(t *testing.T) {
		err := prober.Probe(ctx, "http://127.0.0.1:1/nothing.jpg")
		assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	})

	t.Run("rejects empty URL", func(t *testing.T) {
		err := prober.Probe(ctx, "")
		assert.True(t, errors.Is(err, domain.ErrValidationFailed))
	})
}
