package http

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kmenu/backend/internal/domain"
)

// MenuAnalyzer is the usecase surface the handlers need
type MenuAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType, sessionID string) (*domain.AnalysisResponse, error)
	RemainingAnalyses(ctx context.Context, sessionID string) (used, remaining int, err error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	menu MenuAnalyzer
}

// NewHandler creates a new HTTP handler
func NewHandler(menu MenuAnalyzer) *Handler {
	return &Handler{menu: menu}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "kmenu-backend",
		"version": "1.0.0",
	})
}

// analyzeRequest is the request body for menu analysis
type analyzeRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mimeType"`
}

// AnalyzeMenu handles menu photo analysis requests
func (h *Handler) AnalyzeMenu(c *gin.Context) {
	if h.menu == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Menu analysis not configured",
		})
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "image is required as a base64 string",
		})
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "image is not valid base64",
		})
		return
	}

	response, err := h.menu.Analyze(c.Request.Context(), image, req.MimeType, sessionID(c))
	if err != nil {
		h.writeAnalyzeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Usage reports the session's free-tier consumption
func (h *Handler) Usage(c *gin.Context) {
	if h.menu == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Menu analysis not configured",
		})
		return
	}

	used, remaining, err := h.menu.RemainingAnalyses(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"used":      used,
		"remaining": remaining,
	})
}

// writeAnalyzeError maps pipeline errors to HTTP responses. Only the
// too-many-items rejection and a total failure reach the client; every
// other failure already degraded gracefully inside the pipeline.
func (h *Handler) writeAnalyzeError(c *gin.Context, err error) {
	if tooMany, ok := domain.IsTooManyItems(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    "too many menu items, please retry with a smaller photo",
			"detected": tooMany.Detected,
			"limit":    tooMany.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUsageLimitExceeded):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": "free usage limit exceeded, please upgrade",
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "menu analysis failed"})
	}
}

// sessionID identifies the caller for free-tier accounting
func sessionID(c *gin.Context) string {
	if id := c.GetHeader("X-Session-ID"); id != "" {
		return id
	}
	return "anonymous"
}

// decodeImage accepts plain base64 or a data URI payload
func decodeImage(payload string) ([]byte, error) {
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}
