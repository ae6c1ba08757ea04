package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kmenu/backend/config"
	"github.com/kmenu/backend/internal/domain"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()
	os.Exit(exitCode)
}

// stubAnalyzer scripts the usecase surface behind the handlers
type stubAnalyzer struct {
	response *domain.AnalysisResponse
	err      error

	used      int
	remaining int
	usageErr  error

	lastSession  string
	lastMimeType string
	lastImage    []byte
}

func (s *stubAnalyzer) Analyze(ctx context.Context, image []byte, mimeType, sessionID string) (*domain.AnalysisResponse, error) {
	s.lastImage = image
	s.lastMimeType = mimeType
	s.lastSession = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubAnalyzer) RemainingAnalyses(ctx context.Context, sessionID string) (int, int, error) {
	s.lastSession = sessionID
	if s.usageErr != nil {
		return 0, 0, s.usageErr
	}
	return s.used, s.remaining, nil
}

// setupTestRouter creates a test router around a scripted analyzer
func setupTestRouter(analyzer MenuAnalyzer) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000", "https://*.kmenu.app"},
		},
	}

	return SetupRouter(cfg, NewHandler(analyzer))
}

func analyzeBody(t *testing.T, image []byte, mimeType string) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"image":    base64.StdEncoding.EncodeToString(image),
		"mimeType": mimeType,
	})
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(&stubAnalyzer{})

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "kmenu-backend" {
			t.Errorf("service = %v, want kmenu-backend", response["service"])
		}
	})
}

func TestAnalyzeMenuEndpoint(t *testing.T) {
	t.Run("returns the analysis on success", func(t *testing.T) {
		stub := &stubAnalyzer{
			response: &domain.AnalysisResponse{
				IsKoreanMenu: true,
				Dishes: []domain.DetectedDish{
					{KoreanName: "비빔밥", EnglishName: "Bibimbap", Confidence: 1.0, Source: domain.SourceDatabase},
				},
			},
		}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", analyzeBody(t, []byte("photo"), "image/jpeg"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Session-ID", "session-42")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
		}

		var response domain.AnalysisResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if !response.IsKoreanMenu {
			t.Error("isKoreanMenu = false, want true")
		}
		if len(response.Dishes) != 1 || response.Dishes[0].EnglishName != "Bibimbap" {
			t.Errorf("dishes = %+v, want one Bibimbap", response.Dishes)
		}
		if stub.lastSession != "session-42" {
			t.Errorf("session = %q, want session-42", stub.lastSession)
		}
		if string(stub.lastImage) != "photo" {
			t.Errorf("image = %q, want decoded photo bytes", stub.lastImage)
		}
		if stub.lastMimeType != "image/jpeg" {
			t.Errorf("mimeType = %q, want image/jpeg", stub.lastMimeType)
		}
	})

	t.Run("defaults the session for anonymous callers", func(t *testing.T) {
		stub := &stubAnalyzer{response: &domain.AnalysisResponse{}}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", analyzeBody(t, []byte("photo"), ""))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if stub.lastSession != "anonymous" {
			t.Errorf("session = %q, want anonymous", stub.lastSession)
		}
	})

	t.Run("accepts data URI payloads", func(t *testing.T) {
		stub := &stubAnalyzer{response: &domain.AnalysisResponse{}}
		router := setupTestRouter(stub)

		payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("photo"))
		body, _ := json.Marshal(map[string]string{"image": payload})

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if string(stub.lastImage) != "photo" {
			t.Errorf("image = %q, want decoded photo bytes", stub.lastImage)
		}
	})

	t.Run("rejects missing image field", func(t *testing.T) {
		router := setupTestRouter(&stubAnalyzer{})

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		router := setupTestRouter(&stubAnalyzer{})

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", bytes.NewBufferString(`{"image":"not-valid-%%%"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("maps oversized menus to 422 with the counts", func(t *testing.T) {
		stub := &stubAnalyzer{err: &domain.TooManyItemsError{Detected: 7, Limit: 3}}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", analyzeBody(t, []byte("photo"), "image/jpeg"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["detected"] != float64(7) {
			t.Errorf("detected = %v, want 7", response["detected"])
		}
		if response["limit"] != float64(3) {
			t.Errorf("limit = %v, want 3", response["limit"])
		}
	})

	t.Run("maps exhausted free tier to 402", func(t *testing.T) {
		stub := &stubAnalyzer{err: domain.ErrUsageLimitExceeded}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", analyzeBody(t, []byte("photo"), "image/jpeg"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusPaymentRequired {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusPaymentRequired)
		}
	})

	t.Run("maps pipeline failures to 500 without detail", func(t *testing.T) {
		stub := &stubAnalyzer{err: domain.ErrProviderUnavailable}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", analyzeBody(t, []byte("photo"), "image/jpeg"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["error"] != "menu analysis failed" {
			t.Errorf("error = %v, want generic message", response["error"])
		}
	})

	t.Run("returns 503 when the service is not configured", func(t *testing.T) {
		router := setupTestRouter(nil)

		req, _ := http.NewRequest("POST", "/api/v1/menu/analyze", analyzeBody(t, []byte("photo"), "image/jpeg"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestUsageEndpoint(t *testing.T) {
	t.Run("reports used and remaining for the session", func(t *testing.T) {
		stub := &stubAnalyzer{used: 2, remaining: 3}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("GET", "/api/v1/menu/usage", nil)
		req.Header.Set("X-Session-ID", "session-42")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["used"] != float64(2) || response["remaining"] != float64(3) {
			t.Errorf("used/remaining = %v/%v, want 2/3", response["used"], response["remaining"])
		}
		if stub.lastSession != "session-42" {
			t.Errorf("session = %q, want session-42", stub.lastSession)
		}
	})

	t.Run("returns 500 when the usage store fails", func(t *testing.T) {
		stub := &stubAnalyzer{usageErr: domain.ErrProviderUnavailable}
		router := setupTestRouter(stub)

		req, _ := http.NewRequest("GET", "/api/v1/menu/usage", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}
