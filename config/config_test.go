package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("KMENU_SERVER_PORT")
		os.Unsetenv("KMENU_SERVER_ENVIRONMENT")
		os.Unsetenv("KMENU_DATABASE_URL")
		os.Unsetenv("KMENU_DATABASE_MAX_CONNS")
		os.Unsetenv("KMENU_GEMINI_API_KEY")
		os.Unsetenv("KMENU_GEMINI_MODEL")
		os.Unsetenv("KMENU_GEMINI_TIMEOUT")
		os.Unsetenv("KMENU_NAVER_CLIENT_ID")
		os.Unsetenv("KMENU_NAVER_CLIENT_SECRET")
		os.Unsetenv("KMENU_UNSPLASH_ACCESS_KEY")
		os.Unsetenv("KMENU_PEXELS_API_KEY")
		os.Unsetenv("KMENU_PRICING_AUD_PER_USD")
		os.Unsetenv("KMENU_LIMITS_MAX_MENU_ITEMS")
		os.Unsetenv("KMENU_LIMITS_FREE_ANALYSES")
		os.Unsetenv("KMENU_LIMITS_IMAGE_CACHE_TTL")
		os.Unsetenv("KMENU_RATELIMIT_PER_IP")
	}

	setRequired := func() {
		os.Setenv("KMENU_GEMINI_API_KEY", "test-key")
		os.Setenv("KMENU_DATABASE_URL", "postgres://localhost:5432/kmenu_test")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		setRequired()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Database.MaxConns != 10 {
			t.Errorf("Database.MaxConns = %d, want 10", cfg.Database.MaxConns)
		}
		if cfg.Gemini.Model != "gemini-1.5-flash" {
			t.Errorf("Gemini.Model = %s, want gemini-1.5-flash", cfg.Gemini.Model)
		}
		if cfg.Gemini.Timeout != 30*time.Second {
			t.Errorf("Gemini.Timeout = %v, want 30s", cfg.Gemini.Timeout)
		}
		if cfg.Naver.BaseURL != "https://openapi.naver.com/v1/search/image" {
			t.Errorf("Naver.BaseURL = %s, want https://openapi.naver.com/v1/search/image", cfg.Naver.BaseURL)
		}
		if cfg.Pricing.PromptPer1K != 0.00025 {
			t.Errorf("Pricing.PromptPer1K = %f, want 0.00025", cfg.Pricing.PromptPer1K)
		}
		if cfg.Pricing.AUDPerUSD != 1.55 {
			t.Errorf("Pricing.AUDPerUSD = %f, want 1.55", cfg.Pricing.AUDPerUSD)
		}
		if cfg.Pricing.SynthesisPromptTokens != 800 {
			t.Errorf("Pricing.SynthesisPromptTokens = %d, want 800", cfg.Pricing.SynthesisPromptTokens)
		}
		if cfg.Limits.MaxMenuItems != 3 {
			t.Errorf("Limits.MaxMenuItems = %d, want 3", cfg.Limits.MaxMenuItems)
		}
		if cfg.Limits.FreeAnalyses != 5 {
			t.Errorf("Limits.FreeAnalyses = %d, want 5", cfg.Limits.FreeAnalyses)
		}
		if cfg.Limits.ProbeTimeout != 3*time.Second {
			t.Errorf("Limits.ProbeTimeout = %v, want 3s", cfg.Limits.ProbeTimeout)
		}
		if cfg.Limits.ImageCacheTTL != 24*time.Hour {
			t.Errorf("Limits.ImageCacheTTL = %v, want 24h", cfg.Limits.ImageCacheTTL)
		}
		if cfg.RateLimit.PerIP != 60 {
			t.Errorf("RateLimit.PerIP = %d, want 60", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		setRequired()
		os.Setenv("KMENU_SERVER_PORT", "9090")
		os.Setenv("KMENU_SERVER_ENVIRONMENT", "production")
		os.Setenv("KMENU_GEMINI_MODEL", "gemini-1.5-pro")
		os.Setenv("KMENU_GEMINI_TIMEOUT", "45s")
		os.Setenv("KMENU_NAVER_CLIENT_ID", "naver-id")
		os.Setenv("KMENU_NAVER_CLIENT_SECRET", "naver-secret")
		os.Setenv("KMENU_PRICING_AUD_PER_USD", "1.6")
		os.Setenv("KMENU_LIMITS_FREE_ANALYSES", "10")
		os.Setenv("KMENU_LIMITS_IMAGE_CACHE_TTL", "12h")
		os.Setenv("KMENU_RATELIMIT_PER_IP", "120")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Gemini.Model != "gemini-1.5-pro" {
			t.Errorf("Gemini.Model = %s, want gemini-1.5-pro", cfg.Gemini.Model)
		}
		if cfg.Gemini.Timeout != 45*time.Second {
			t.Errorf("Gemini.Timeout = %v, want 45s", cfg.Gemini.Timeout)
		}
		if cfg.Naver.ClientID != "naver-id" {
			t.Errorf("Naver.ClientID = %s, want naver-id", cfg.Naver.ClientID)
		}
		if cfg.Pricing.AUDPerUSD != 1.6 {
			t.Errorf("Pricing.AUDPerUSD = %f, want 1.6", cfg.Pricing.AUDPerUSD)
		}
		if cfg.Limits.FreeAnalyses != 10 {
			t.Errorf("Limits.FreeAnalyses = %d, want 10", cfg.Limits.FreeAnalyses)
		}
		if cfg.Limits.ImageCacheTTL != 12*time.Hour {
			t.Errorf("Limits.ImageCacheTTL = %v, want 12h", cfg.Limits.ImageCacheTTL)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation when Gemini API key is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("KMENU_DATABASE_URL", "postgres://localhost:5432/kmenu_test")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
	})

	t.Run("fails validation when database URL is missing", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("KMENU_GEMINI_API_KEY", "test-key")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing database URL")
		}
	})

	t.Run("fails validation for non-positive menu item limit", func(t *testing.T) {
		cleanupEnv()
		setRequired()
		os.Setenv("KMENU_LIMITS_MAX_MENU_ITEMS", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for max_menu_items = 0")
		}
	})

	t.Run("fails validation for non-positive AUD multiplier", func(t *testing.T) {
		cleanupEnv()
		setRequired()
		os.Setenv("KMENU_PRICING_AUD_PER_USD", "-1")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for negative aud_per_usd")
		}
	})
}
