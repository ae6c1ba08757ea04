package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Gemini    GeminiConfig
	Naver     NaverConfig
	Unsplash  UnsplashConfig
	Pexels    PexelsConfig
	Pricing   PricingConfig
	Limits    LimitsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// GeminiConfig holds the generative vision/text model configuration
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NaverConfig holds the Korean-specialized image search configuration
type NaverConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
}

// UnsplashConfig holds the Unsplash stock photo configuration.
// An empty access key disables the adapter without error.
type UnsplashConfig struct {
	AccessKey string `mapstructure:"access_key"`
	BaseURL   string `mapstructure:"base_url"`
}

// PexelsConfig holds the Pexels stock photo configuration.
// An empty API key disables the adapter without error.
type PexelsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// PricingConfig holds the fixed linear token cost model. Rates are
// configuration constants, never computed per call, and the AUD figure
// is a fixed multiplier rather than a live exchange rate.
type PricingConfig struct {
	PromptPer1K     float64 `mapstructure:"prompt_per_1k"`     // USD per 1K prompt tokens
	CompletionPer1K float64 `mapstructure:"completion_per_1k"` // USD per 1K completion tokens
	AUDPerUSD       float64 `mapstructure:"aud_per_usd"`

	// Estimated tokens charged for each generative dish synthesis,
	// since that cost is not separately measured
	SynthesisPromptTokens     int `mapstructure:"synthesis_prompt_tokens"`
	SynthesisCompletionTokens int `mapstructure:"synthesis_completion_tokens"`
}

// LimitsConfig holds product and pipeline limits
type LimitsConfig struct {
	MaxMenuItems      int           `mapstructure:"max_menu_items"`
	FreeAnalyses      int           `mapstructure:"free_analyses"`
	ProbeTimeout      time.Duration `mapstructure:"probe_timeout"`
	MaxAlternateTries int           `mapstructure:"max_alternate_tries"`
	StockFallbackPool int           `mapstructure:"stock_fallback_pool"`
	ImageCacheTTL     time.Duration `mapstructure:"image_cache_ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  int `mapstructure:"per_ip"`
	Gemini int `mapstructure:"gemini"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/kmenu/")

	// Environment variable settings
	v.SetEnvPrefix("KMENU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	// Secrets have no meaningful default, but viper only maps env vars
	// for keys it knows about
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("naver.client_id", "")
	v.SetDefault("naver.client_secret", "")
	v.SetDefault("unsplash.access_key", "")
	v.SetDefault("pexels.api_key", "")

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "30s")

	// Image provider defaults
	v.SetDefault("naver.base_url", "https://openapi.naver.com/v1/search/image")
	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	v.SetDefault("pexels.base_url", "https://api.pexels.com/v1")

	// Pricing defaults (USD per 1K tokens, fixed AUD multiplier)
	v.SetDefault("pricing.prompt_per_1k", 0.00025)
	v.SetDefault("pricing.completion_per_1k", 0.001)
	v.SetDefault("pricing.aud_per_usd", 1.55)
	v.SetDefault("pricing.synthesis_prompt_tokens", 800)
	v.SetDefault("pricing.synthesis_completion_tokens", 400)

	// Limits defaults
	v.SetDefault("limits.max_menu_items", 3)
	v.SetDefault("limits.free_analyses", 5)
	v.SetDefault("limits.probe_timeout", "3s")
	v.SetDefault("limits.max_alternate_tries", 3)
	v.SetDefault("limits.stock_fallback_pool", 5)
	v.SetDefault("limits.image_cache_ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.gemini", 1000)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set KMENU_GEMINI_API_KEY)")
	}

	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set KMENU_DATABASE_URL)")
	}

	if config.Limits.MaxMenuItems <= 0 {
		return fmt.Errorf("limits.max_menu_items must be positive, got: %d", config.Limits.MaxMenuItems)
	}

	if config.Pricing.AUDPerUSD <= 0 {
		return fmt.Errorf("pricing.aud_per_usd must be positive, got: %f", config.Pricing.AUDPerUSD)
	}

	return nil
}
