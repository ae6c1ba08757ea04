package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kmenu/backend/config"
	httpDelivery "github.com/kmenu/backend/internal/delivery/http"
	"github.com/kmenu/backend/internal/domain"
	"github.com/kmenu/backend/internal/infrastructure/cache"
	"github.com/kmenu/backend/internal/infrastructure/gemini"
	"github.com/kmenu/backend/internal/infrastructure/imagesearch"
	"github.com/kmenu/backend/internal/infrastructure/postgres"
	"github.com/kmenu/backend/internal/usecase"
)

func main() {
	// Local development reads secrets from .env; ignore when absent
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting KMenu Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	ctx := context.Background()

	// Persistent store
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pool.Close()
	log.Printf("Connected to Postgres (max conns: %d)", cfg.Database.MaxConns)

	foodRepo := postgres.NewFoodRepository(pool)
	analysisRepo := postgres.NewAnalysisRepository(pool)
	usageRepo := postgres.NewUsageRepository(pool)

	// Generative vision/text client
	pricing := gemini.Pricing{
		PromptPer1K:     cfg.Pricing.PromptPer1K,
		CompletionPer1K: cfg.Pricing.CompletionPer1K,
		AUDPerUSD:       cfg.Pricing.AUDPerUSD,
	}
	geminiClient := gemini.NewClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.BaseURL,
		cfg.Gemini.Timeout,
		cfg.Limits.MaxMenuItems,
		pricing,
	)
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}
	log.Printf("Gemini model: %s", cfg.Gemini.Model)

	// Image providers in waterfall priority order
	naverClient := imagesearch.NewNaverClient(
		cfg.Naver.ClientID,
		cfg.Naver.ClientSecret,
		cfg.Naver.BaseURL,
		cfg.Limits.MaxAlternateTries,
	)
	unsplashClient := imagesearch.NewUnsplashClient(
		cfg.Unsplash.AccessKey,
		cfg.Unsplash.BaseURL,
		cfg.Limits.StockFallbackPool,
	)
	pexelsClient := imagesearch.NewPexelsClient(cfg.Pexels.APIKey, cfg.Pexels.BaseURL)

	providers := []domain.ImageProvider{naverClient, unsplashClient, pexelsClient}
	for _, p := range providers {
		log.Printf("Image provider registered: %s", p.Name())
	}

	imageService := usecase.NewImageService(
		providers,
		naverClient,
		unsplashClient,
		imagesearch.NewProber(cfg.Limits.ProbeTimeout),
		cache.NewMemoryImageCache(),
		usecase.ImageServiceConfig{CacheTTL: cfg.Limits.ImageCacheTTL},
	)

	dishService := usecase.NewDishService(foodRepo, geminiClient, imageService)

	// Fixed per-synthesis cost estimate, priced once at startup
	estUSD, estAUD := geminiClient.CalculateCost(
		cfg.Pricing.SynthesisPromptTokens,
		cfg.Pricing.SynthesisCompletionTokens,
	)
	menuService := usecase.NewMenuService(
		geminiClient,
		dishService,
		analysisRepo,
		usageRepo,
		usecase.MenuServiceConfig{
			MaxMenuItems: cfg.Limits.MaxMenuItems,
			FreeAnalyses: cfg.Limits.FreeAnalyses,
			EstimatedSynthesisUsage: domain.TokenUsage{
				PromptTokens:     cfg.Pricing.SynthesisPromptTokens,
				CompletionTokens: cfg.Pricing.SynthesisCompletionTokens,
				TotalTokens:      cfg.Pricing.SynthesisPromptTokens + cfg.Pricing.SynthesisCompletionTokens,
				CostUSD:          estUSD,
				CostAUD:          estAUD,
			},
		},
	)

	log.Printf("Limits: max items=%d, free analyses=%d, probe timeout=%s",
		cfg.Limits.MaxMenuItems, cfg.Limits.FreeAnalyses, cfg.Limits.ProbeTimeout)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(menuService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
