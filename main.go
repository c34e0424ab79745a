package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"disastersheet/cache"
	"disastersheet/config"
	"disastersheet/gateway"
	"disastersheet/gemini"
	"disastersheet/handlers"
	"disastersheet/llm"
	"disastersheet/metrics"
	"disastersheet/openai"
	"disastersheet/stubllm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Apply the configured log level
	if lvl, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.Warnf("invalid LOG_LEVEL %q, keeping the default level", cfg.LogLevel)
	} else {
		log.SetLevel(lvl)
	}

	// Select the LLM provider
	client, model, err := newLLMClient(cfg)
	if err != nil {
		log.Fatalf("Failed to configure LLM provider: %v", err)
	}
	log.Infof("classifier LLM provider=%s model=%s cache_ttl=%s", client.SourceName(), model, cfg.CacheTTL)

	// Register metrics collectors
	metrics.Register()

	// Compose the gateway: one cache and one gateway instance for the whole
	// process, injected into the handlers.
	store := cache.New()
	gw := gateway.New(client, store, cfg.CacheTTL)

	// Initialize handlers
	h := handlers.NewHandlers(gw, client.SourceName(), cfg.MaxImagesPerRequest)

	// Setup HTTP server
	router := gin.Default()

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/classify", h.Classify)
		api.POST("/table", h.BuildTable)
		api.POST("/table/csv", h.ExportCSV)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

// newLLMClient builds the configured LLM provider and returns it with the
// model label to log. Unknown providers and missing API keys are rejected
// up front instead of failing on the first request.
func newLLMClient(cfg *config.Config) (llm.Client, string, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", errors.New("OPENAI_API_KEY environment variable is required")
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIMaxTokens), cfg.OpenAIModel, nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, "", errors.New("GEMINI_API_KEY environment variable is required")
		}
		return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel), cfg.GeminiModel, nil
	case "stub":
		return stubllm.NewClient(), "stub", nil
	default:
		return nil, "", fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
