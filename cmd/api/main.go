package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/dm-engine/internal/config"
	"github.com/jwebster45206/dm-engine/internal/dm"
	"github.com/jwebster45206/dm-engine/internal/handlers"
	"github.com/jwebster45206/dm-engine/internal/logger"
	"github.com/jwebster45206/dm-engine/internal/middleware"
	"github.com/jwebster45206/dm-engine/internal/services"
	redisstore "github.com/jwebster45206/dm-engine/internal/storage"
	"github.com/jwebster45206/dm-engine/pkg/storage"
	"github.com/jwebster45206/dm-engine/pkg/textfilter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting DM Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_enabled", cfg.LLMEnabled(),
		"model", cfg.Model,
		"options_model", cfg.OptionsModel,
		"sessions_enabled", cfg.RedisURL != "")

	var llmService services.LLMService
	if cfg.LLMEnabled() {
		llmService = services.NewOpenRouterService(services.OpenRouterConfig{
			APIKey:    cfg.OpenRouterAPIKey,
			BaseURL:   cfg.OpenRouterBaseURL,
			SiteURL:   cfg.SiteURL,
			SiteTitle: cfg.SiteTitle,
		}, log)
		log.Info("Using OpenRouter LLM provider", "base_url", cfg.OpenRouterBaseURL)
	} else {
		log.Warn("OPENROUTER_API_KEY not set, answering with heuristics only")
	}

	var store storage.Storage
	if cfg.RedisURL != "" {
		redis := redisstore.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, cfg.SessionMaxTurns, log)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := redis.WaitForConnection(storageCtx); err != nil {
			storageCancel()
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		storageCancel()
		log.Info("Storage connection established successfully")
		store = redis
	}

	settings := dm.Settings{
		Models:        modelChain(cfg.Model, cfg.FallbackModel),
		OptionsModel:  cfg.OptionsModel,
		InlineOptions: cfg.InlineOptions,
	}
	if textfilter.AppliesTo(cfg.ContentRating) {
		settings.Filter = textfilter.New()
		log.Info("Profanity filter enabled", "content_rating", cfg.ContentRating)
	}
	dmService := dm.NewService(llmService, store, settings, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, log))
	mux.Handle("/metrics", promhttp.Handler())

	respondHandler := handlers.NewRespondHandler(dmService, log)
	mux.Handle("/v1/dm/respond", respondHandler)
	mux.Handle("/dm/respond", respondHandler)

	optionsHandler := handlers.NewOptionsHandler(dmService, log)
	mux.Handle("/v1/dm/options", optionsHandler)
	mux.Handle("/dm/options", optionsHandler)

	mux.Handle("/v1/dm/sessions/", handlers.NewSessionHandler(dmService, log))

	handler := middleware.Chain(mux,
		middleware.RequestID(log),
		middleware.Logger(log),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}

	log.Info("Server exited")
}

// modelChain lists the primary model then the fallback, without duplicates.
func modelChain(primary, fallback string) []string {
	models := []string{primary}
	if fallback != "" && fallback != primary {
		models = append(models, fallback)
	}
	return models
}
