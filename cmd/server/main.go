package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"commuterhythm/internal/cache"
	"commuterhythm/internal/config"
	"commuterhythm/internal/handlers"
	"commuterhythm/internal/i18n"
	"commuterhythm/internal/services"
	"commuterhythm/internal/session"
)

const (
	curationPollInterval = 30 * time.Second
	sweepInterval        = time.Minute
	shutdownTimeout      = 15 * time.Second

	// Upper bound for one fetch, above the HTTP timeout of the model client
	fetchTimeout = 90 * time.Second
)

func main() {
	// Load .env file for local development
	_ = godotenv.Load()

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	if !cfg.HasCredentials() {
		slog.Warn("Curation model credentials are not configured; issues will fail until they are set",
			"backend", cfg.GeminiBackend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize session snapshot cache
	snapshotCache, err := cache.New(cfg.ValkeyURL, "commuterhythm")
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer snapshotCache.Close()

	localizer := i18n.NewLocalizer(cfg.DefaultLocale)
	recommender := services.NewGeminiServiceFromConfig(cfg)

	fetchLimit := fetchTimeout
	if cfg.GeminiTimeout+10*time.Second > fetchLimit {
		fetchLimit = cfg.GeminiTimeout + 10*time.Second
	}

	store := session.NewStore(session.Options{
		Client:       recommender,
		Tokens:       session.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL),
		Cache:        snapshotCache,
		Localizer:    localizer,
		TTL:          cfg.SessionTTL,
		FetchTimeout: fetchLimit,
	})
	store.StartSweeper(ctx, sweepInterval)

	config.LoadCurationConfig(cfg.CurationConfigPath)
	config.StartCurationConfigWatcher(ctx, cfg.CurationConfigPath, curationPollInterval)

	router := handlers.NewRouter(handlers.RouterOptions{
		Store:                 store,
		Cache:                 snapshotCache,
		Localizer:             localizer,
		Curation:              config.GetCurationConfig,
		SecureCookies:         cfg.IsProduction(),
		CredentialsConfigured: cfg.HasCredentials(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server",
			"port", cfg.Port,
			"backend", cfg.GeminiBackend,
			"model", cfg.GeminiModel,
			"grounding", cfg.GeminiGrounding)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}
