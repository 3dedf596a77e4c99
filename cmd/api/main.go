// Package main implements the HTTP API server for prepsearch.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/dsjohal14/prepsearch/internal/http"
	"github.com/dsjohal14/prepsearch/internal/libs/config"
	"github.com/dsjohal14/prepsearch/internal/libs/obs"
	"github.com/dsjohal14/prepsearch/internal/scope/db"
	"github.com/dsjohal14/prepsearch/internal/scope/search"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	// Test repository
	repo, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.TestsSource).Msg("failed to open test repository")
	}
	defer func() { _ = repo.Close() }()
	logger.Info().Str("source", repo.Name()).Int("fetch_limit", cfg.FetchLimit).Msg("test repository ready")

	session := search.NewSession(search.SessionConfig{
		Repository:   repo,
		Logger:       obs.Logger("search"),
		Metrics:      metrics,
		Limit:        cfg.FetchLimit,
		FetchTimeout: cfg.FetchTimeout,
	})

	// Build the index in the background; searches see an empty index until it is ready
	go func() {
		if err := session.Open(ctx); err != nil {
			logger.Warn().Err(err).Msg("initial index build failed, waiting for reload")
		}
	}()

	// Create HTTP handler
	handler := apihttp.NewHandler(session, logger)

	// Setup router
	r := setupRouter(handler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

func setupRouter(h *apihttp.Handler, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Post("/session/open", h.HandleOpen)
	r.Post("/session/reload", h.HandleReload)
	r.Post("/search", h.HandleSearch)
	r.Get("/suggest", h.HandleSuggest)
	r.Post("/highlight", h.HandleHighlight)
	r.Method(http.MethodGet, "/metrics", metrics)

	return r
}
