// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/pressroom-go/internal/aigen"
	"github.com/olegiv/pressroom-go/internal/article"
	"github.com/olegiv/pressroom-go/internal/cache"
	"github.com/olegiv/pressroom-go/internal/config"
	"github.com/olegiv/pressroom-go/internal/draft"
	"github.com/olegiv/pressroom-go/internal/handler/api"
	"github.com/olegiv/pressroom-go/internal/logging"
	"github.com/olegiv/pressroom-go/internal/middleware"
	"github.com/olegiv/pressroom-go/internal/notify"
	"github.com/olegiv/pressroom-go/internal/quiz"
	"github.com/olegiv/pressroom-go/internal/review"
	"github.com/olegiv/pressroom-go/internal/scheduler"
	"github.com/olegiv/pressroom-go/internal/service"
	"github.com/olegiv/pressroom-go/internal/session"
	"github.com/olegiv/pressroom-go/internal/store"
	"github.com/olegiv/pressroom-go/internal/transfer"
	"github.com/olegiv/pressroom-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	runImport := flag.Bool("import", false, "Import articles from a legacy MySQL CMS and exit")
	importDryRun := flag.Bool("import-dry-run", false, "Read the legacy source without writing (with -import)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "pressroom - Editorial Workflow and Quiz Engine\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PRESSROOM_DB_PATH            SQLite database path (default: ./data/pressroom.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PRESSROOM_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PRESSROOM_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PRESSROOM_REDIS_URL          Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PRESSROOM_OPENAI_API_KEY     OpenAI API key for draft assistance (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PRESSROOM_IMPORT_MYSQL_DSN   MySQL DSN of a legacy CMS (used with -import)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/pressroom-go\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("pressroom %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(*runImport, *importDryRun); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(runImport, importDryRun bool) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	version.Version = appVersion
	version.GitCommit = appGitCommit
	version.BuildTime = appBuildTime

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	eventService := service.NewEventService(db)

	// One-shot legacy import mode
	if runImport {
		if cfg.ImportMySQLDSN == "" {
			return errors.New("-import requires PRESSROOM_IMPORT_MYSQL_DSN")
		}
		importer := transfer.NewImporter(db, eventService, logger)
		result, err := importer.Run(ctx, transfer.Options{
			DSN:    cfg.ImportMySQLDSN,
			DryRun: importDryRun,
		})
		if err != nil {
			return fmt.Errorf("running legacy import: %w", err)
		}
		slog.Info("legacy import finished",
			"total", result.Total,
			"imported", result.Imported,
			"skipped", result.Skipped,
			"failed", result.Failed,
			"dry_run", importDryRun,
		)
		return nil
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize cache backend. A broken Redis falls back to memory so
	// leaderboards keep serving.
	cacheOpts := cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	}
	cacher, err := cache.New(cacheOpts)
	switch {
	case err != nil:
		slog.Warn("cache backend unavailable, using memory fallback",
			"url", cache.SanitizeRedisURL(cfg.RedisURL), "error", err)
		cacheOpts.RedisURL = ""
		if cacher, err = cache.New(cacheOpts); err != nil {
			return fmt.Errorf("initializing memory cache: %w", err)
		}
	case cfg.UseRedisCache():
		slog.Info("cache initialized", "backend", "redis", "url", cache.SanitizeRedisURL(cfg.RedisURL))
	default:
		slog.Info("cache initialized", "backend", "memory")
	}
	defer func() {
		if err := cacher.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// Initialize notification hub and service
	hub := notify.NewHub(logger)
	go hub.Run()
	defer hub.Stop()
	notifier := notify.NewService(db, hub, logger)

	// Initialize domain services
	queries := store.New(db)
	draftService := draft.NewService(db, logger)
	autosaver := draft.NewAutosaver(draftService, logger, cfg.AutosaveInterval())
	autosaver.Start()
	defer autosaver.Stop()

	gate := review.NewGate(db, notifier, logger)
	articleService := article.NewService(db, cacher, notifier, logger)
	quizService := quiz.NewService(db)
	badges := quiz.NewBadgeEvaluator(notifier, logger, cfg.BadgeRankThreshold)
	recorder := quiz.NewRecorder(db, badges, logger, quiz.RecorderConfig{
		Timeout: cfg.AttemptTimeout(),
	})
	ranker := quiz.NewRanker(db, cacher, logger)
	searchService := service.NewSearchService(db)

	aiService := aigen.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	if aiService.Enabled() {
		slog.Info("AI draft assistance enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Info("AI draft assistance disabled, no API key configured")
	}

	// Initialize and start scheduler
	sched := scheduler.New(db, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Config{
		DB:        db,
		Sessions:  sessionManager,
		Drafts:    draftService,
		Autosaver: autosaver,
		Gate:      gate,
		Articles:  articleService,
		Quizzes:   quizService,
		Recorder:  recorder,
		Ranker:    ranker,
		Notifier:  notifier,
		Hub:       hub,
		Search:    searchService,
		Events:    eventService,
		AI:        aiService,
		Logger:    logger,
	})

	// Global per-IP rate limiter (defense-in-depth in front of the
	// per-user limiter on API routes)
	globalRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	slog.Info("global rate limiter initialized", "rate", "10 req/s", "burst", 20)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	// Request path middleware for logging context
	r.Use(middleware.RequestPath)

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, queries))

	// Health check (public, for uptime monitoring)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = fmt.Fprintf(w, `{"status":"ok","version":%q}`, appVersion)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// REST API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(globalRateLimiter.Middleware())
		r.Use(middleware.UserRateLimit(5.0, 10))
		r.Mount("/", apiHandler.Routes())
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Flush queued autosaves before the listener closes
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	autosaver.Flush(flushCtx)
	flushCancel()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
