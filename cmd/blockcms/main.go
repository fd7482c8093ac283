// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
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

	"github.com/olegiv/blockcms/internal/cache"
	"github.com/olegiv/blockcms/internal/config"
	"github.com/olegiv/blockcms/internal/demo"
	"github.com/olegiv/blockcms/internal/handler"
	"github.com/olegiv/blockcms/internal/imaging"
	"github.com/olegiv/blockcms/internal/logging"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/model"
	"github.com/olegiv/blockcms/internal/render"
	"github.com/olegiv/blockcms/internal/sanitize"
	"github.com/olegiv/blockcms/internal/scheduler"
	"github.com/olegiv/blockcms/internal/section"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/session"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/version"
	"github.com/olegiv/blockcms/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "blockcms - section based content management\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_DB_PATH           SQLite database path (default: ./data/blockcms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SAVE_TIMEOUT      Save transaction budget (default: 10s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_TX_WAIT_TIMEOUT   SQLite lock wait (default: 5s)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_REQUIRE_HISTORY   Fail saves when revisions cannot be written\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_REDIS_URL         Redis URL for the page cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("blockcms %s\n", buildInfo())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	build := buildInfo()

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if cfg.DemoMode {
		if _, err := demo.ResetIfNeeded(cfg.DBPath, cfg.DataDir, time.Now()); err != nil {
			return fmt.Errorf("demo reset: %w", err)
		}
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	dbCfg := store.DefaultDBConfig()
	dbCfg.BusyTimeout = cfg.TxWaitTimeout
	db, err := store.NewDBWithConfig(cfg.DBPath, dbCfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// From here on WARN and ERROR logs also land in the event log.
	eventLog := logging.NewEventLogHandler(textHandler, db, logging.Options{})
	logger := slog.New(eventLog)
	slog.SetDefault(logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventLog.Close(ctx); err != nil {
			slog.Error("event log not flushed", "error", err, "dropped", eventLog.Dropped())
		}
	}()

	ctx := context.Background()

	var seed store.SeedResult
	if cfg.DoSeed || cfg.DemoMode {
		seed, err = store.Seed(ctx, db, store.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		})
		if err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Services
	registry := section.Default()
	events := service.NewEventService(db)
	content := service.NewContentService(db, service.Options{
		Normalizer:        sanitize.NewNormalizer(registry),
		SaveTimeout:       cfg.SaveTimeout,
		RequireHistory:    cfg.RequireHistory,
		RevisionListLimit: cfg.RevisionListLimit,
		Events:            events,
		Logger:            logger,
	})
	refs := service.NewReferenceService(db, registry)

	backend, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		// The page cache is optional; the site works without it.
		slog.Warn("page cache unavailable, falling back to memory", "error", err)
		backend = cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxSize})
	}
	defer func() { _ = backend.Close() }()
	pages := cache.NewPageCache(backend, cfg.CacheTTL, logger)
	content.SetInvalidator(pages)
	slog.Info("page cache initialized", "backend", cache.Backend(backend))

	if cfg.DemoMode {
		actor := service.Actor{UserID: seed.AdminID, Role: model.RoleAdmin}
		if err := demo.Populate(ctx, content, seed, actor); err != nil {
			slog.Warn("demo content not written", "error", err)
		}
	}

	sessionManager := session.New(db, session.Options{
		IsDev:           cfg.IsDevelopment(),
		CleanupInterval: 30 * time.Minute,
	})
	protector := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	writeLimiter := middleware.NewWriteRateLimiter(cfg.WriteRateLimit, cfg.WriteBurst)

	imgCfg := imaging.DefaultConfig()
	imgCfg.MaxWidth = cfg.PasteImageMaxWidth
	processor := imaging.NewProcessor(imgCfg)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	sched := scheduler.New(logger)
	if err := sched.RegisterCoreJobs(scheduler.Deps{
		Publisher:      content,
		Events:         events,
		EventRetention: cfg.EventRetention(),
		Cleaners:       []scheduler.Cleaner{protector, writeLimiter},
	}); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}
	sched.Start()

	// Handlers
	contentHandler := handler.NewContentHandler(content, refs)
	authHandler := handler.NewAuthHandler(db, sessionManager, events, protector)
	jobsHandler := handler.NewJobsHandler(sched.Registry(), events)
	imageHandler := handler.NewImageHandler(processor, int64(imgCfg.MaxBytes))
	frontendHandler := handler.NewFrontendHandler(content, renderer, pages, logger)
	healthHandler := handler.NewHealthHandler(db, pages, build)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "text/html", "text/css", "application/json"))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.StripTrailingSlash)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	r.With(middleware.StaticCache(86400)).Handle("/static/*",
		http.StripPrefix("/static/", http.FileServer(http.FS(mustSub(web.Static, "static/dist")))))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)

	csrfCfg := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfCfg.Deny = handler.DenyJSON

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.CSRF(csrfCfg))
		r.With(protector.Middleware(handler.DenyJSON)).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Route("/admin/api", func(r chi.Router) {
		// Slightly longer than the save budget so a timed out save still
		// reports its own error.
		r.Use(middleware.Timeout(cfg.SaveTimeout + 5*time.Second))
		r.Use(middleware.RequireRole(model.RoleReviewer, events, handler.DenyJSON))
		r.Use(middleware.CSRF(csrfCfg))
		r.Use(middleware.DemoGuard(cfg.DemoMode, middleware.DefaultDemoRestrictions, handler.DenyJSON))
		r.Use(writeLimiter.Middleware(handler.DenyJSON))

		contentHandler.Routes(r)
		jobsHandler.Routes(r)
		r.Post("/images/normalize", imageHandler.Normalize)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		frontendHandler.Routes(r)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env, "version", build.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func buildInfo() version.Info {
	return version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
