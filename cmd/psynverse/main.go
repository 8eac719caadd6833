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

	"github.com/olegiv/psynverse/internal/auth"
	"github.com/olegiv/psynverse/internal/cache"
	"github.com/olegiv/psynverse/internal/config"
	"github.com/olegiv/psynverse/internal/geoip"
	"github.com/olegiv/psynverse/internal/handler"
	"github.com/olegiv/psynverse/internal/imagehost"
	"github.com/olegiv/psynverse/internal/logging"
	"github.com/olegiv/psynverse/internal/middleware"
	"github.com/olegiv/psynverse/internal/scheduler"
	"github.com/olegiv/psynverse/internal/seo"
	"github.com/olegiv/psynverse/internal/service"
	"github.com/olegiv/psynverse/internal/session"
	"github.com/olegiv/psynverse/internal/store"
	"github.com/olegiv/psynverse/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	hashPassword := flag.String("hash-password", "", "Print an argon2id hash of the given password for ADMIN_PASSWORD and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "psynverse - personal content service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SESSION_SECRET   Session signing key (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADMIN_USER       Admin username (default: admin)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ADMIN_PASSWORD   Admin password or argon2id hash\n")
		_, _ = fmt.Fprintf(os.Stderr, "  APP_ENV          development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DB_PATH          SQLite database path (default: ./data/psynverse.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITE_URL         Public site URL used in feeds\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REDIS_URL        Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CLOUDINARY_URL   Cloudinary credentials for image uploads (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GEOIP_DB_PATH    GeoLite2-Country database (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "hashing password: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Println(hash)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := logging.ParseLevel(cfg.LogLevel)
	slog.SetDefault(logging.NewLogger(os.Stdout, logLevel, nil))

	codec, err := session.NewCodec(cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("initializing sessions: %w", err)
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

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

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Mirror WARN and ERROR logs into the event log from here on
	logger := logging.NewLogger(os.Stdout, logLevel, db)
	slog.SetDefault(logger)
	slog.Info("database ready", "event_log_min_level", "warn")

	contentCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	defer func() {
		if err := contentCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	// A shared Redis cache may hold read models from before this start's migrations
	if cfg.UseRedisCache() {
		if err := contentCache.Clear(context.Background()); err != nil {
			slog.Warn("clearing stale cache entries", "error", err)
		}
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, country lookup disabled", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = geo.Close() }()

	uploader, err := imagehost.New(cfg.CloudinaryURL)
	if err != nil {
		slog.Warn("image host misconfigured, uploads disabled", "error", err)
		uploader = imagehost.Unconfigured{}
	}

	st := store.NewStore(db)
	eventService := service.NewEventService(db)
	postService := service.NewPostService(st, contentCache, cfg.CacheDuration(), eventService)
	bookService := service.NewBookService(st, contentCache, cfg.CacheDuration(), eventService)
	mediaService := service.NewMediaService(uploader, service.MediaConfig{
		Folder:       cfg.UploadFolder,
		MaxBytes:     cfg.UploadMaxBytes,
		MaxDimension: cfg.UploadMaxDimension,
	}, eventService)

	sched := scheduler.New(logger)
	if cfg.EventRetentionDays > 0 {
		if err := sched.AddJob("prune-events", scheduler.PruneEventsSchedule,
			scheduler.PruneEvents(eventService, cfg.EventRetention(), logger)); err != nil {
			return fmt.Errorf("scheduling event pruning: %w", err)
		}
	}
	if cfg.GeoIPEnabled() {
		if err := sched.AddJob("reload-geoip", scheduler.ReloadGeoIPSchedule, scheduler.ReloadGeoIP(geo)); err != nil {
			return fmt.Errorf("scheduling geoip reload: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	routes := handler.Routes{
		Health: handler.NewHealthHandler(db, contentCache),
		Public: handler.NewPublicHandler(handler.PublicConfig{
			Posts:    postService,
			Books:    bookService,
			Cache:    contentCache,
			CacheTTL: cfg.CacheDuration(),
			Feed: seo.FeedConfig{
				SiteURL:     cfg.SiteURL,
				Title:       cfg.SiteName,
				Description: cfg.SiteTagline,
				Language:    "en",
			},
			Robots:        seo.RobotsConfig{SiteURL: cfg.SiteURL, DisallowAll: cfg.IsDevelopment()},
			BookImagesDir: cfg.BookImagesDir,
		}),
		Auth: handler.NewAuthHandler(handler.AuthConfig{
			Admin:           auth.NewAdmin(cfg.AdminUser, cfg.AdminPassword),
			Codec:           codec,
			LoginProtection: loginProtection,
			EventService:    eventService,
			Geo:             geo,
			SecureCookie:    !cfg.IsDevelopment(),
		}),
		Posts:           handler.NewPostsHandler(postService),
		Books:           handler.NewBooksHandler(bookService),
		Media:           handler.NewMediaHandler(mediaService),
		Events:          handler.NewEventsHandler(eventService),
		Maintenance:     handler.NewMaintenanceHandler(sched, contentCache),
		Codec:           codec,
		LoginProtection: loginProtection,
		CSRF:            middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	routes.Register(r)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
