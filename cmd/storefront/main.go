package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, pkgdb.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL, Debug: cfg.DBDebug})
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	store := repo.New(db)
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = store.Migrate(ctx)
	cancel()
	if err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	publisher, err := events.New(events.Options{
		Backend:      cfg.EventsBackend,
		KafkaBrokers: cfg.KafkaBrokers,
		RabbitMQURL:  cfg.RabbitMQURL,
	})
	if err != nil {
		logger.Warn("events_disabled", "backend", cfg.EventsBackend, "error", err)
		publisher = events.Nop{}
	}

	var index *search.Index
	if cfg.ESURL != "" {
		client, err := search.NewClient(search.Options{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable, using database search", "error", err)
		} else {
			index = search.New(client, cfg.ESIndex)
		}
	}

	rdb := config.NewRedisClient(context.Background(), cfg)
	if rdb == nil && cfg.RateLimit.Enabled {
		logger.Warn("rate_limit_disabled", "reason", "redis unavailable")
	}

	deps := &httpserver.Deps{
		DB: db,
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:             store,
			Events:           publisher,
			JWTSecret:        cfg.JWTSecret,
			SessionTTL:       cfg.SessionTTL,
			SecureCookie:     cfg.CookieSecure,
			AllowAdminSignUp: cfg.AllowAdminSignUp,
		}},
		CatalogHandler:  &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: store, Search: index, Events: publisher}},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: store, Events: publisher}},
		WishlistHandler: &httpserver.WishlistHTTP{Svc: &service.WishlistService{Repo: store, Events: publisher}},
		BundleHandler:   &httpserver.BundleHTTP{Svc: &service.BundleService{Repo: store, Events: publisher}},
		DiscountHandler: &httpserver.DiscountHTTP{Svc: &service.DiscountService{Repo: store, Events: publisher}},
		ProfileHandler:  &httpserver.ProfileHTTP{Svc: &service.ProfileService{Repo: store}},
		UploadHandler:   &httpserver.UploadHTTP{Svc: &service.UploadService{}},
		JWTSecret:       cfg.JWTSecret,
		SecureCookie:    cfg.CookieSecure,
		AllowOrigins:    cfg.CORSOrigins,
		Redis:           rdb,
		RateLimit:       cfg.RateLimit,
	}
	if cfg.CSRFEnabled {
		deps.CSRF = &csrf.Config{Secure: cfg.CookieSecure, EnforceSameOrigin: true}
	}
	e := httpserver.New(logger, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_started", "addr", srv.Addr, "db_driver", cfg.DBDriver, "events", cfg.EventsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("events_close_error", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}
