package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextagencyio/decoupled-commerce/internal/commerce"
	"github.com/nextagencyio/decoupled-commerce/internal/config"
	"github.com/nextagencyio/decoupled-commerce/internal/content"
	"github.com/nextagencyio/decoupled-commerce/internal/db"
	"github.com/nextagencyio/decoupled-commerce/internal/demo"
	"github.com/nextagencyio/decoupled-commerce/internal/httpserver"
	"github.com/nextagencyio/decoupled-commerce/internal/kv"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC)

	ctx := context.Background()

	deps := httpserver.Deps{
		DemoMode:       cfg.DemoMode,
		SecureCookies:  cfg.CookieSecure,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}

	if cfg.DemoMode {
		catalog, err := demo.Load()
		if err != nil {
			logger.Fatalf("load demo catalog: %v", err)
		}
		deps.Demo = catalog
		logger.Printf("demo mode: serving embedded catalog, cart disabled")
	}

	var pool *pgxpool.Pool
	if !cfg.DemoMode && cfg.CommerceConfigured() {
		deps.Commerce = commerce.New(cfg.CommerceStoreDomain, cfg.CommerceStorefrontToken, cfg.CommerceAPIVersion, logger)

		var err error
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			// Cart ids just lose restarts; the storefront still works.
			logger.Printf("db unavailable, session persistence falls back to memory: %v", err)
		} else {
			defer pool.Close()
		}

		newKV := func(scope string) kv.Store {
			if pool != nil {
				return kv.NewPostgres(pool, scope)
			}
			return kv.NewMemory()
		}
		deps.Sessions = httpserver.NewSessionManager(deps.Commerce, newKV, logger)
	} else if !cfg.DemoMode {
		logger.Printf("commerce backend not configured, cart routes disabled")
	}

	if !cfg.DemoMode && cfg.ContentConfigured() {
		tokens := content.NewTokenCache(cfg.ContentBaseURL, cfg.ContentClientID, cfg.ContentClientSecret)
		deps.Content = content.New(cfg.ContentBaseURL, tokens, logger)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, pool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
