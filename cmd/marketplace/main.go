package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/cpd-marketplace/internal/auth"
	"github.com/example/cpd-marketplace/internal/config"
	httptransport "github.com/example/cpd-marketplace/internal/http"
	"github.com/example/cpd-marketplace/internal/storage"
	"github.com/example/cpd-marketplace/internal/storage/factory"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := factory.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "storage", cfg.Storage)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if cfg.SeedDemo {
		seeder, ok := store.(storage.Seeder)
		if !ok {
			logger.Error("configured storage cannot seed demo data", "storage", cfg.Storage)
			os.Exit(1)
		}
		if err := seeder.Seed(ctx); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo dataset loaded")
	}

	authService := auth.NewService(store, store, cfg.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(authService, logger),
		Users:       httptransport.NewUserHandler(store, logger),
		Events:      httptransport.NewEventHandler(store, logger),
		Courses:     httptransport.NewCourseHandler(store, logger),
		Cpd:         httptransport.NewCpdHandler(store, logger),
		Community:   httptransport.NewCommunityHandler(store, logger),
		Credentials: httptransport.NewCredentialHandler(store, logger),
	})

	// Catalog reads are open to anonymous visitors. A request carrying a
	// token always passes through session validation so handlers can attach
	// the principal, e.g. to enrich a course with the caller's progress.
	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httptransport.TokenFromRequest(r) == "" && isPublicRoute(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("marketplace API listening", "addr", server.Addr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// isPublicRoute reports whether the endpoint is reachable without a session:
// account registration, login, and catalog reads.
func isPublicRoute(r *http.Request) bool {
	path := r.URL.Path

	if r.Method == http.MethodPost {
		return path == "/sessions" || path == "/users"
	}
	if r.Method != http.MethodGet {
		return false
	}

	switch {
	case path == "/users":
		return true
	case strings.HasPrefix(path, "/users/"):
		// Public profiles only; per-user listings stay behind a session.
		return !strings.Contains(strings.TrimPrefix(path, "/users/"), "/")
	case path == "/events", strings.HasPrefix(path, "/events/"):
		return true
	case path == "/courses", strings.HasPrefix(path, "/courses/"):
		return true
	case strings.HasPrefix(path, "/community/"):
		return true
	case path == "/mentorships":
		return true
	}
	return false
}
