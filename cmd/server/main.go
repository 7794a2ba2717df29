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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/config"
	"github.com/Simplici0/printquote/internal/db"
	"github.com/Simplici0/printquote/internal/logging"
	"github.com/Simplici0/printquote/internal/metrics"
	"github.com/Simplici0/printquote/internal/migrations"
	"github.com/Simplici0/printquote/internal/session"
	"github.com/Simplici0/printquote/internal/submission"
)

const (
	metricsNamespace = "printquote"
	shutdownTimeout  = 10 * time.Second
)

type server struct {
	catalog     *catalog.Catalog
	profile     catalog.PricingProfile
	sessions    session.Store
	submissions *submission.Store
	metrics     *metrics.Collector
	logger      *zap.Logger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "printquote: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			return fmt.Errorf("load catalog %s: %w", cfg.CatalogPath, err)
		}
	}

	profile, ok := cat.Profile(cfg.PricingProfile)
	if !ok {
		return fmt.Errorf("pricing profile %q not found (available: %v)", cfg.PricingProfile, cat.ProfileNames())
	}
	profile = cfg.Pricing.Apply(profile)
	if err := profile.Validate(); err != nil {
		return err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &server{
		catalog:     cat,
		profile:     profile,
		sessions:    sessions,
		submissions: submission.NewStore(database),
		metrics:     metrics.NewCollector(metricsNamespace, registry, logger),
		logger:      logger,
	}

	r := srv.routes()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", httpServer.Addr),
			zap.String("pricing_profile", profile.Name),
			zap.String("session_backend", cfg.SessionBackend),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openSessionStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (session.Store, func(), error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	store, err := session.NewRedisStore(ctx, session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TTL:      cfg.SessionTTL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close redis session store", zap.Error(err))
		}
	}, nil
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/catalog", s.handleCatalog)

	r.Post("/sessions", s.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Delete("/", s.handleDeleteSession)
		r.Put("/geometry", s.handleAttachGeometry)
		r.Delete("/geometry", s.handleDetachGeometry)
		r.Patch("/configuration", s.handlePatchConfiguration)
		r.Post("/target-dimension", s.handleTargetDimension)
		r.Post("/submit", s.handleSubmit)
	})

	r.Get("/quotes", s.handleQuotesList)
	r.Get("/quotes/{id}/text", s.handleQuoteText)

	return r
}

// observe logs each request and records its metrics under the matched route
// pattern, so path parameters do not explode label cardinality.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.metrics.RecordHTTPRequest(r.Method, route, status, elapsed)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
