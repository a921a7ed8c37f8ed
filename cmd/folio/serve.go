package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/folio/internal/adapter/cachedstore"
	cfhttp "github.com/Strob0t/folio/internal/adapter/http"
	cfnats "github.com/Strob0t/folio/internal/adapter/nats"
	"github.com/Strob0t/folio/internal/adapter/natskv"
	cfotel "github.com/Strob0t/folio/internal/adapter/otel"
	"github.com/Strob0t/folio/internal/adapter/postgres"
	"github.com/Strob0t/folio/internal/adapter/ristretto"
	"github.com/Strob0t/folio/internal/adapter/tiered"
	"github.com/Strob0t/folio/internal/adapter/ws"
	"github.com/Strob0t/folio/internal/config"
	"github.com/Strob0t/folio/internal/domain/template"
	"github.com/Strob0t/folio/internal/middleware"
	"github.com/Strob0t/folio/internal/port/cache"
	"github.com/Strob0t/folio/internal/port/contentstore"
	"github.com/Strob0t/folio/internal/resilience"
	"github.com/Strob0t/folio/internal/secrets"
	"github.com/Strob0t/folio/internal/service"
)

func newServeCmd(a *app) *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the section API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.configPath, !skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, configPath string, migrate bool) error {
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"cache_enabled", cfg.Cache.Enabled,
		"nats", cfg.NATS.URL != "",
	)

	// --- Telemetry ---

	shutdownOTel, err := cfotel.Setup(ctx, cfg.OTel, cfg.Logging.Service, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()
	metrics, err := cfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if migrate {
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied")
	}
	pgStore := postgres.NewStore(pool)

	healthChecks := map[string]func(context.Context) error{
		"postgres": pgStore.Ping,
	}

	// NATS
	var queue *cfnats.Queue
	if cfg.NATS.URL != "" {
		queue, err = cfnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		healthChecks["nats"] = func(context.Context) error {
			if !queue.IsConnected() {
				return errors.New("disconnected")
			}
			return nil
		}
	}

	// Section cache
	var store contentstore.Store = pgStore
	var cached *cachedstore.Store
	if cfg.Cache.Enabled {
		c, ttl, closeCache, err := buildCache(ctx, cfg.Cache, queue)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer closeCache()
		cached = cachedstore.New(pgStore, c, ttl)
		store = cached
	}

	// --- Services ---

	hub := ws.NewHub(originPatterns(cfg.Server.CORSOrigin)...)
	sectionSvc := service.NewSectionService(store)
	sectionSvc.SetBroadcaster(hub)
	sectionSvc.SetMetrics(metrics)
	if queue != nil {
		sectionSvc.SetQueue(queue)
	}

	var invalidate func(ctx context.Context, pageKey, sectionKey string)
	if cached != nil {
		invalidate = cached.Invalidate
	}
	stopRelay, err := sectionSvc.RelayEvents(ctx, invalidate)
	if err != nil {
		return fmt.Errorf("section event relay: %w", err)
	}
	defer stopRelay()

	// Admin token hash, reloaded from the config file on SIGHUP.
	vault, err := secrets.NewVault(secrets.ConfigLoader(configPath))
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go vault.ReloadOn(ctx, sighup)

	// --- HTTP ---

	handlers := &cfhttp.Handlers{
		Sections:     sectionSvc,
		Templates:    template.Builtin(),
		Version:      version,
		HealthChecks: healthChecks,
	}

	limiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	limiter.StartCleanup(ctx, cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	r := chi.NewRouter()
	r.Use(cfotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(middleware.RequestID)
	r.Use(cfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cfhttp.CORS(cfg.Server.CORSOrigin))

	// WebSocket endpoint; long-lived, so outside the request timeout.
	r.Get("/ws", hub.HandleWS)

	r.Group(func(r chi.Router) {
		r.Use(cfhttp.SecurityHeaders)
		r.Use(limiter.Handler)
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
		cfhttp.MountRoutes(r, handlers, vault.Getter(secrets.AdminTokenHash))
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		hub.Close()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildCache returns the section cache and the TTL entries are stored with.
// With NATS available the in-process cache fronts a shared JetStream KV
// bucket; otherwise it is used alone.
func buildCache(ctx context.Context, cfg config.Cache, queue *cfnats.Queue) (cache.Cache, time.Duration, func(), error) {
	l1, err := ristretto.New(cfg.L1MaxSizeMB << 20)
	if err != nil {
		return nil, 0, nil, err
	}
	closeL1 := func() {
		slog.Info("section cache closed", "l1_hit_ratio", l1.HitRatio())
		l1.Close()
	}
	if queue == nil {
		return l1, cfg.L1TTL, closeL1, nil
	}

	kv, err := queue.KeyValue(ctx, cfg.L2Bucket, cfg.L2TTL)
	if err != nil {
		l1.Close()
		return nil, 0, nil, fmt.Errorf("kv bucket %s: %w", cfg.L2Bucket, err)
	}
	slog.Info("section cache enabled", "l1_ttl", cfg.L1TTL, "l2_bucket", cfg.L2Bucket)
	breaker := resilience.NewBreaker("section-kv", cfg.L2MaxFailures, cfg.L2Cooldown)
	return tiered.New(l1, natskv.New(kv), cfg.L1TTL).WithBreaker(breaker), cfg.L2TTL, closeL1, nil
}

// originPatterns turns the configured CORS origin into the host pattern the
// WebSocket handshake checks.
func originPatterns(origin string) []string {
	if origin == "" || origin == "*" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return []string{origin}
	}
	return []string{u.Host}
}
