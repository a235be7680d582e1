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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jamsession/internal/auth/accessgate"
	"jamsession/internal/auth/adapters"
	authHandler "jamsession/internal/auth/handler"
	authMetrics "jamsession/internal/auth/metrics"
	"jamsession/internal/auth/portal"
	authService "jamsession/internal/auth/service"
	"jamsession/internal/platform/config"
	"jamsession/internal/platform/health"
	"jamsession/internal/platform/httpserver"
	"jamsession/internal/platform/logger"
	"jamsession/internal/platform/redis"
	"jamsession/internal/platform/tracer"
	rlConfig "jamsession/internal/ratelimit/config"
	rlMetrics "jamsession/internal/ratelimit/metrics"
	"jamsession/internal/ratelimit/service/authlockout"
	lockoutStore "jamsession/internal/ratelimit/store/authlockout"
	"jamsession/internal/ratelimit/workers/cleanup"
	httptransport "jamsession/internal/transport/http"
	"jamsession/pkg/platform/circuit"
	"jamsession/pkg/platform/middleware/cors"
	"jamsession/pkg/platform/middleware/metadata"
	request "jamsession/pkg/platform/middleware/request"
)

const redisStatsInterval = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, cfgErr := config.FromEnv()
	log := logger.New(cfg.Production)
	if cfgErr != nil {
		log.Error("invalid configuration", "error", cfgErr)
		os.Exit(1)
	}

	log.Info("initializing jamsession",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"secure_cookies", cfg.Production,
		"shared_lockouts", cfg.Redis.URL != "",
	)
	if cfg.UsingDevSecret {
		log.Warn("SESSION_SECRET is not set; signing sessions with the public development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthHandler := health.New(cfg.Environment)
	lockouts, redisClient, err := buildLockouts(ctx, cfg, reg, log)
	if err != nil {
		log.Error("failed to initialize lockout store", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // process is exiting
		healthHandler.RegisterCheck("redis", redisClient.Health)
		go redisClient.RunPoolStats(ctx, redisStatsInterval, log)
	}

	router, err := buildRouter(cfg, lockouts, healthHandler, reg, log)
	if err != nil {
		log.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Addr, router)
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildLockouts picks the shared Redis store when configured, otherwise the
// in-process store plus its cleanup worker. Redis keys expire on their own.
func buildLockouts(ctx context.Context, cfg config.Server, reg prometheus.Registerer, log *slog.Logger) (*authlockout.Service, *redis.Client, error) {
	metrics := rlMetrics.New(reg)
	rlCfg := rlConfig.DefaultConfig()

	client, err := redis.New(ctx, cfg.Redis, redis.NewPoolMetrics(reg))
	if err != nil {
		return nil, nil, err
	}

	var store authlockout.Store
	if client != nil {
		store = lockoutStore.NewRedis(client.Client, lockoutStore.WithKeyPrefix(rlCfg.KeyPrefix))
		log.Info("lockout store: redis")
	} else {
		memory := lockoutStore.New()
		store = memory
		log.Warn("lockout store: in-memory; lockouts are not shared between instances")

		worker := cleanup.New(memory,
			cleanup.WithLogger(log),
			cleanup.WithInterval(cfg.RateLimit.CleanupInterval),
			cleanup.WithMetrics(metrics),
		)
		go func() {
			if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("lockout cleanup worker stopped", "error", err)
			}
		}()
	}

	svc, err := authlockout.New(store,
		authlockout.WithLogger(log),
		authlockout.WithMetrics(metrics),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, client, nil
}

func buildRouter(cfg config.Server, lockouts *authlockout.Service, healthHandler *health.Handler, reg *prometheus.Registry, log *slog.Logger) (http.Handler, error) {
	metrics := authMetrics.New(reg)
	spans := tracer.NewOTel()

	gate := accessgate.New(cfg.AccessGateURL,
		accessgate.WithLogger(log),
		accessgate.WithTracer(spans),
		accessgate.WithMetrics(metrics),
		accessgate.WithBreaker(circuit.New("accessgate")),
	)
	validator := portal.New(cfg.PortalURL,
		portal.WithLogger(log),
		portal.WithTracer(spans),
		portal.WithMetrics(metrics),
	)

	svc, err := authService.New(adapters.NewRateLimitAdapter(lockouts), gate, validator,
		&authService.Config{Secret: []byte(cfg.SessionSecret)},
		authService.WithLogger(log),
		authService.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	return httptransport.NewRouter(httptransport.Dependencies{
		Auth:           authHandler.New(svc, log, cfg.Production),
		Health:         healthHandler,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		CORS:           cors.New(cors.Config{AllowedOrigins: cfg.CORS.AllowedOrigins, DefaultOrigin: cfg.CORS.DefaultOrigin}),
		ClientMetadata: metadata.NewMiddleware(&metadata.Config{TrustedProxies: proxies}),
		RequestMetrics: request.NewMetrics(reg),
		Logger:         log,
	}), nil
}
