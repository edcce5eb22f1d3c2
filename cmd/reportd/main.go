package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/celestia-labs/reportgen/internal/astro"
	"github.com/celestia-labs/reportgen/internal/auth"
	"github.com/celestia-labs/reportgen/internal/cache"
	"github.com/celestia-labs/reportgen/internal/completion"
	"github.com/celestia-labs/reportgen/internal/config"
	"github.com/celestia-labs/reportgen/internal/ratelimit"
	"github.com/celestia-labs/reportgen/internal/report"
	"github.com/celestia-labs/reportgen/internal/server"
	"github.com/celestia-labs/reportgen/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()

	// Connect to PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		logger.Warn("database not reachable (service will start but auth will fail)", "error", err)
	} else {
		logger.Info("database connected")
	}

	// Connect to Redis
	var rdb *redis.Client
	if len(cfg.Redis.Addresses) > 0 && cfg.Redis.Addresses[0] != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addresses[0],
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable (shared caching and rate limits disabled)", "error", err)
			rdb = nil
		} else {
			logger.Info("redis connected")
		}
	}

	metrics := telemetry.NewMetrics()

	// Report cache store
	var store cache.Store
	if cfg.Cache.Backend == "redis" && rdb != nil {
		store = cache.NewRedisStore(rdb, cfg.Cache.ReportTTL)
		logger.Info("report cache backend", "backend", "redis")
	} else {
		store = cache.NewMemoryStore(cfg.Cache.ReportTTL)
		logger.Info("report cache backend", "backend", "memory")
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go cache.RunSweeper(sweepCtx, store, cfg.Cache.SweepInterval, logger, metrics.SweepRemoved)

	// Chart provider chain: HTTP client, circuit breaker, TTL cache
	breaker := astro.NewCircuitBreaker(cfg.Chart.FailureThreshold, cfg.Chart.RecoveryProbe)
	chartClient := astro.NewClient(cfg.Chart.BaseURL, cfg.Chart.APIKey, cfg.Chart.Timeout)
	cachedCharts := astro.NewCachedProvider(
		astro.NewBreakerProvider(chartClient, breaker, cfg.Chart.SlowThreshold),
		cache.NewUpstreamCache(cfg.Cache.UpstreamTTL),
		logger,
	)
	cachedCharts.SetObserver(metrics.ChartCacheLookup)

	// Completion client
	if primary, _ := completion.BuildFromConfig(loader.Providers()); primary == nil {
		logger.Error("no completion provider configured")
		os.Exit(1)
	}
	newCompleter := func() *completion.Client {
		p, s := completion.BuildFromConfig(loader.Providers())
		return completion.NewClient(p, s, completion.Options{
			CallTimeout: cfg.Generation.RequestTimeout,
			Backoff:     loader.Providers().Backoff,
			Tracker:     metrics,
			Logger:      logger,
			Tuning:      loader.Reports().Reports,
		})
	}
	completer := newCompleter()
	loader.OnReload(func() {
		*completer = *newCompleter()
		logger.Info("completion client reloaded")
	})

	generator := report.NewGenerator(store, cachedCharts, completer, report.Options{
		Logger:  logger,
		Metrics: metrics,
	})

	// Build handler
	keyStore := auth.NewCachedKeyStore(dbPool, rdb)
	limiter := ratelimit.NewLimiter(rdb)
	quota := ratelimit.NewQuotaTracker(rdb)
	handler := server.NewHandler(generator, store, quota, logger)

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)

	// Unauthenticated routes
	r.Get("/astro/v1/health", healthHandler)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(keyStore))
		r.Use(ratelimit.Middleware(limiter, quota, metrics))
		r.Post("/v1/reports", handler.CreateReport)
		r.Get("/v1/reports/{reportID}", handler.GetReport)
		r.Get("/v1/report-types", handler.ListReportTypes)
	})

	// Metrics listener
	if cfg.Telemetry.MetricsPort > 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%d", cfg.Telemetry.MetricsPort)
			logger.Info("metrics listener starting", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics listener failed", "error", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("reportd starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("reportd stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": version,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", reqID)
		ctx := context.WithValue(r.Context(), requestIDKey, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

func generateRequestID() string {
	now := time.Now()
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), hex.EncodeToString(b))
}
