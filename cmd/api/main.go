// Command api serves the unified health-metrics API over the record store.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/healthbridge/internal/api"
	"example.com/healthbridge/internal/auth"
	"example.com/healthbridge/internal/config"
	"example.com/healthbridge/internal/consent"
	"example.com/healthbridge/internal/engine"
	"example.com/healthbridge/internal/events"
	"example.com/healthbridge/internal/migrate"
	"example.com/healthbridge/internal/store"
	memorystore "example.com/healthbridge/internal/store/memory"
	postgresstore "example.com/healthbridge/internal/store/postgres"
	httptransport "example.com/healthbridge/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var recordStore store.Store
	switch cfg.StoreDriver {
	case "memory":
		recordStore = memorystore.New()
	default:
		if err := migrate.Up(ctx, cfg.PostgresURL); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()
		recordStore = postgresstore.New(pool)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.ChangeTopic)
	defer func() { _ = publisher.Close() }()

	flow := consent.NewAutoGrant(recordStore)

	eng := engine.New(recordStore, flow,
		engine.WithLogger(logger.Named("engine")),
		engine.WithPlatform(cfg.Platform),
		engine.WithOriginPackage(cfg.OriginPackage),
		engine.WithPublisher(publisher),
	)

	handler := api.NewHandler(eng)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	accessLog := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		func(r *http.Request) bool {
			return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
		},
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(accessLog(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("healthbridge listening",
			zap.String("address", cfg.HTTPAddress),
			zap.String("store", cfg.StoreDriver),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
