package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/radieske/sports-ev-scanner/internal/ev-api/http"
	"github.com/radieske/sports-ev-scanner/internal/ev-api/repo"
	"github.com/radieske/sports-ev-scanner/internal/ev-api/ws"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/live"
	sharedcache "github.com/radieske/sports-ev-scanner/internal/shared/cache"
	"github.com/radieske/sports-ev-scanner/internal/shared/config"
	"github.com/radieske/sports-ev-scanner/internal/shared/db"
	"github.com/radieske/sports-ev-scanner/internal/shared/logger"
	"github.com/radieske/sports-ev-scanner/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Hub WebSocket alimentado pelo Pub/Sub do scan-worker
	hub := ws.NewHub(func(r *http.Request) bool { return true })

	api := &httpapi.API{
		ReadRepo:         &repo.ReadRepo{DB: pg},
		Live:             live.NewStore(redisClient, 3*cfg.PollInterval),
		Hub:              hub,
		StartingBankroll: cfg.StartingBankroll,
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("ev-api-service started", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server error", zap.Error(err))
	}
	log.Info("ev-api-service stopped")
}
