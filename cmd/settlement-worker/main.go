package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/settlement-worker/repo"
	"github.com/radieske/sports-ev-scanner/internal/settlement-worker/worker"
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

	// Métricas Prometheus da liquidação
	settledBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settle_bets_total", Help: "apostas liquidadas por desfecho"}, []string{"outcome"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settle_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(settledBy, errorsBy)

	w := &worker.Worker{
		Log:              log,
		Repo:             repo.NewPostgresRepo(pg),
		Interval:         cfg.SettleInterval,
		StartingBankroll: cfg.StartingBankroll,

		OnSettled: func(outcome string) { settledBy.WithLabelValues(outcome).Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started", zap.Duration("settle_interval", cfg.SettleInterval))
	w.Run(ctx)
	log.Info("settlement-worker stopped")
}
