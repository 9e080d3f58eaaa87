package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/publisher"
	"github.com/radieske/sports-ev-scanner/internal/quote-simulator/generator"
	"github.com/radieske/sports-ev-scanner/internal/shared/config"
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

	pub := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.TopicQuoteBatches, log)
	defer pub.Close()

	gen := generator.New(cfg.SportKey, cfg.SharpVenue, generator.DefaultRecreationalVenues)

	// Métricas Prometheus
	batches := prometheus.NewCounter(prometheus.CounterOpts{Name: "sim_batches_published_total", Help: "batches publicados"})
	rows := prometheus.NewCounter(prometheus.CounterOpts{Name: "sim_quote_rows_total", Help: "linhas de cotação geradas"})
	prometheus.MustRegister(batches, rows)

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("quote-simulator started",
		zap.String("publish", cfg.TopicQuoteBatches),
		zap.String("catalog", generator.Describe()),
	)

	// Gera e publica um batch sintético a cada 10 segundos
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("quote-simulator stopped")
			return
		case <-ticker.C:
			batch := gen.Batch(cfg.ServiceName)
			if err := pub.Publish(ctx, batch); err != nil {
				log.Warn("batch publish failed", zap.Error(err))
				continue
			}
			batches.Inc()
			rows.Add(float64(len(batch.Rows)))
		}
	}
}
