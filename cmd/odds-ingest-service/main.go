package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/client"
	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/publisher"
	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/repo"
	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/service"
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

	if cfg.OddsAPIKey == "" {
		log.Fatal("ODDS_API_KEY not set")
	}

	// Postgres guarda o catálogo de jogos e as linhas de fechamento
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Publisher do tópico de batches, consumido pelo scan-worker
	pub := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.TopicQuoteBatches, log)
	defer pub.Close()

	// Métricas Prometheus da coleta
	polls := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_polls_total", Help: "polls executados"})
	rowsSeen := prometheus.NewCounter(prometheus.CounterOpts{Name: "ingest_quote_rows_total", Help: "linhas de cotação coletadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ingest_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(polls, rowsSeen, errorsBy)

	poller := &service.Poller{
		Log:        log,
		Client:     client.New(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.SportKey, log),
		Repo:       repo.NewPostgresRepo(pg),
		Publisher:  pub,
		Sport:      cfg.SportKey,
		SharpVenue: cfg.SharpVenue,
		Interval:   cfg.PollInterval,

		OnPolled: func(rows, _ int) {
			polls.Inc()
			rowsSeen.Add(float64(rows))
		},
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
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

	log.Info("odds-ingest-service started",
		zap.String("sport", cfg.SportKey),
		zap.String("publish", cfg.TopicQuoteBatches),
		zap.Duration("poll_interval", cfg.PollInterval),
	)
	poller.Run(ctx)
	log.Info("odds-ingest-service stopped")
}
