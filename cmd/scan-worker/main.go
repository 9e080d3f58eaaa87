package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"

	"github.com/radieske/sports-ev-scanner/internal/engine/market"
	"github.com/radieske/sports-ev-scanner/internal/engine/scan"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/consumer"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/live"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/publisher"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/repo"
	sharedcache "github.com/radieske/sports-ev-scanner/internal/shared/cache"
	"github.com/radieske/sports-ev-scanner/internal/shared/config"
	"github.com/radieske/sports-ev-scanner/internal/shared/db"
	sharedkafka "github.com/radieske/sports-ev-scanner/internal/shared/kafka"
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

	// Inicializa dependências: Postgres e Redis
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

	// Live set no Redis: expira se o scan parar de produzir ciclos
	liveTTL := 3 * cfg.PollInterval
	liveStore := live.NewStore(redisClient, liveTTL)
	histRepo := repo.NewPostgresRepo(pg)

	// Consumer Kafka dos batches de cotação (consumer group scan-worker)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicQuoteBatches, "scan-worker")
	defer reader.Close()

	// Writer do tópico de oportunidades, consumido pelo alert-worker
	oppWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOpportunities)
	defer oppWriter.Close()

	// Métricas Prometheus para monitoramento do scan
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "scan_batches_consumed_total", Help: "batches consumidos"})
	oppsFound := prometheus.NewCounter(prometheus.CounterOpts{Name: "scan_opportunities_total", Help: "oportunidades sinalizadas"})
	droppedQuotes := prometheus.NewCounter(prometheus.CounterOpts{Name: "scan_quotes_dropped_total", Help: "cotações descartadas na validação"})
	scanSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "scan_cycle_seconds", Help: "duração do ciclo de scan"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scan_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, oppsFound, droppedQuotes, scanSeconds, errorsBy)

	// Política do scan vem do ambiente; o engine só recebe valores explícitos
	scanCfg := scan.Config{
		SharpVenue:         market.Venue(cfg.SharpVenue),
		MinConsensusVenues: cfg.MinConsensusVenues,
		MinEVPercent:       cfg.MinEVPercent,
	}

	proc := &consumer.Processor{
		Log:       log,
		Reader:    reader,
		Scanner:   scan.NewScanner(),
		Cfg:       scanCfg,
		Repo:      histRepo,
		Live:      liveStore,
		Publisher: publisher.NewKafkaPublisher(oppWriter),

		OnConsumed: func() { consumed.Inc() },
		OnScanned: func(dur time.Duration, opps, dropped int) {
			scanSeconds.Observe(dur.Seconds())
			oppsFound.Add(float64(opps))
			droppedQuotes.Add(float64(dropped))
		},
		OnError: func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após persistir o ciclo, envia o live set para o WebSocket via Redis Pub/Sub
		OnAfterPersist: func(cycle events.LiveCycle) {
			b, _ := json.Marshal(cycle)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := redisClient.Publish(ctx, cfg.RedisPubSubChannel, b).Err(); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

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

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("scan-worker started",
		zap.String("consume", cfg.TopicQuoteBatches),
		zap.String("publish", cfg.TopicOpportunities),
		zap.String("sharp_venue", cfg.SharpVenue),
		zap.Float64("min_ev_percent", cfg.MinEVPercent),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("scan-worker stopped")
}
