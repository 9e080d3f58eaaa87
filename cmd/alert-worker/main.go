package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/alert-worker/dedup"
	"github.com/radieske/sports-ev-scanner/internal/alert-worker/notifier"
	sharedcache "github.com/radieske/sports-ev-scanner/internal/shared/cache"
	"github.com/radieske/sports-ev-scanner/internal/shared/config"
	"github.com/radieske/sports-ev-scanner/internal/shared/kafka"
	"github.com/radieske/sports-ev-scanner/internal/shared/logger"
	"github.com/radieske/sports-ev-scanner/internal/shared/metrics"
	ev "github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Redis para deduplicação de alertas por janela
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka consumer: consome oportunidades sinalizadas pelo scan-worker
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOpportunities, "alert-worker")
	defer reader.Close()

	// DLQ para oportunidades cujo alerta falhou após os retries
	var dlqWriter *kafkago.Writer
	if cfg.TopicOpportunitiesDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOpportunitiesDLQ)
		defer dlqWriter.Close()
	}

	deduper := dedup.New(redisClient, cfg.AlertDedupTTL)
	notify := notifier.New(log, cfg.SlackWebhookURL)

	// Métricas Prometheus
	alerted := prometheus.NewCounter(prometheus.CounterOpts{Name: "alert_sent_total", Help: "alertas enviados"})
	suppressed := prometheus.NewCounter(prometheus.CounterOpts{Name: "alert_suppressed_total", Help: "alertas suprimidos por dedup"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "alert_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(alerted, suppressed, errorsBy)

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("alert-worker started",
		zap.String("consume", cfg.TopicOpportunities),
		zap.Duration("dedup_ttl", cfg.AlertDedupTTL),
		zap.Float64("min_ev_percent", cfg.AlertMinEV),
		zap.Bool("slack_enabled", cfg.SlackWebhookURL != ""),
	)

	// Loop principal: consome oportunidades, deduplica e alerta
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("kafka read", zap.Error(err))
			errorsBy.WithLabelValues("read").Inc()
			time.Sleep(time.Second)
			continue
		}

		var opp ev.OpportunityFound
		if jerr := json.Unmarshal(value, &opp); jerr != nil {
			log.Error("unmarshal opportunity", zap.Error(jerr))
			errorsBy.WithLabelValues("decode").Inc()
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, "malformed", value)
			}
			continue
		}

		// Só alerta acima do piso próprio do worker; o scan já filtrou
		// pelo piso dele, este é mais exigente
		if opp.EVPercent < cfg.AlertMinEV {
			continue
		}

		first, err := deduper.FirstSeen(ctx, opp)
		if err != nil {
			log.Warn("dedup check failed", zap.Error(err))
			errorsBy.WithLabelValues("dedup").Inc()
			// Sem dedup disponível, alerta mesmo assim; repetição é
			// preferível a silêncio
			first = true
		}
		if !first {
			suppressed.Inc()
			continue
		}

		if err := notifyWithRetry(ctx, notify, opp); err != nil {
			log.Error("alert delivery failed", zap.String("event_id", opp.EventID), zap.Error(err))
			errorsBy.WithLabelValues("notify").Inc()
			if dlqWriter != nil {
				b, _ := json.Marshal(opp)
				_ = kafka.WriteJSON(ctx, dlqWriter, opp.EventID, b)
			}
			continue
		}
		alerted.Inc()
	}

	log.Info("alert-worker stopped")
}

// notifyWithRetry tenta entregar o alerta até 3 vezes com backoff simples
// antes de desistir e mandar para a DLQ.
func notifyWithRetry(ctx context.Context, n *notifier.Notifier, opp ev.OpportunityFound) error {
	err := n.Notify(ctx, opp)
	if err == nil {
		return nil
	}
	const retries = 3
	for i := 0; i < retries; i++ {
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
		if err = n.Notify(ctx, opp); err == nil {
			return nil
		}
	}
	return err
}
