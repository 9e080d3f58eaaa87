package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/engine/odds"
	"github.com/radieske/sports-ev-scanner/internal/engine/scan"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/live"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/publisher"
	"github.com/radieske/sports-ev-scanner/internal/scan-worker/repo"
	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// Processor consome batches de cotações do Kafka e dirige o ciclo de scan:
// engine -> histórico no Postgres -> live set no Redis -> tópico de saída.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log       *zap.Logger
	Reader    *kafka.Reader
	Scanner   *scan.Scanner
	Cfg       scan.Config
	Repo      *repo.PostgresRepo
	Live      *live.Store
	Publisher *publisher.KafkaPublisher

	OnConsumed func()          // métricas (counter++)
	OnScanned  func(dur time.Duration, opps, dropped int)
	OnError    func(string)    // métricas por fase

	// Após persistir o ciclo, envia o live set para broadcast (Pub/Sub -> WS)
	OnAfterPersist func(cycle events.LiveCycle)
}

// Run inicia o loop principal de consumo e processamento dos batches
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var batch events.QuoteBatch
		if err := json.Unmarshal(m.Value, &batch); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		if err := p.processBatch(ctx, batch); err != nil {
			p.Log.Warn("batch processing failed", zap.String("batch_id", batch.BatchID), zap.Error(err))
		}
	}
}

// processBatch executa um ciclo completo de scan para um batch
func (p *Processor) processBatch(ctx context.Context, batch events.QuoteBatch) error {
	started := time.Now()

	result, err := p.Scanner.Run(ctx, toRawQuotes(batch.Rows), p.Cfg)
	if err != nil {
		if p.OnError != nil {
			p.OnError("scan")
		}
		return err
	}

	for _, d := range result.Dropped {
		p.Log.Warn("quote dropped",
			zap.String("venue", d.Venue),
			zap.String("event_id", d.EventID),
			zap.String("market", d.Market),
			zap.String("reason", d.Reason),
		)
	}

	opps := toEvents(result)
	cycle := events.LiveCycle{
		CycleID:       result.CycleID,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Opportunities: opps,
	}

	// Histórico durável primeiro; o live set só troca após o append
	if err := p.Repo.AppendOpportunities(ctx, opps); err != nil {
		if p.OnError != nil {
			p.OnError("db_append")
		}
		return err
	}

	if err := p.Live.Replace(ctx, cycle); err != nil {
		p.Log.Warn("live set replace failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("live")
		}
		// histórico já está salvo; segue para publicação mesmo assim
	}

	if err := p.Publisher.PublishAll(ctx, opps); err != nil {
		p.Log.Warn("opportunity publish failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("publish")
		}
	}

	if p.OnAfterPersist != nil {
		p.OnAfterPersist(cycle)
	}
	if p.OnScanned != nil {
		p.OnScanned(time.Since(started), len(opps), len(result.Dropped))
	}

	p.Log.Info("scan cycle complete",
		zap.String("cycle_id", result.CycleID),
		zap.Int("quotes", result.QuotesSeen),
		zap.Int("keys", result.KeysScanned),
		zap.Int("no_benchmark", result.NoBenchmark),
		zap.Int("opportunities", len(opps)),
		zap.Int("dropped", len(result.Dropped)),
	)
	return nil
}

// toRawQuotes converte as linhas do contrato Kafka para a entrada do engine
func toRawQuotes(rows []events.QuoteRow) []scan.RawQuote {
	raw := make([]scan.RawQuote, len(rows))
	for i, r := range rows {
		raw[i] = scan.RawQuote{
			EventID:    r.EventID,
			Market:     r.Market,
			Selection:  r.Selection,
			Point:      r.Point,
			PlayerName: r.PlayerName,
			Venue:      r.Venue,
			Price:      r.Price,
			Format:     odds.Format(r.PriceFormat),
			ObservedAt: r.ObservedAt,
		}
	}
	return raw
}

// toEvents converte o resultado do engine para o contrato de saída
func toEvents(result scan.Result) []events.OpportunityFound {
	opps := make([]events.OpportunityFound, 0, len(result.Opportunities))
	for _, o := range result.Opportunities {
		opps = append(opps, events.OpportunityFound{
			CycleID:            o.CycleID,
			EventID:            o.Key.EventID,
			Market:             string(o.Key.Market),
			Selection:          o.Key.Selection,
			Point:              o.Key.Point,
			PlayerName:         o.Key.PlayerName,
			Venue:              string(o.Venue),
			Price:              o.Price,
			BenchmarkSource:    string(o.Benchmark.Source),
			BenchmarkVenue:     string(o.Benchmark.SourceVenue),
			BenchmarkPrice:     o.Benchmark.ReferencePrice,
			FairProbability:    o.Benchmark.FairProbability,
			ContributingVenues: o.Benchmark.ContributingVenues,
			EVPercent:          o.EVPercent,
			EdgePercent:        o.EdgePercent,
			PositiveVenueCount: o.PositiveVenueCount,
			Best:               o.Best,
			FoundAt:            o.FoundAt,
		})
	}
	return opps
}
