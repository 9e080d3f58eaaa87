package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/client"
	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/publisher"
	"github.com/radieske/sports-ev-scanner/internal/odds-ingest/repo"
	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// Mercados coletados a cada poll. Mercados de jogo vêm do endpoint bulk;
// props de jogador exigem uma chamada por evento.
var (
	GameMarkets = []string{"h2h", "spreads", "totals"}
	PropMarkets = []string{"player_points", "player_rebounds", "player_assists"}
)

// Poller coleta periodicamente as cotações correntes na The Odds API,
// publica o snapshot como QuoteBatch no Kafka e mantém o catálogo de
// jogos e as linhas de fechamento no Postgres.
type Poller struct {
	Log        *zap.Logger
	Client     *client.Client
	Repo       *repo.PostgresRepo
	Publisher  *publisher.KafkaPublisher
	Sport      string
	SharpVenue string
	Interval   time.Duration

	OnPolled func(rows, eventsSeen int)
	OnError  func(stage string)
}

// Run executa um poll imediato e depois segue na cadência configurada
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Log.Info("context canceled, stopping poller")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll coleta todos os mercados, publica o batch e atualiza resultados.
// Falha em um mercado não derruba o poll: o batch sai com o que coletou.
func (p *Poller) poll(ctx context.Context) {
	now := time.Now().UTC()
	var all []client.Event

	for _, mkt := range GameMarkets {
		evs, err := p.Client.FetchGameOdds(ctx, mkt)
		if err != nil {
			p.Log.Warn("game odds fetch failed", zap.String("market", mkt), zap.Error(err))
			p.fail("fetch_game")
			continue
		}
		all = append(all, evs...)
	}

	all = append(all, p.fetchProps(ctx)...)

	rows := p.ingestEvents(ctx, all, now)
	if len(rows) == 0 {
		p.Log.Warn("poll produced no quotes")
		return
	}

	batch := events.QuoteBatch{
		BatchID:    uuid.NewString(),
		Sport:      p.Sport,
		Rows:       rows,
		Source:     "odds-ingest-service",
		ProducedAt: now,
	}
	if err := p.Publisher.Publish(ctx, batch); err != nil {
		p.Log.Error("failed to publish quote batch", zap.Error(err))
		p.fail("publish")
	}

	p.updateResults(ctx)

	if p.OnPolled != nil {
		p.OnPolled(len(rows), len(all))
	}
	p.Log.Info("poll complete",
		zap.String("batch_id", batch.BatchID),
		zap.Int("events", len(all)),
		zap.Int("rows", len(rows)),
	)
}

// fetchProps busca props de jogador evento a evento, com pausa de 1s entre
// chamadas para respeitar o rate limit da API.
func (p *Poller) fetchProps(ctx context.Context) []client.Event {
	ids, err := p.Client.ListEventIDs(ctx)
	if err != nil {
		p.Log.Warn("event list fetch failed", zap.Error(err))
		p.fail("fetch_events")
		return nil
	}

	var out []client.Event
	for i, id := range ids {
		if i > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(time.Second):
			}
		}
		ev, err := p.Client.FetchEventProps(ctx, id, PropMarkets)
		if err != nil {
			p.Log.Warn("props fetch failed", zap.String("event_id", id), zap.Error(err))
			p.fail("fetch_props")
			continue
		}
		out = append(out, *ev)
	}
	return out
}

// ingestEvents achata a resposta da API em QuoteRows, faz o upsert dos
// jogos e renova o snapshot de linhas de fechamento da casa sharp para
// jogos que ainda não começaram.
func (p *Poller) ingestEvents(ctx context.Context, evs []client.Event, now time.Time) []events.QuoteRow {
	var rows []events.QuoteRow
	sharpByGame := make(map[string][]events.QuoteRow)
	seenGames := make(map[string]bool)

	for _, ev := range evs {
		if !seenGames[ev.ID] {
			seenGames[ev.ID] = true
			if err := p.Repo.UpsertGame(ctx, ev.ID, ev.HomeTeam, ev.AwayTeam, ev.CommenceTime); err != nil {
				p.Log.Warn("game upsert failed", zap.String("event_id", ev.ID), zap.Error(err))
				p.fail("db_game")
			}
		}

		for _, book := range ev.Bookmakers {
			for _, mkt := range book.Markets {
				for _, out := range mkt.Outcomes {
					row := events.QuoteRow{
						EventID:     ev.ID,
						Market:      mkt.Key,
						Selection:   out.Name,
						Point:       out.Point,
						PlayerName:  out.Description,
						Venue:       book.Key,
						Price:       out.Price,
						PriceFormat: "decimal",
						ObservedAt:  now,
					}
					rows = append(rows, row)

					if book.Key == p.SharpVenue && ev.CommenceTime.After(now) {
						sharpByGame[ev.ID] = append(sharpByGame[ev.ID], row)
					}
				}
			}
		}
	}

	for gameID, lines := range sharpByGame {
		if err := p.Repo.ReplaceClosingLines(ctx, gameID, lines); err != nil {
			p.Log.Warn("closing lines update failed", zap.String("game_id", gameID), zap.Error(err))
			p.fail("db_closing")
		}
	}
	return rows
}

// updateResults busca placares recentes e marca jogos encerrados
func (p *Poller) updateResults(ctx context.Context) {
	scores, err := p.Client.FetchScores(ctx, 3)
	if err != nil {
		p.Log.Warn("scores fetch failed", zap.Error(err))
		p.fail("fetch_scores")
		return
	}

	completed := 0
	for _, sc := range scores {
		if !sc.Completed {
			continue
		}
		res := events.GameResult{
			EventID:      sc.ID,
			HomeTeam:     sc.HomeTeam,
			AwayTeam:     sc.AwayTeam,
			Status:       "completed",
			CommenceTime: sc.CommenceTime,
		}
		for _, entry := range sc.Scores {
			n, err := parseScore(entry.Score)
			if err != nil {
				continue
			}
			switch entry.Name {
			case sc.HomeTeam:
				res.HomeScore = &n
			case sc.AwayTeam:
				res.AwayScore = &n
			}
		}
		if err := p.Repo.MarkCompleted(ctx, res); err != nil {
			p.Log.Warn("result update failed", zap.String("event_id", sc.ID), zap.Error(err))
			p.fail("db_result")
			continue
		}
		completed++
	}
	if completed > 0 {
		p.Log.Info("game results updated", zap.Int("completed", completed))
	}
}

func (p *Poller) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

// A API devolve placares como strings
func parseScore(s string) (int, error) {
	return strconv.Atoi(s)
}
