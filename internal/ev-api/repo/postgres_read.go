package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/sports-ev-scanner/internal/ev-api/dto"
	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// ReadRepo concentra as consultas da API sobre o histórico de
// oportunidades, apostas e bankroll.
type ReadRepo struct {
	DB *sql.DB
}

// OpportunityHistory retorna as oportunidades registradas desde o corte,
// opcionalmente filtradas por EV mínimo.
func (r *ReadRepo) OpportunityHistory(ctx context.Context, since time.Time, minEV float64) ([]events.OpportunityFound, error) {
	const q = `
		SELECT cycle_id, game_id, venue, market, selection, point, COALESCE(player_name, ''),
		       price, benchmark_source, COALESCE(benchmark_venue, ''), benchmark_price, fair_prob,
		       contributing_venues, ev_percent, edge_percent, positive_venues, best, found_at
		  FROM ev_opportunities
		 WHERE found_at >= $1
		   AND ev_percent >= $2
		 ORDER BY found_at DESC, ev_percent DESC
	`
	rows, err := r.DB.QueryContext(ctx, q, since, minEV)
	if err != nil {
		return nil, fmt.Errorf("query opportunity history: %w", err)
	}
	defer rows.Close()

	var out []events.OpportunityFound
	for rows.Next() {
		var o events.OpportunityFound
		if err := rows.Scan(
			&o.CycleID, &o.EventID, &o.Venue, &o.Market, &o.Selection, &o.Point, &o.PlayerName,
			&o.Price, &o.BenchmarkSource, &o.BenchmarkVenue, &o.BenchmarkPrice, &o.FairProbability,
			&o.ContributingVenues, &o.EVPercent, &o.EdgePercent, &o.PositiveVenueCount, &o.Best, &o.FoundAt,
		); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// LatestCycle reconstrói o ciclo mais recente a partir do histórico.
// Usado como fallback do endpoint live quando o Redis não tem o ciclo
// (expirado ou indisponível). ok=false quando o histórico está vazio.
func (r *ReadRepo) LatestCycle(ctx context.Context) (events.LiveCycle, bool, error) {
	const q = `
		SELECT cycle_id, game_id, venue, market, selection, point, COALESCE(player_name, ''),
		       price, benchmark_source, COALESCE(benchmark_venue, ''), benchmark_price, fair_prob,
		       contributing_venues, ev_percent, edge_percent, positive_venues, best, found_at
		  FROM ev_opportunities
		 WHERE cycle_id = (SELECT cycle_id FROM ev_opportunities ORDER BY found_at DESC LIMIT 1)
		 ORDER BY ev_percent DESC
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return events.LiveCycle{}, false, fmt.Errorf("query latest cycle: %w", err)
	}
	defer rows.Close()

	var cycle events.LiveCycle
	for rows.Next() {
		var o events.OpportunityFound
		if err := rows.Scan(
			&o.CycleID, &o.EventID, &o.Venue, &o.Market, &o.Selection, &o.Point, &o.PlayerName,
			&o.Price, &o.BenchmarkSource, &o.BenchmarkVenue, &o.BenchmarkPrice, &o.FairProbability,
			&o.ContributingVenues, &o.EVPercent, &o.EdgePercent, &o.PositiveVenueCount, &o.Best, &o.FoundAt,
		); err != nil {
			return events.LiveCycle{}, false, fmt.Errorf("scan opportunity: %w", err)
		}
		cycle.Opportunities = append(cycle.Opportunities, o)
	}
	if err := rows.Err(); err != nil {
		return events.LiveCycle{}, false, err
	}
	if len(cycle.Opportunities) == 0 {
		return events.LiveCycle{}, false, nil
	}
	cycle.CycleID = cycle.Opportunities[0].CycleID
	cycle.StartedAt = cycle.Opportunities[0].FoundAt
	cycle.FinishedAt = cycle.Opportunities[0].FoundAt
	return cycle, true, nil
}

// InsertBet registra uma aposta pendente e devolve a visão completa
func (r *ReadRepo) InsertBet(ctx context.Context, id string, req dto.PlaceBetRequest, ev, edge float64, placedAt time.Time) error {
	const q = `
		INSERT INTO bets
		  (id, game_id, venue, market, selection, point, player_name,
		   price, stake, ev_at_placement, edge_at_placement, placed_at, outcome)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'pending')
	`
	_, err := r.DB.ExecContext(ctx, q,
		id, req.GameID, req.Venue, req.Market, req.Selection, req.Point, nullIfEmpty(req.PlayerName),
		req.Price, req.Stake, ev, edge, placedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

// GetBet carrega uma aposta pelo id; sql.ErrNoRows quando não existe
func (r *ReadRepo) GetBet(ctx context.Context, id string) (dto.BetResponse, error) {
	const q = `
		SELECT id, game_id, venue, market, selection, point, COALESCE(player_name, ''),
		       price, stake, ev_at_placement, edge_at_placement, placed_at, outcome,
		       profit_loss, closing_price, clv_percent
		  FROM bets
		 WHERE id = $1
	`
	var b dto.BetResponse
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.GameID, &b.Venue, &b.Market, &b.Selection, &b.Point, &b.PlayerName,
		&b.Price, &b.Stake, &b.EVAtPlacement, &b.EdgeAtPlacement, &b.PlacedAt, &b.Outcome,
		&b.ProfitLoss, &b.ClosingPrice, &b.CLVPercent,
	)
	return b, err
}

// ListBets retorna as apostas mais recentes, limitadas
func (r *ReadRepo) ListBets(ctx context.Context, limit int) ([]dto.BetResponse, error) {
	const q = `
		SELECT id, game_id, venue, market, selection, point, COALESCE(player_name, ''),
		       price, stake, ev_at_placement, edge_at_placement, placed_at, outcome,
		       profit_loss, closing_price, clv_percent
		  FROM bets
		 ORDER BY placed_at DESC
		 LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var out []dto.BetResponse
	for rows.Next() {
		var b dto.BetResponse
		if err := rows.Scan(
			&b.ID, &b.GameID, &b.Venue, &b.Market, &b.Selection, &b.Point, &b.PlayerName,
			&b.Price, &b.Stake, &b.EVAtPlacement, &b.EdgeAtPlacement, &b.PlacedAt, &b.Outcome,
			&b.ProfitLoss, &b.ClosingPrice, &b.CLVPercent,
		); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Stats combina o último snapshot de bankroll com agregados correntes
// das apostas (CLV médio e pendências).
func (r *ReadRepo) Stats(ctx context.Context, startingBankroll float64) (dto.StatsResponse, error) {
	stats := dto.StatsResponse{Bankroll: startingBankroll}

	const snapQ = `
		SELECT bankroll, cumulative_profit, total_staked, roi, win_rate, total_bets, snapshot_time
		  FROM bankroll_history
		 ORDER BY snapshot_time DESC
		 LIMIT 1
	`
	var snapTime time.Time
	err := r.DB.QueryRowContext(ctx, snapQ).Scan(
		&stats.Bankroll, &stats.CumulativeProfit, &stats.TotalStaked,
		&stats.ROI, &stats.WinRate, &stats.TotalBets, &snapTime,
	)
	if err != nil && err != sql.ErrNoRows {
		return stats, fmt.Errorf("query bankroll snapshot: %w", err)
	}
	if err == nil {
		stats.SnapshotTime = &snapTime
	}

	const aggQ = `
		SELECT COUNT(*) FILTER (WHERE outcome = 'pending'),
		       AVG(clv_percent) FILTER (WHERE clv_percent IS NOT NULL)
		  FROM bets
	`
	var avgCLV sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, aggQ).Scan(&stats.PendingBets, &avgCLV); err != nil {
		return stats, fmt.Errorf("query bet aggregates: %w", err)
	}
	if avgCLV.Valid {
		stats.AvgCLVPercent = &avgCLV.Float64
	}
	return stats, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
