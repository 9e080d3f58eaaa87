package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// PostgresRepo persiste o log histórico de oportunidades no Postgres.
// O histórico é append-only: cada ciclo acrescenta suas linhas, nunca
// sobrescreve as de ciclos anteriores.
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// AppendOpportunities grava todas as oportunidades de um ciclo numa única
// transação; ou o ciclo inteiro entra no histórico, ou nada entra.
func (r *PostgresRepo) AppendOpportunities(ctx context.Context, opps []events.OpportunityFound) error {
	if len(opps) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO ev_opportunities
		  (cycle_id, game_id, venue, market, selection, point, player_name,
		   price, benchmark_source, benchmark_venue, benchmark_price, fair_prob,
		   contributing_venues, ev_percent, edge_percent, positive_venues, best, found_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range opps {
		if _, err := stmt.ExecContext(ctx,
			o.CycleID, o.EventID, o.Venue, o.Market, o.Selection, o.Point, nullIfEmpty(o.PlayerName),
			o.Price, o.BenchmarkSource, nullIfEmpty(o.BenchmarkVenue), o.BenchmarkPrice, o.FairProbability,
			o.ContributingVenues, o.EVPercent, o.EdgePercent, o.PositiveVenueCount, o.Best, o.FoundAt,
		); err != nil {
			return fmt.Errorf("insert opportunity: %w", err)
		}
	}

	return tx.Commit()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
