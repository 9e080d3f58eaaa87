package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

// PostgresRepo mantém o catálogo de jogos e as linhas de fechamento da
// casa sharp, insumos da liquidação e do CLV.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertGame registra (ou atualiza) um jogo visto na coleta de cotações
func (r *PostgresRepo) UpsertGame(ctx context.Context, eventID, home, away string, commence time.Time) error {
	const q = `
		INSERT INTO games (game_id, home_team, away_team, commence_time, status)
		VALUES ($1, $2, $3, $4, 'upcoming')
		ON CONFLICT (game_id) DO UPDATE
		  SET home_team = EXCLUDED.home_team,
		      away_team = EXCLUDED.away_team,
		      commence_time = EXCLUDED.commence_time
	`
	_, err := r.DB.ExecContext(ctx, q, eventID, home, away, commence)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", eventID, err)
	}
	return nil
}

// MarkCompleted grava o placar final e promove o jogo a "completed".
// Jogos já completos não regridem de status.
func (r *PostgresRepo) MarkCompleted(ctx context.Context, res events.GameResult) error {
	const q = `
		INSERT INTO games (game_id, home_team, away_team, commence_time, home_score, away_score, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'completed')
		ON CONFLICT (game_id) DO UPDATE
		  SET home_score = EXCLUDED.home_score,
		      away_score = EXCLUDED.away_score,
		      status = 'completed'
	`
	_, err := r.DB.ExecContext(ctx, q,
		res.EventID, res.HomeTeam, res.AwayTeam, res.CommenceTime, res.HomeScore, res.AwayScore)
	if err != nil {
		return fmt.Errorf("mark game %s completed: %w", res.EventID, err)
	}
	return nil
}

// ReplaceClosingLines substitui, numa transação, o snapshot de linhas da
// casa sharp para um jogo. Enquanto o jogo não começa, cada poll renova o
// snapshot; o último gravado antes do tip-off é a linha de fechamento.
func (r *PostgresRepo) ReplaceClosingLines(ctx context.Context, gameID string, rows []events.QuoteRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM closing_lines WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("clear closing lines: %w", err)
	}

	const q = `
		INSERT INTO closing_lines (game_id, market, selection, point, player_name, venue, price, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			gameID, row.Market, row.Selection, row.Point, nullIfEmpty(row.PlayerName),
			row.Venue, row.Price, row.ObservedAt,
		); err != nil {
			return fmt.Errorf("insert closing line: %w", err)
		}
	}

	return tx.Commit()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
