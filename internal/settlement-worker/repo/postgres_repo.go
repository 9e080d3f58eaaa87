package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PendingBet é uma aposta pendente cujo jogo já tem placar final
type PendingBet struct {
	ID         string
	GameID     string
	Market     string
	Selection  string
	Point      *float64
	PlayerName string
	Price      float64
	Stake      float64
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
}

// Settlement é o desfecho a gravar para uma aposta liquidada
type Settlement struct {
	BetID        string
	Outcome      string
	ProfitLoss   float64
	ClosingPrice sql.NullFloat64
	CLVPercent   sql.NullFloat64
}

// BankrollSnapshot agrega a performance acumulada da estratégia
type BankrollSnapshot struct {
	Bankroll         float64
	CumulativeProfit float64
	TotalStaked      float64
	ROI              float64
	WinRate          float64
	TotalBets        int
	SnapshotTime     time.Time
}

// PostgresRepo é o acesso a dados da liquidação: apostas pendentes,
// linhas de fechamento, desfechos e histórico de bankroll.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// PendingOnCompletedGames carrega apostas pendentes cujo jogo já encerrou,
// com o placar final no mesmo row.
func (r *PostgresRepo) PendingOnCompletedGames(ctx context.Context) ([]PendingBet, error) {
	const q = `
		SELECT b.id, b.game_id, b.market, b.selection, b.point, COALESCE(b.player_name, ''),
		       b.price, b.stake,
		       g.home_team, g.away_team, g.home_score, g.away_score
		  FROM bets b
		  JOIN games g ON g.game_id = b.game_id
		 WHERE b.outcome = 'pending'
		   AND g.status = 'completed'
		   AND g.home_score IS NOT NULL
		   AND g.away_score IS NOT NULL
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query pending bets: %w", err)
	}
	defer rows.Close()

	var out []PendingBet
	for rows.Next() {
		var b PendingBet
		if err := rows.Scan(
			&b.ID, &b.GameID, &b.Market, &b.Selection, &b.Point, &b.PlayerName,
			&b.Price, &b.Stake,
			&b.HomeTeam, &b.AwayTeam, &b.HomeScore, &b.AwayScore,
		); err != nil {
			return nil, fmt.Errorf("scan pending bet: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ClosingPrice busca a linha de fechamento da casa sharp para a proposta
// exata da aposta. Linhas com point diferente nunca casam.
func (r *PostgresRepo) ClosingPrice(ctx context.Context, b PendingBet) (float64, bool, error) {
	const q = `
		SELECT price
		  FROM closing_lines
		 WHERE game_id = $1
		   AND market = $2
		   AND selection = $3
		   AND point IS NOT DISTINCT FROM $4
		   AND player_name IS NOT DISTINCT FROM NULLIF($5, '')
		 ORDER BY recorded_at DESC
		 LIMIT 1
	`
	var price float64
	err := r.DB.QueryRowContext(ctx, q, b.GameID, b.Market, b.Selection, b.Point, b.PlayerName).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query closing price: %w", err)
	}
	return price, true, nil
}

// ApplySettlement grava o desfecho de uma aposta
func (r *PostgresRepo) ApplySettlement(ctx context.Context, s Settlement) error {
	const q = `
		UPDATE bets
		   SET outcome = $2,
		       profit_loss = $3,
		       closing_price = $4,
		       clv_percent = $5
		 WHERE id = $1
		   AND outcome = 'pending'
	`
	_, err := r.DB.ExecContext(ctx, q, s.BetID, s.Outcome, s.ProfitLoss, s.ClosingPrice, s.CLVPercent)
	if err != nil {
		return fmt.Errorf("settle bet %s: %w", s.BetID, err)
	}
	return nil
}

// SnapshotBankroll agrega as apostas liquidadas e grava um ponto no
// histórico de bankroll. Push conta como aposta liquidada sem lucro.
func (r *PostgresRepo) SnapshotBankroll(ctx context.Context, startingBankroll float64) (BankrollSnapshot, error) {
	const q = `
		SELECT COALESCE(SUM(profit_loss), 0),
		       COALESCE(SUM(stake), 0),
		       COUNT(*),
		       COUNT(*) FILTER (WHERE outcome = 'win')
		  FROM bets
		 WHERE outcome IN ('win', 'loss', 'push')
	`
	var snap BankrollSnapshot
	var wins int
	if err := r.DB.QueryRowContext(ctx, q).Scan(
		&snap.CumulativeProfit, &snap.TotalStaked, &snap.TotalBets, &wins,
	); err != nil {
		return snap, fmt.Errorf("aggregate bets: %w", err)
	}

	snap.Bankroll = startingBankroll + snap.CumulativeProfit
	snap.SnapshotTime = time.Now().UTC()
	if snap.TotalStaked > 0 {
		snap.ROI = (snap.CumulativeProfit / snap.TotalStaked) * 100
	}
	if snap.TotalBets > 0 {
		snap.WinRate = (float64(wins) / float64(snap.TotalBets)) * 100
	}

	const ins = `
		INSERT INTO bankroll_history
		  (bankroll, cumulative_profit, total_staked, roi, win_rate, total_bets, snapshot_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.DB.ExecContext(ctx, ins,
		snap.Bankroll, snap.CumulativeProfit, snap.TotalStaked,
		snap.ROI, snap.WinRate, snap.TotalBets, snap.SnapshotTime,
	); err != nil {
		return snap, fmt.Errorf("insert bankroll snapshot: %w", err)
	}
	return snap, nil
}
