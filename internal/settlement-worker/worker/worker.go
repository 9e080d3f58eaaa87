package worker

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/sports-ev-scanner/internal/engine/clv"
	"github.com/radieske/sports-ev-scanner/internal/engine/market"
	"github.com/radieske/sports-ev-scanner/internal/engine/settle"
	"github.com/radieske/sports-ev-scanner/internal/settlement-worker/repo"
)

// Worker liquida apostas pendentes de jogos encerrados na cadência
// configurada: resolve o desfecho pelo placar, calcula o CLV contra a
// linha de fechamento da casa sharp e grava um snapshot de bankroll.
type Worker struct {
	Log              *zap.Logger
	Repo             *repo.PostgresRepo
	Interval         time.Duration
	StartingBankroll float64

	OnSettled func(outcome string)
	OnError   func(stage string)
}

// Run executa uma passada imediata e depois segue na cadência configurada
func (w *Worker) Run(ctx context.Context) {
	w.pass(ctx)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Log.Info("context canceled, stopping settlement worker")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

// pass liquida todas as apostas elegíveis. Uma falha individual não
// interrompe a passada: a aposta fica para a próxima.
func (w *Worker) pass(ctx context.Context) {
	pending, err := w.Repo.PendingOnCompletedGames(ctx)
	if err != nil {
		w.Log.Error("failed to load pending bets", zap.Error(err))
		w.fail("load")
		return
	}
	if len(pending) == 0 {
		return
	}

	settled := 0
	for _, bet := range pending {
		if w.settleOne(ctx, bet) {
			settled++
		}
	}

	if settled > 0 {
		snap, err := w.Repo.SnapshotBankroll(ctx, w.StartingBankroll)
		if err != nil {
			w.Log.Error("bankroll snapshot failed", zap.Error(err))
			w.fail("snapshot")
		} else {
			w.Log.Info("bankroll snapshot",
				zap.Float64("bankroll", snap.Bankroll),
				zap.Float64("roi", snap.ROI),
				zap.Float64("win_rate", snap.WinRate),
				zap.Int("total_bets", snap.TotalBets),
			)
		}
	}

	w.Log.Info("settlement pass complete",
		zap.Int("pending", len(pending)),
		zap.Int("settled", settled),
	)
}

func (w *Worker) settleOne(ctx context.Context, bet repo.PendingBet) bool {
	mkt, err := market.ParseMarket(bet.Market)
	if err != nil {
		w.Log.Warn("bet with unknown market", zap.String("bet_id", bet.ID), zap.String("market", bet.Market))
		w.fail("parse")
		return false
	}

	outcome, profit := settle.Outcome(
		settle.Bet{
			Market:    mkt,
			Selection: bet.Selection,
			Point:     bet.Point,
			Price:     bet.Price,
			Stake:     bet.Stake,
		},
		settle.Score{
			HomeTeam:  bet.HomeTeam,
			AwayTeam:  bet.AwayTeam,
			HomeScore: bet.HomeScore,
			AwayScore: bet.AwayScore,
		},
	)
	// Props de jogador não liquidam automaticamente; ficam pendentes
	if outcome == settle.ResultPending {
		return false
	}

	s := repo.Settlement{
		BetID:      bet.ID,
		Outcome:    string(outcome),
		ProfitLoss: profit,
	}

	// CLV é best-effort: a aposta liquida mesmo sem linha de fechamento
	if closing, ok, err := w.Repo.ClosingPrice(ctx, bet); err != nil {
		w.Log.Warn("closing price lookup failed", zap.String("bet_id", bet.ID), zap.Error(err))
		w.fail("closing")
	} else if !ok {
		w.Log.Info("no closing line recorded, settling without CLV", zap.String("bet_id", bet.ID))
	} else {
		if pct, err := clv.Compute(bet.Price, closing); err == nil {
			s.ClosingPrice = sql.NullFloat64{Float64: closing, Valid: true}
			s.CLVPercent = sql.NullFloat64{Float64: pct, Valid: true}
		}
	}

	if err := w.Repo.ApplySettlement(ctx, s); err != nil {
		w.Log.Error("settlement write failed", zap.String("bet_id", bet.ID), zap.Error(err))
		w.fail("write")
		return false
	}

	if w.OnSettled != nil {
		w.OnSettled(s.Outcome)
	}
	w.Log.Info("bet settled",
		zap.String("bet_id", bet.ID),
		zap.String("outcome", s.Outcome),
		zap.Float64("profit_loss", s.ProfitLoss),
		zap.Bool("clv_available", s.CLVPercent.Valid),
	)
	return true
}

func (w *Worker) fail(stage string) {
	if w.OnError != nil {
		w.OnError(stage)
	}
}
