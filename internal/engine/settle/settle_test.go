package settle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/sports-ev-scanner/internal/engine/market"
)

var finalScore = Score{
	HomeTeam:  "Boston Celtics",
	AwayTeam:  "Miami Heat",
	HomeScore: 112,
	AwayScore: 104,
}

func ptr(v float64) *float64 { return &v }

func TestMoneyline(t *testing.T) {
	win := Bet{Market: market.MarketMoneyline, Selection: "Boston Celtics", Price: 1.90, Stake: 100}
	res, profit := Outcome(win, finalScore)
	assert.Equal(t, ResultWin, res)
	assert.InDelta(t, 90.0, profit, 1e-9)

	loss := Bet{Market: market.MarketMoneyline, Selection: "Miami Heat", Price: 2.10, Stake: 100}
	res, profit = Outcome(loss, finalScore)
	assert.Equal(t, ResultLoss, res)
	assert.InDelta(t, -100.0, profit, 1e-9)
}

func TestMoneylinePushOnTie(t *testing.T) {
	tie := Score{HomeTeam: "A", AwayTeam: "B", HomeScore: 100, AwayScore: 100}
	bet := Bet{Market: market.MarketMoneyline, Selection: "A", Price: 1.90, Stake: 100}
	res, profit := Outcome(bet, tie)
	assert.Equal(t, ResultPush, res)
	assert.Zero(t, profit)
}

func TestSpread(t *testing.T) {
	// Celtics -7.5 com vitória por 8: cobre
	cover := Bet{Market: market.MarketSpreads, Selection: "Boston Celtics", Point: ptr(-7.5), Price: 1.91, Stake: 50}
	res, profit := Outcome(cover, finalScore)
	assert.Equal(t, ResultWin, res)
	assert.InDelta(t, 45.5, profit, 1e-9)

	// Celtics -8.5: não cobre
	miss := Bet{Market: market.MarketSpreads, Selection: "Boston Celtics", Point: ptr(-8.5), Price: 1.91, Stake: 50}
	res, profit = Outcome(miss, finalScore)
	assert.Equal(t, ResultLoss, res)
	assert.InDelta(t, -50.0, profit, 1e-9)

	// Celtics -8 cravado: push
	push := Bet{Market: market.MarketSpreads, Selection: "Boston Celtics", Point: ptr(-8), Price: 1.91, Stake: 50}
	res, profit = Outcome(push, finalScore)
	assert.Equal(t, ResultPush, res)
	assert.Zero(t, profit)

	// Heat +8.5 como visitante: cobre
	away := Bet{Market: market.MarketSpreads, Selection: "Miami Heat", Point: ptr(8.5), Price: 1.95, Stake: 50}
	res, _ = Outcome(away, finalScore)
	assert.Equal(t, ResultWin, res)
}

func TestSpreadWithoutPointStaysPending(t *testing.T) {
	bet := Bet{Market: market.MarketSpreads, Selection: "Boston Celtics", Price: 1.91, Stake: 50}
	res, profit := Outcome(bet, finalScore)
	assert.Equal(t, ResultPending, res)
	assert.Zero(t, profit)
}

func TestTotal(t *testing.T) {
	// 112+104 = 216
	over := Bet{Market: market.MarketTotals, Selection: "Over", Point: ptr(215.5), Price: 1.90, Stake: 100}
	res, profit := Outcome(over, finalScore)
	assert.Equal(t, ResultWin, res)
	assert.InDelta(t, 90.0, profit, 1e-9)

	under := Bet{Market: market.MarketTotals, Selection: "Under", Point: ptr(215.5), Price: 1.90, Stake: 100}
	res, profit = Outcome(under, finalScore)
	assert.Equal(t, ResultLoss, res)
	assert.InDelta(t, -100.0, profit, 1e-9)

	exact := Bet{Market: market.MarketTotals, Selection: "Over", Point: ptr(216), Price: 1.90, Stake: 100}
	res, profit = Outcome(exact, finalScore)
	assert.Equal(t, ResultPush, res)
	assert.Zero(t, profit)

	// Seleção aceita variação de caixa
	lower := Bet{Market: market.MarketTotals, Selection: "under", Point: ptr(216.5), Price: 1.90, Stake: 100}
	res, _ = Outcome(lower, finalScore)
	assert.Equal(t, ResultWin, res)
}

func TestPropsStayPending(t *testing.T) {
	props := []market.Market{
		market.MarketPlayerPoints,
		market.MarketPlayerRebounds,
		market.MarketPlayerAssists,
		market.MarketPlayerPRA,
	}
	for _, m := range props {
		bet := Bet{Market: m, Selection: "Over", Point: ptr(25.5), Price: 1.90, Stake: 100}
		res, profit := Outcome(bet, finalScore)
		assert.Equal(t, ResultPending, res, "market %s", m)
		assert.Zero(t, profit)
	}
}
