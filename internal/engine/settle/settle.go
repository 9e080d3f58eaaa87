package settle

import (
	"strings"

	"github.com/radieske/sports-ev-scanner/internal/engine/market"
)

// Result é o desfecho de uma aposta liquidada automaticamente
type Result string

const (
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultPush    Result = "push"
	ResultPending Result = "pending"
)

// Bet carrega os campos mínimos para liquidar uma aposta de mercado de jogo
type Bet struct {
	Market    market.Market
	Selection string
	Point     *float64
	Price     float64 // multiplicador decimal na colocação
	Stake     float64
}

// Score é o placar final de um jogo
type Score struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// Outcome liquida uma aposta de mercado de jogo (moneyline, spread, total)
// comparando a seleção registrada com o placar final. Props de jogador nunca
// são liquidadas aqui: não há granularidade de box score disponível, então
// permanecem pendentes até ação externa.
// Retorna o desfecho e o lucro/prejuízo: stake*(price-1) na vitória,
// -stake na derrota, zero em push ou pendência.
func Outcome(b Bet, s Score) (Result, float64) {
	if b.Market.IsProp() {
		return ResultPending, 0
	}

	switch b.Market {
	case market.MarketMoneyline:
		return settleMoneyline(b, s)
	case market.MarketSpreads:
		return settleSpread(b, s)
	case market.MarketTotals:
		return settleTotal(b, s)
	}
	return ResultPending, 0
}

func settleMoneyline(b Bet, s Score) (Result, float64) {
	if s.HomeScore == s.AwayScore {
		return ResultPush, 0
	}
	winner := s.HomeTeam
	if s.AwayScore > s.HomeScore {
		winner = s.AwayTeam
	}
	if b.Selection == winner {
		return ResultWin, b.Stake * (b.Price - 1)
	}
	return ResultLoss, -b.Stake
}

func settleSpread(b Bet, s Score) (Result, float64) {
	if b.Point == nil {
		return ResultPending, 0
	}

	// A seleção é o time; Point é o spread aplicado ao placar dele
	var adjusted, opponent float64
	if b.Selection == s.HomeTeam {
		adjusted = float64(s.HomeScore) + *b.Point
		opponent = float64(s.AwayScore)
	} else {
		adjusted = float64(s.AwayScore) + *b.Point
		opponent = float64(s.HomeScore)
	}

	switch {
	case adjusted > opponent:
		return ResultWin, b.Stake * (b.Price - 1)
	case adjusted == opponent:
		return ResultPush, 0
	}
	return ResultLoss, -b.Stake
}

func settleTotal(b Bet, s Score) (Result, float64) {
	if b.Point == nil {
		return ResultPending, 0
	}

	total := float64(s.HomeScore + s.AwayScore)
	over := strings.EqualFold(b.Selection, "Over")

	switch {
	case total == *b.Point:
		return ResultPush, 0
	case over && total > *b.Point, !over && total < *b.Point:
		return ResultWin, b.Stake * (b.Price - 1)
	}
	return ResultLoss, -b.Stake
}
