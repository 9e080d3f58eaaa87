package dto

import "time"

// BetResponse é a visão completa de uma aposta registrada
type BetResponse struct {
	ID              string    `json:"id"`
	GameID          string    `json:"game_id"`
	Venue           string    `json:"venue"`
	Market          string    `json:"market"`
	Selection       string    `json:"selection"`
	Point           *float64  `json:"point,omitempty"`
	PlayerName      string    `json:"player_name,omitempty"`
	Price           float64   `json:"price"`
	Stake           float64   `json:"stake"`
	EVAtPlacement   float64   `json:"ev_at_placement"`
	EdgeAtPlacement float64   `json:"edge_at_placement"`
	PlacedAt        time.Time `json:"placed_at"`
	Outcome         string    `json:"outcome"`
	ProfitLoss      *float64  `json:"profit_loss,omitempty"`
	ClosingPrice    *float64  `json:"closing_price,omitempty"`
	CLVPercent      *float64  `json:"clv_percent,omitempty"`
}

// StatsResponse agrega a performance corrente da estratégia
type StatsResponse struct {
	Bankroll         float64    `json:"bankroll"`
	CumulativeProfit float64    `json:"cumulative_profit"`
	TotalStaked      float64    `json:"total_staked"`
	ROI              float64    `json:"roi"`
	WinRate          float64    `json:"win_rate"`
	TotalBets        int        `json:"total_bets"`
	PendingBets      int        `json:"pending_bets"`
	AvgCLVPercent    *float64   `json:"avg_clv_percent,omitempty"`
	SnapshotTime     *time.Time `json:"snapshot_time,omitempty"`
}
