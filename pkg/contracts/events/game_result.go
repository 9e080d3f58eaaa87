package events

import "time"

// GameResult é o placar de um jogo, usado na liquidação automática e na
// marcação de linhas de fechamento quando o evento trava.
type GameResult struct {
	EventID      string    `json:"event_id"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	HomeScore    *int      `json:"home_score,omitempty"`
	AwayScore    *int      `json:"away_score,omitempty"`
	Status       string    `json:"status"` // "upcoming" | "live" | "completed"
	CommenceTime time.Time `json:"commence_time"`
}
