package dto

// PlaceBetRequest registra uma aposta manual sobre uma proposta cotada.
// O preço e a stake são os efetivamente obtidos na casa; o EV na colocação
// é calculado pelo servidor contra o benchmark do ciclo live.
type PlaceBetRequest struct {
	GameID     string   `json:"game_id"`
	Venue      string   `json:"venue"`
	Market     string   `json:"market"`
	Selection  string   `json:"selection"`
	Point      *float64 `json:"point,omitempty"`
	PlayerName string   `json:"player_name,omitempty"`
	Price      float64  `json:"price"`
	Stake      float64  `json:"stake"`
}
