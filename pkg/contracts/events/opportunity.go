package events

import "time"

// Evento publicado no tópico "ev_opportunities" a cada oportunidade
// sinalizada pelo scan. Carrega o benchmark completo para que o consumidor
// exiba preço da casa e linha de referência lado a lado.
type OpportunityFound struct {
	CycleID    string   `json:"cycle_id"`
	EventID    string   `json:"event_id"`
	Market     string   `json:"market"`
	Selection  string   `json:"selection"`
	Point      *float64 `json:"point,omitempty"`
	PlayerName string   `json:"player_name,omitempty"`

	Venue string  `json:"venue"`
	Price float64 `json:"price"`

	BenchmarkSource    string  `json:"benchmark_source"` // "sharp" | "consensus"
	BenchmarkVenue     string  `json:"benchmark_venue,omitempty"`
	BenchmarkPrice     float64 `json:"benchmark_price"`
	FairProbability    float64 `json:"fair_probability"`
	ContributingVenues int     `json:"contributing_venues"`

	EVPercent          float64   `json:"ev_percent"`
	EdgePercent        float64   `json:"edge_percent"`
	PositiveVenueCount int       `json:"positive_venue_count"`
	Best               bool      `json:"best"`
	FoundAt            time.Time `json:"found_at"`
}

// LiveCycle é o conjunto "live" completo de um ciclo, publicado no Pub/Sub
// do Redis para broadcast via WebSocket. Substitui integralmente o ciclo
// anterior na visão do consumidor.
type LiveCycle struct {
	CycleID       string             `json:"cycle_id"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
	Opportunities []OpportunityFound `json:"opportunities"`
}
