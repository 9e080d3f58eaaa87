package events

import "time"

// QuoteRow é uma cotação bruta de uma casa para uma proposta apostável,
// como chega do coletor. O preço vem tagueado com a notação de origem
// ("decimal" ou "american") para normalização no scan.
type QuoteRow struct {
	EventID     string   `json:"event_id"`
	Market      string   `json:"market"`
	Selection   string   `json:"selection"`
	Point       *float64 `json:"point,omitempty"`
	PlayerName  string   `json:"player_name,omitempty"`
	Venue       string   `json:"venue"`
	Price       float64  `json:"price"`
	PriceFormat string   `json:"price_format"`
	ObservedAt  time.Time `json:"observed_at"`
}

// QuoteBatch é o snapshot publicado no tópico "quote_batches": todas as
// cotações correntes de todos os eventos acompanhados em um poll.
// Um batch gera exatamente um ciclo de scan.
type QuoteBatch struct {
	BatchID    string     `json:"batch_id"`
	Sport      string     `json:"sport"`
	Rows       []QuoteRow `json:"rows"`
	Source     string     `json:"source"` // "odds-ingest-service" | "quote-simulator"
	ProducedAt time.Time  `json:"produced_at"`
}
