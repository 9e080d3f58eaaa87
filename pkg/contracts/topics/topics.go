package topics

const (
	// Cotações
	QuoteBatches = "quote_batches"

	// Oportunidades
	Opportunities    = "ev_opportunities"
	OpportunitiesDLQ = "ev_opportunities_dlq"
)
