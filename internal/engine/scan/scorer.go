package scan

import (
	"time"

	"github.com/radieske/sports-ev-scanner/internal/engine/benchmark"
	"github.com/radieske/sports-ev-scanner/internal/engine/market"
)

// Config agrupa os parâmetros de política do scan. É sempre passada
// explicitamente aos pontos de entrada: o engine não lê estado global,
// então cada execução é determinística para uma dada configuração.
type Config struct {
	SharpVenue         market.Venue // casa de referência; vazio desabilita o caminho sharp
	MinConsensusVenues int          // mínimo de casas distintas para consenso
	MinEVPercent       float64      // EV% mínimo para sinalizar oportunidade
}

// DefaultConfig retorna os valores de política padrão do projeto.
// São defaults de conveniência; produção carrega esses valores do ambiente.
func DefaultConfig() Config {
	return Config{
		SharpVenue:         market.VenuePinnacle,
		MinConsensusVenues: 3,
		MinEVPercent:       1.0,
	}
}

// Opportunity é uma cotação que paga acima do valor justo resolvido.
// Carrega o benchmark completo para que o consumidor exiba lado a lado o
// preço da casa e a linha de referência, além de PositiveVenueCount para
// telas do tipo "N casas concordam".
type Opportunity struct {
	CycleID            string              `json:"cycle_id"`
	Key                market.MatchKey     `json:"key"`
	Venue              market.Venue        `json:"venue"`
	Price              float64             `json:"price"`
	Benchmark          benchmark.Benchmark `json:"benchmark"`
	EVPercent          float64             `json:"ev_percent"`
	EdgePercent        float64             `json:"edge_percent"`
	PositiveVenueCount int                 `json:"positive_venue_count"`
	Best               bool                `json:"best"`
	FoundAt            time.Time           `json:"found_at"`
}

// EVPercent calcula o retorno esperado por unidade apostada, em percentual,
// para uma aposta binária ganha/perde com perda total do stake na derrota:
// (fair*(price-1) - (1-fair)) * 100.
func EVPercent(price, fairProbability float64) float64 {
	return (fairProbability*(price-1) - (1 - fairProbability)) * 100
}

// EdgePercent compara preços diretamente, sem modelo de perda de stake:
// ((price/reference) - 1) * 100. Métrica secundária de transparência.
func EdgePercent(price, referencePrice float64) float64 {
	if referencePrice <= 0 {
		return 0
	}
	return ((price / referencePrice) - 1) * 100
}

// Score avalia uma cotação candidata contra o benchmark resolvido.
// Retorna nil (sem erro) quando o EV fica abaixo do mínimo configurado ou
// quando a casa candidata é a própria fonte do benchmark: uma casa não
// pode ser oportunidade contra si mesma.
func Score(q market.Quote, b *benchmark.Benchmark, cfg Config) *Opportunity {
	if b == nil {
		return nil
	}
	if b.SourceVenue != "" && q.Venue == b.SourceVenue {
		return nil
	}

	ev := EVPercent(q.Price, b.FairProbability)
	if ev < cfg.MinEVPercent {
		return nil
	}

	return &Opportunity{
		Key:         q.Key,
		Venue:       q.Venue,
		Price:       q.Price,
		Benchmark:   *b,
		EVPercent:   ev,
		EdgePercent: EdgePercent(q.Price, b.ReferencePrice),
	}
}
