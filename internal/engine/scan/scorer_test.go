package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-ev-scanner/internal/engine/benchmark"
	"github.com/radieske/sports-ev-scanner/internal/engine/market"
)

func TestEVPercentLiteralExample(t *testing.T) {
	// fair 0.55 a preço 2.10: (0.55*1.10 - 0.45) * 100 = 15.5
	assert.InDelta(t, 15.5, EVPercent(2.10, 0.55), 0.01)
}

func TestEVPercentFairPriceIsZero(t *testing.T) {
	// No preço justo exato o EV é zero por construção
	assert.InDelta(t, 0.0, EVPercent(2.0, 0.5), 1e-9)
}

func TestEdgePercent(t *testing.T) {
	assert.InDelta(t, 10.0, EdgePercent(2.2, 2.0), 1e-9)
	assert.InDelta(t, -5.0, EdgePercent(1.9, 2.0), 1e-9)
	assert.Equal(t, 0.0, EdgePercent(2.0, 0))
}

func benchFor(key market.MatchKey, fair float64, source market.Venue) *benchmark.Benchmark {
	b := &benchmark.Benchmark{
		Key:                key,
		Source:             benchmark.SourceSharp,
		FairProbability:    fair,
		ReferencePrice:     1 / fair,
		ContributingVenues: 1,
		SourceVenue:        source,
	}
	if source == "" {
		b.Source = benchmark.SourceConsensus
	}
	return b
}

func TestScoreFlagsAboveThreshold(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}
	q := market.Quote{Key: key, Venue: market.VenueFanDuel, Price: 2.10}

	opp := Score(q, benchFor(key, 0.55, market.VenuePinnacle), DefaultConfig())
	require.NotNil(t, opp)
	assert.InDelta(t, 15.5, opp.EVPercent, 0.01)
	assert.Equal(t, market.VenueFanDuel, opp.Venue)
}

func TestScoreNilBelowThreshold(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}
	cfg := Config{SharpVenue: market.VenuePinnacle, MinConsensusVenues: 3, MinEVPercent: 1.0}

	// EV exatamente 0: abaixo do mínimo de 1%
	q := market.Quote{Key: key, Venue: market.VenueFanDuel, Price: 2.0}
	assert.Nil(t, Score(q, benchFor(key, 0.5, market.VenuePinnacle), cfg))

	// EV exatamente no limiar é sinalizado (nil somente quando ev < mínimo)
	cfg.MinEVPercent = 0
	opp := Score(q, benchFor(key, 0.5, market.VenuePinnacle), cfg)
	require.NotNil(t, opp)
	assert.InDelta(t, 0.0, opp.EVPercent, 1e-9)
}

func TestScoreNilAgainstBenchmarkSource(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}

	// A própria sharp nunca é oportunidade contra si mesma, mesmo com EV alto
	q := market.Quote{Key: key, Venue: market.VenuePinnacle, Price: 3.0}
	assert.Nil(t, Score(q, benchFor(key, 0.55, market.VenuePinnacle), DefaultConfig()))
}

func TestScoreNilWithoutBenchmark(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}
	q := market.Quote{Key: key, Venue: market.VenueFanDuel, Price: 2.10}
	assert.Nil(t, Score(q, nil, DefaultConfig()))
}
