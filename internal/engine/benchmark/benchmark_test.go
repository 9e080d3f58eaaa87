package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-ev-scanner/internal/engine/devig"
	"github.com/radieske/sports-ev-scanner/internal/engine/market"
)

func quote(venue market.Venue, selection string, price float64, point *float64) market.Quote {
	return market.Quote{
		Key: market.MatchKey{
			EventID:   "g1",
			Market:    market.MarketMoneyline,
			Selection: selection,
			Point:     point,
		},
		Venue:      venue,
		Price:      price,
		ObservedAt: time.Now(),
	}
}

func TestSelectPrefersSharp(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}

	// Pinnacle cota 1.818; cinco recreativas cotam valores dispersos que
	// seriam consenso suficiente, mas a sharp vence.
	family := []market.Quote{
		quote(market.VenuePinnacle, "Home", 1.818, nil),
		quote(market.VenueFanDuel, "Home", 2.30, nil),
		quote(market.VenueDraftKings, "Home", 1.70, nil),
		quote(market.VenueBetMGM, "Home", 1.95, nil),
		quote(market.VenueBetway, "Home", 2.10, nil),
		quote(market.VenueBovada, "Home", 1.85, nil),
	}

	b := Select(key, family, market.VenuePinnacle, 3, devig.NewCache())
	require.NotNil(t, b)
	assert.Equal(t, SourceSharp, b.Source)
	assert.Equal(t, market.VenuePinnacle, b.SourceVenue)
	assert.Equal(t, 1, b.ContributingVenues)
	assert.InDelta(t, 0.55, b.FairProbability, 1e-3)
	assert.InDelta(t, 1.818, b.ReferencePrice, 1e-2)
}

func TestSelectSharpDevigsTwoSidedMarket(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}

	// Pinnacle cota os dois lados a -110: justas 0.5/0.5 após o devig
	family := []market.Quote{
		quote(market.VenuePinnacle, "Home", 1.909090909, nil),
		quote(market.VenuePinnacle, "Away", 1.909090909, nil),
	}

	b := Select(key, family, market.VenuePinnacle, 3, devig.NewCache())
	require.NotNil(t, b)
	assert.Equal(t, SourceSharp, b.Source)
	assert.InDelta(t, 0.5, b.FairProbability, 1e-9)
	assert.InDelta(t, 2.0, b.ReferencePrice, 1e-9)
}

func TestSelectConsensusMedian(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}

	// Sem sharp; três casas cotam 2.00/2.05/1.95: justas 0.500/0.488/0.513,
	// mediana 0.500.
	family := []market.Quote{
		quote(market.VenueFanDuel, "Home", 2.00, nil),
		quote(market.VenueDraftKings, "Home", 2.05, nil),
		quote(market.VenueBetMGM, "Home", 1.95, nil),
	}

	b := Select(key, family, market.VenuePinnacle, 3, devig.NewCache())
	require.NotNil(t, b)
	assert.Equal(t, SourceConsensus, b.Source)
	assert.Equal(t, market.Venue(""), b.SourceVenue)
	assert.Equal(t, 3, b.ContributingVenues)
	assert.InDelta(t, 0.500, b.FairProbability, 1e-6)
	assert.InDelta(t, 2.0, b.ReferencePrice, 1e-6)
}

func TestSelectConsensusBelowMinimumReturnsNil(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}

	family := []market.Quote{
		quote(market.VenueFanDuel, "Home", 2.00, nil),
		quote(market.VenueDraftKings, "Home", 2.05, nil),
	}

	assert.Nil(t, Select(key, family, market.VenuePinnacle, 3, devig.NewCache()))
}

func TestSelectNeverMergesDifferentPoints(t *testing.T) {
	p205, p210 := 20.5, 21.0
	key := market.MatchKey{EventID: "g1", Market: market.MarketTotals, Selection: "Over", Point: &p205}

	mk := func(venue market.Venue, price float64, point *float64) market.Quote {
		q := quote(venue, "Over", price, point)
		q.Key.Market = market.MarketTotals
		return q
	}

	// Só duas casas cotam a linha 20.5; a terceira cota 21.0 e não pode
	// completar o consenso.
	family := []market.Quote{
		mk(market.VenueFanDuel, 1.90, &p205),
		mk(market.VenueDraftKings, 1.92, &p205),
		mk(market.VenueBetMGM, 1.88, &p210),
	}

	assert.Nil(t, Select(key, family, market.VenuePinnacle, 3, devig.NewCache()))
}

func TestSelectSharpRequiresExactKey(t *testing.T) {
	p205, p210 := 20.5, 21.0
	key := market.MatchKey{EventID: "g1", Market: market.MarketTotals, Selection: "Over", Point: &p205}

	// Pinnacle só cotou a linha 21.0; não serve de sharp para a 20.5
	q := quote(market.VenuePinnacle, "Over", 1.91, &p210)
	q.Key.Market = market.MarketTotals

	assert.Nil(t, Select(key, []market.Quote{q}, market.VenuePinnacle, 3, devig.NewCache()))
}

func TestSelectUsesLatestQuotePerVenue(t *testing.T) {
	key := market.MatchKey{EventID: "g1", Market: market.MarketMoneyline, Selection: "Home"}

	old := quote(market.VenuePinnacle, "Home", 2.50, nil)
	old.ObservedAt = time.Now().Add(-time.Hour)
	fresh := quote(market.VenuePinnacle, "Home", 1.818, nil)

	b := Select(key, []market.Quote{old, fresh}, market.VenuePinnacle, 3, devig.NewCache())
	require.NotNil(t, b)
	assert.InDelta(t, 0.55, b.FairProbability, 1e-3)
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 0.5, median([]float64{0.488, 0.5, 0.513}), 1e-9)
	assert.InDelta(t, 0.45, median([]float64{0.4, 0.5}), 1e-9)
	assert.InDelta(t, 0.3, median([]float64{0.3}), 1e-9)
}
