package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-ev-scanner/internal/engine/market"
	"github.com/radieske/sports-ev-scanner/internal/engine/odds"
)

func rawQuote(venue, selection string, price float64) RawQuote {
	return RawQuote{
		EventID:    "g1",
		Market:     "h2h",
		Selection:  selection,
		Venue:      venue,
		Price:      price,
		Format:     odds.FormatDecimal,
		ObservedAt: time.Now().UTC(),
	}
}

// Batch com sharp a -110 nos dois lados (justa 0.5) e duas recreativas
// pagando acima do preço justo 2.0 no lado Home.
func evBatch() []RawQuote {
	return []RawQuote{
		rawQuote("pinnacle", "Home", 1.909090909),
		rawQuote("pinnacle", "Away", 1.909090909),
		rawQuote("fanduel", "Home", 2.20),   // EV +10%
		rawQuote("fanduel", "Away", 1.80),   // EV -10%
		rawQuote("draftkings", "Home", 2.10), // EV +5%
	}
}

func TestRunFindsOpportunities(t *testing.T) {
	s := NewScanner()
	res, err := s.Run(context.Background(), evBatch(), DefaultConfig())
	require.NoError(t, err)

	require.Len(t, res.Opportunities, 2)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, 5, res.QuotesSeen)
	assert.Equal(t, 2, res.KeysScanned) // Home e Away

	byVenue := make(map[market.Venue]Opportunity)
	for _, o := range res.Opportunities {
		byVenue[o.Venue] = o
	}

	fd := byVenue[market.VenueFanDuel]
	assert.InDelta(t, 10.0, fd.EVPercent, 0.01)
	assert.True(t, fd.Best)
	assert.Equal(t, 2, fd.PositiveVenueCount) // fanduel e draftkings

	dk := byVenue[market.VenueDraftKings]
	assert.InDelta(t, 5.0, dk.EVPercent, 0.01)
	assert.False(t, dk.Best)
}

func TestRunStampsSingleCycleID(t *testing.T) {
	s := NewScanner()
	res, err := s.Run(context.Background(), evBatch(), DefaultConfig())
	require.NoError(t, err)

	require.NotEmpty(t, res.CycleID)
	for _, o := range res.Opportunities {
		assert.Equal(t, res.CycleID, o.CycleID)
		assert.Equal(t, res.FinishedAt, o.FoundAt)
	}

	// Ciclo seguinte recebe identidade nova
	res2, err := s.Run(context.Background(), evBatch(), DefaultConfig())
	require.NoError(t, err)
	assert.NotEqual(t, res.CycleID, res2.CycleID)
}

func TestRunDropsMalformedWithoutAborting(t *testing.T) {
	batch := append(evBatch(),
		RawQuote{EventID: "g1", Market: "h2h", Selection: "Home", Venue: "sketchy_book", Price: 2.0, Format: odds.FormatDecimal},
		RawQuote{EventID: "g1", Market: "quarter_winner", Selection: "Home", Venue: "fanduel", Price: 2.0, Format: odds.FormatDecimal},
		RawQuote{EventID: "g1", Market: "h2h", Selection: "Home", Venue: "fanduel", Price: 0.95, Format: odds.FormatDecimal},
		RawQuote{EventID: "g1", Market: "h2h", Selection: "", Venue: "fanduel", Price: 2.0, Format: odds.FormatDecimal},
	)

	s := NewScanner()
	res, err := s.Run(context.Background(), batch, DefaultConfig())
	require.NoError(t, err)

	// As quatro inválidas saem com diagnóstico; as válidas seguem intactas
	require.Len(t, res.Dropped, 4)
	assert.Len(t, res.Opportunities, 2)

	reasons := make([]string, 0, len(res.Dropped))
	for _, d := range res.Dropped {
		assert.NotEmpty(t, d.Reason)
		reasons = append(reasons, d.Reason)
	}
	assert.Contains(t, reasons[0], "unknown venue")
}

func TestRunRejectsConcurrentCycle(t *testing.T) {
	s := NewScanner()

	// Simula ciclo em andamento segurando o lock do scanner
	require.True(t, s.mu.TryLock())
	defer s.mu.Unlock()

	_, err := s.Run(context.Background(), evBatch(), DefaultConfig())
	assert.ErrorIs(t, err, ErrScanInProgress)
}

func TestRunNoBenchmarkCountsKey(t *testing.T) {
	// Sem sharp e só duas casas: consenso de 3 não fecha, nada é sinalizado
	batch := []RawQuote{
		rawQuote("fanduel", "Home", 2.0),
		rawQuote("draftkings", "Home", 2.1),
	}

	s := NewScanner()
	res, err := s.Run(context.Background(), batch, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, res.Opportunities)
	assert.Equal(t, 1, res.NoBenchmark)
}

func TestResultLiveFiltersBest(t *testing.T) {
	s := NewScanner()
	res, err := s.Run(context.Background(), evBatch(), DefaultConfig())
	require.NoError(t, err)

	live := res.Live()
	require.Len(t, live, 1)
	assert.Equal(t, market.VenueFanDuel, live[0].Venue)
	assert.True(t, live[0].Best)
}

func TestRunAmericanInputNormalized(t *testing.T) {
	batch := []RawQuote{
		{EventID: "g1", Market: "h2h", Selection: "Home", Venue: "pinnacle", Price: -110, Format: odds.FormatAmerican, ObservedAt: time.Now()},
		{EventID: "g1", Market: "h2h", Selection: "Away", Venue: "pinnacle", Price: -110, Format: odds.FormatAmerican, ObservedAt: time.Now()},
		{EventID: "g1", Market: "h2h", Selection: "Home", Venue: "fanduel", Price: 120, Format: odds.FormatAmerican, ObservedAt: time.Now()},
	}

	s := NewScanner()
	res, err := s.Run(context.Background(), batch, DefaultConfig())
	require.NoError(t, err)

	// fanduel +120 = 2.20 decimal contra justa 0.5: EV +10%
	require.Len(t, res.Opportunities, 1)
	assert.InDelta(t, 10.0, res.Opportunities[0].EVPercent, 0.01)
	assert.InDelta(t, 2.20, res.Opportunities[0].Price, 1e-9)
}
