package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-ev-scanner/internal/engine/market"
	"github.com/radieske/sports-ev-scanner/internal/engine/odds"
	"github.com/radieske/sports-ev-scanner/internal/engine/scan"
)

func TestBatchShape(t *testing.T) {
	gen := New("basketball_nba", "pinnacle", []string{"fanduel", "draftkings"})
	batch := gen.Batch("quote-simulator")

	require.NotEmpty(t, batch.BatchID)
	assert.Equal(t, "basketball_nba", batch.Sport)
	assert.Equal(t, "quote-simulator", batch.Source)
	require.NotEmpty(t, batch.Rows)

	venues := make(map[string]bool)
	for _, row := range batch.Rows {
		venues[row.Venue] = true
		assert.Equal(t, "decimal", row.PriceFormat)
		assert.NotEmpty(t, row.EventID)
		assert.NotEmpty(t, row.Market)
	}
	assert.True(t, venues["pinnacle"])
	assert.True(t, venues["fanduel"])
	assert.True(t, venues["draftkings"])
}

func TestBatchQuotesBothSides(t *testing.T) {
	gen := New("basketball_nba", "pinnacle", []string{"fanduel"})
	batch := gen.Batch("quote-simulator")

	sides := make(map[string]map[string]bool) // eventID|market -> seleções
	for _, row := range batch.Rows {
		if row.Venue != "pinnacle" {
			continue
		}
		k := row.EventID + "|" + row.Market
		if sides[k] == nil {
			sides[k] = make(map[string]bool)
		}
		sides[k][row.Selection] = true
	}
	for k, sels := range sides {
		assert.Len(t, sels, 2, "family %s", k)
	}
}

func TestBatchIDsUnique(t *testing.T) {
	gen := New("basketball_nba", "pinnacle", []string{"fanduel"})
	a := gen.Batch("quote-simulator")
	b := gen.Batch("quote-simulator")
	assert.NotEqual(t, a.BatchID, b.BatchID)
}

// Todas as casas padrão precisam pertencer ao enum fechado; uma key fora
// dele faria o scan descartar cada linha daquela casa na validação.
func TestDefaultVenuesAreKnown(t *testing.T) {
	for _, v := range DefaultRecreationalVenues {
		_, err := market.ParseVenue(v)
		assert.NoError(t, err, "venue %s", v)
	}
}

// Nenhuma linha bem formada do simulador pode ser descartada pela
// validação do scan; só a linha malformada proposital cai fora.
func TestGeneratedRowsSurviveScanValidation(t *testing.T) {
	gen := New("basketball_nba", "pinnacle", DefaultRecreationalVenues)

	for i := 0; i < 50; i++ {
		batch := gen.Batch("quote-simulator")

		var raw []scan.RawQuote
		for _, row := range batch.Rows {
			raw = append(raw, scan.RawQuote{
				EventID:    row.EventID,
				Market:     row.Market,
				Selection:  row.Selection,
				Point:      row.Point,
				PlayerName: row.PlayerName,
				Venue:      row.Venue,
				Price:      row.Price,
				Format:     odds.Format(row.PriceFormat),
				ObservedAt: row.ObservedAt,
			})
		}

		res, err := scan.NewScanner().Run(context.Background(), raw, scan.Config{
			SharpVenue:         market.VenuePinnacle,
			MinConsensusVenues: 3,
			MinEVPercent:       1.0,
		})
		require.NoError(t, err)

		for _, d := range res.Dropped {
			assert.Equal(t, "unknown_book", d.Venue, "dropped: %+v", d)
		}
	}
}

func TestValidPricesOutsideMalformedRow(t *testing.T) {
	gen := New("basketball_nba", "pinnacle", []string{"fanduel", "draftkings"})
	for i := 0; i < 50; i++ {
		batch := gen.Batch("quote-simulator")
		for _, row := range batch.Rows {
			if row.Venue == "unknown_book" {
				continue // linha malformada proposital
			}
			assert.Greater(t, row.Price, 1.0)
		}
	}
}
