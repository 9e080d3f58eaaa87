package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-ev-scanner/internal/ev-api/dto"
	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

func ptr(v float64) *float64 { return &v }

func cycleWith(opps ...events.OpportunityFound) events.LiveCycle {
	return events.LiveCycle{CycleID: "cycle-1", Opportunities: opps}
}

func TestFindBenchmarkMatchesExactProposition(t *testing.T) {
	cycle := cycleWith(
		events.OpportunityFound{
			EventID: "g1", Market: "totals", Selection: "Over", Point: ptr(215.5),
			Venue: "fanduel", FairProbability: 0.52, BenchmarkPrice: 1.923,
		},
		events.OpportunityFound{
			EventID: "g1", Market: "totals", Selection: "Over", Point: ptr(216.5),
			Venue: "draftkings", FairProbability: 0.49, BenchmarkPrice: 2.04,
		},
	)

	req := dto.PlaceBetRequest{
		GameID: "g1", Venue: "betmgm", Market: "totals",
		Selection: "Over", Point: ptr(215.5), Price: 2.0, Stake: 50,
	}

	got, ok := findBenchmark(cycle, req)
	require.True(t, ok)
	assert.InDelta(t, 0.52, got.FairProbability, 1e-9)
}

func TestFindBenchmarkNeverMergesPoints(t *testing.T) {
	cycle := cycleWith(events.OpportunityFound{
		EventID: "g1", Market: "totals", Selection: "Over", Point: ptr(215.5),
	})

	// Linha 216.0 não existe no ciclo: sem benchmark
	req := dto.PlaceBetRequest{
		GameID: "g1", Venue: "betmgm", Market: "totals",
		Selection: "Over", Point: ptr(216.0), Price: 2.0, Stake: 50,
	}
	_, ok := findBenchmark(cycle, req)
	assert.False(t, ok)
}

func TestFindBenchmarkDistinguishesPlayers(t *testing.T) {
	cycle := cycleWith(events.OpportunityFound{
		EventID: "g1", Market: "player_points", Selection: "Over",
		Point: ptr(25.5), PlayerName: "Jayson Tatum", FairProbability: 0.51,
	})

	req := dto.PlaceBetRequest{
		GameID: "g1", Venue: "fanduel", Market: "player_points",
		Selection: "Over", Point: ptr(25.5), PlayerName: "Jaylen Brown",
		Price: 2.0, Stake: 25,
	}
	_, ok := findBenchmark(cycle, req)
	assert.False(t, ok)
}

func TestSamePoint(t *testing.T) {
	assert.True(t, samePoint(nil, nil))
	assert.True(t, samePoint(ptr(20.5), ptr(20.5)))
	assert.False(t, samePoint(ptr(20.5), ptr(21.0)))
	assert.False(t, samePoint(ptr(20.5), nil))
	assert.False(t, samePoint(nil, ptr(20.5)))
}
