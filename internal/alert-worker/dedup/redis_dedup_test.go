package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/sports-ev-scanner/pkg/contracts/events"
)

func TestKeyDistinguishesPropositions(t *testing.T) {
	p205, p210 := 20.5, 21.0
	base := events.OpportunityFound{
		EventID: "g1", Market: "totals", Selection: "Over",
		Point: &p205, Venue: "fanduel",
	}

	shifted := base
	shifted.Point = &p210
	assert.NotEqual(t, key(base), key(shifted))

	otherVenue := base
	otherVenue.Venue = "draftkings"
	assert.NotEqual(t, key(base), key(otherVenue))

	same := base
	assert.Equal(t, key(base), key(same))
}

func TestKeyIncludesPlayer(t *testing.T) {
	p := 25.5
	tatum := events.OpportunityFound{
		EventID: "g1", Market: "player_points", Selection: "Over",
		Point: &p, PlayerName: "Jayson Tatum", Venue: "fanduel",
	}
	brown := tatum
	brown.PlayerName = "Jaylen Brown"
	assert.NotEqual(t, key(tatum), key(brown))
}
