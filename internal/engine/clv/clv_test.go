package clv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePositive(t *testing.T) {
	// Entrada 2.10 contra fechamento 1.90: bateu a linha final em ~10.53%
	got, err := Compute(2.10, 1.90)
	require.NoError(t, err)
	assert.InDelta(t, 10.53, got, 0.01)
}

func TestComputeNegative(t *testing.T) {
	// Entrada 1.80 contra fechamento 1.90: perdeu da linha em ~-5.26%
	got, err := Compute(1.80, 1.90)
	require.NoError(t, err)
	assert.InDelta(t, -5.26, got, 0.01)
}

func TestComputeZeroAtSamePrice(t *testing.T) {
	got, err := Compute(1.90, 1.90)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestComputeMissingClosingPrice(t *testing.T) {
	_, err := Compute(2.10, 0)
	assert.ErrorIs(t, err, ErrMissingClosingPrice)

	_, err = Compute(2.10, 1.0)
	assert.ErrorIs(t, err, ErrMissingClosingPrice)
}
