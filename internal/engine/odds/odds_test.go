package odds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDecimal(t *testing.T) {
	got, err := Normalize(1.909, FormatDecimal)
	require.NoError(t, err)
	assert.Equal(t, 1.909, got)
}

func TestNormalizeDecimalRejectsAtOrBelowOne(t *testing.T) {
	for _, v := range []float64{1.0, 0.95, 0, -2.5} {
		_, err := Normalize(v, FormatDecimal)
		assert.ErrorIs(t, err, ErrInvalidPrice, "price %v", v)
	}
}

func TestNormalizeAmerican(t *testing.T) {
	cases := []struct {
		american float64
		decimal  float64
	}{
		{-110, 1.909090909090909},
		{150, 2.5},
		{+100, 2.0},
		{-100, 2.0},
		{-250, 1.4},
	}
	for _, c := range cases {
		got, err := Normalize(c.american, FormatAmerican)
		require.NoError(t, err)
		assert.InDelta(t, c.decimal, got, 1e-9, "american %v", c.american)
	}
}

func TestNormalizeAmericanRejectsBelowHundred(t *testing.T) {
	for _, v := range []float64{99, -99, 0, 50} {
		_, err := Normalize(v, FormatAmerican)
		assert.ErrorIs(t, err, ErrInvalidPrice, "price %v", v)
	}
}

func TestNormalizeRejectsNonNumeric(t *testing.T) {
	_, err := Normalize(math.NaN(), FormatDecimal)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Normalize(math.Inf(1), FormatAmerican)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestNormalizeRejectsUnknownFormat(t *testing.T) {
	_, err := Normalize(2.0, Format("fractional"))
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestAmericanRoundTrip(t *testing.T) {
	for _, american := range []float64{-110, -250, 100, 150, 300} {
		dec, err := Normalize(american, FormatAmerican)
		require.NoError(t, err)
		assert.InDelta(t, american, ToAmerican(dec), 1e-9, "american %v", american)
	}
}

// Em decimal 2.0 as notações +100 e -100 coincidem; a volta é +100.
func TestAmericanEvenMoneyCanonicalForm(t *testing.T) {
	for _, american := range []float64{100, -100} {
		dec, err := Normalize(american, FormatAmerican)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, dec, 1e-9, "american %v", american)
	}
	assert.InDelta(t, 100, ToAmerican(2.0), 1e-9)
}

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.5, ImpliedProbability(2.0), 1e-9)
	assert.InDelta(t, 0.55, ImpliedProbability(1.818), 1e-3)
	assert.Equal(t, 0.0, ImpliedProbability(0))
}
