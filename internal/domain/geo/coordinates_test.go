package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Decimal(t *testing.T) {
	cases := []string{
		"31.904, 131.464",
		"31.904 131.464",
		"31.904/131.464",
		"31.904　131.464",
		"  31.904 ,  131.464  ",
	}
	for _, in := range cases {
		c, ok, err := Parse(in)
		require.NoError(t, err, in)
		require.True(t, ok, in)
		assert.InDelta(t, 31.904, c.Lat, 1e-9, in)
		assert.InDelta(t, 131.464, c.Lng, 1e-9, in)
	}
}

func TestParse_DMS(t *testing.T) {
	c, ok, err := Parse(`31°54'17.2"N 131°27'52.0"E`)
	require.NoError(t, err)
	require.True(t, ok)

	assert.InDelta(t, 31+54.0/60+17.2/3600, c.Lat, 1e-9)
	assert.InDelta(t, 131+27.0/60+52.0/3600, c.Lng, 1e-9)
}

func TestParse_DMSSouthWestNegate(t *testing.T) {
	c, ok, err := Parse(`33°51'35.9"s 151°12'40"w`)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Less(t, c.Lat, 0.0)
	assert.Less(t, c.Lng, 0.0)
	assert.InDelta(t, -(33 + 51.0/60 + 35.9/3600), c.Lat, 1e-9)
}

func TestParse_SingleDMSFallsThroughToDecimal(t *testing.T) {
	_, ok, err := Parse(`31°54'17.2"N`)
	assert.False(t, ok)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
}

func TestParse_EmptyIsNoCoordinates(t *testing.T) {
	for _, in := range []string{"", "   ", "　"} {
		_, ok, err := Parse(in)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, ok, err := Parse("not a coordinate")
	assert.False(t, ok)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "not a coordinate", pe.Input)
	assert.Contains(t, err.Error(), `31°54'17.2"N 131°27'52.0"E`)
	assert.Contains(t, err.Error(), "31.904, 131.464")
}

func TestParse_NonFiniteRejected(t *testing.T) {
	for _, in := range []string{"NaN, NaN", "Inf, 1", "Inf, -Inf", "35.1, +Inf", "nan 135.2"} {
		t.Run(in, func(t *testing.T) {
			_, ok, err := Parse(in)
			assert.False(t, ok)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParse_OutOfRangeAccepted(t *testing.T) {
	c, ok, err := Parse("200, -500")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Coordinates{Lat: 200, Lng: -500}, c)
}
