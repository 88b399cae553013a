package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointSlots_SetClearsDuplicates(t *testing.T) {
	var s PointSlots
	require.NoError(t, s.Set(0, "p01"))
	require.NoError(t, s.Set(1, "p02"))
	require.NoError(t, s.Set(2, "p03"))

	// Mover p01 al slot 3 lo libera del principal.
	require.NoError(t, s.Set(3, "p01"))

	assert.Equal(t, [4]string{"", "p02", "p03", "p01"}, s.All())
	assert.Equal(t, "", s.Primary())
	assert.Equal(t, []string{"p02", "p03", "p01"}, s.Sub())
}

func TestPointSlots_SetOutOfRange(t *testing.T) {
	var s PointSlots
	assert.ErrorIs(t, s.Set(4, "p01"), ErrInvalidInput)
	assert.ErrorIs(t, s.Set(-1, "p01"), ErrInvalidInput)
}

func TestPointSlots_Clear(t *testing.T) {
	s := SlotsOf("p01", "p02")
	require.NoError(t, s.Clear(1))
	assert.Empty(t, s.Sub())
	assert.True(t, s.Contains("p01"))
	assert.False(t, s.Contains("p02"))
	assert.False(t, s.Contains(""))
}

func TestNewPointSlots_Validation(t *testing.T) {
	_, err := NewPointSlots("", nil)
	assert.ErrorIs(t, err, ErrPrimaryPointRequired)

	_, err = NewPointSlots("p01", []string{"p02", "p03", "p04", "p05"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewPointSlots("p01", []string{"p02", "p01"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, err := NewPointSlots("p01", []string{"", "p03"})
	require.NoError(t, err)
	assert.Equal(t, "p01", s.Primary())
	assert.Equal(t, []string{"p03"}, s.Sub())
}

func TestSlotsOf_DedupKeepsLastSlot(t *testing.T) {
	s := SlotsOf("p01", "p02", "p01", "p09", "p10")
	assert.Equal(t, [4]string{"", "p02", "p01", "p09"}, s.All())
}
