package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlotsFullDayWithLunch(t *testing.T) {
	slots, err := GenerateSlots("09:00", "17:00", "13:00", "14:00")
	require.NoError(t, err)
	assert.Equal(t, []Slot{
		"09:00-10:00",
		"10:00-11:00",
		"11:00-12:00",
		"12:00-13:00",
		"14:00-15:00",
		"15:00-16:00",
		"16:00-17:00",
	}, slots)
}

func TestGenerateSlotsNoLunch(t *testing.T) {
	slots, err := GenerateSlots("08:00", "12:00", "", "")
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, Slot("08:00-09:00"), slots[0])
	assert.Equal(t, Slot("11:00-12:00"), slots[3])
}

func TestGenerateSlotsDropsPartialTrailingSlot(t *testing.T) {
	slots, err := GenerateSlots("09:00", "12:30", "", "")
	require.NoError(t, err)
	assert.Equal(t, []Slot{"09:00-10:00", "10:00-11:00", "11:00-12:00"}, slots)
}

func TestGenerateSlotsOffsetLunchBlocksBothNeighbours(t *testing.T) {
	// Lunch 12:30-13:30 overlaps 12:00-13:00 (end inside) and
	// 13:00-14:00 (start inside).
	slots, err := GenerateSlots("11:00", "15:00", "12:30", "13:30")
	require.NoError(t, err)
	assert.Equal(t, []Slot{"11:00-12:00", "14:00-15:00"}, slots)
}

func TestGenerateSlotsSlotContainingLunch(t *testing.T) {
	slots, err := GenerateSlots("09:00", "11:00", "09:15", "09:45")
	require.NoError(t, err)
	assert.Equal(t, []Slot{"10:00-11:00"}, slots)
}

func TestGenerateSlotsEmptyWhenDayTooShort(t *testing.T) {
	slots, err := GenerateSlots("09:00", "09:30", "", "")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsRejectsMalformedTimes(t *testing.T) {
	_, err := GenerateSlots("9am", "17:00", "", "")
	require.Error(t, err)

	_, err = GenerateSlots("09:00", "25:00", "", "")
	require.Error(t, err)

	_, err = GenerateSlots("09:00", "17:00", "13:00", "")
	require.Error(t, err)

	_, err = GenerateSlots("09:00", "17:00", "14:00", "13:00")
	require.Error(t, err)
}

func TestSlotStartMinutes(t *testing.T) {
	start, err := Slot("14:30-15:30").StartMinutes()
	require.NoError(t, err)
	assert.Equal(t, 14*60+30, start)

	_, err = Slot("garbage").StartMinutes()
	require.Error(t, err)
}
