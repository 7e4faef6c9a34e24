package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeSessionDatesSkipsWeeklyHoliday(t *testing.T) {
	// 2024-11-01 is a Friday; Saturday 2024-11-02 is the off-day.
	dates, err := MaterializeSessionDates(testDate(2024, time.November, 1), 5, "SATURDAY")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		testDate(2024, time.November, 1),
		testDate(2024, time.November, 3),
		testDate(2024, time.November, 4),
		testDate(2024, time.November, 5),
		testDate(2024, time.November, 6),
	}, dates)
}

func TestMaterializeSessionDatesNoWeeklyHoliday(t *testing.T) {
	dates, err := MaterializeSessionDates(testDate(2024, time.November, 1), 3, "")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		testDate(2024, time.November, 1),
		testDate(2024, time.November, 2),
		testDate(2024, time.November, 3),
	}, dates)
}

func TestMaterializeSessionDatesCountAndMonotonicity(t *testing.T) {
	dates, err := MaterializeSessionDates(testDate(2024, time.July, 29), 12, "SUNDAY")
	require.NoError(t, err)
	require.Len(t, dates, 12)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
		assert.NotEqual(t, time.Sunday, dates[i].Weekday())
	}
}

func TestMaterializeSessionDatesDayOneIsStartDate(t *testing.T) {
	// Day 1 always lands on the requested start date; availability
	// filtering is the caller's concern.
	start := testDate(2024, time.November, 17) // Sunday
	dates, err := MaterializeSessionDates(start, 2, "SUNDAY")
	require.NoError(t, err)
	assert.Equal(t, start, dates[0])
	assert.Equal(t, testDate(2024, time.November, 18), dates[1])
}

func TestMaterializeSessionDatesRejectsNonPositiveDays(t *testing.T) {
	_, err := MaterializeSessionDates(testDate(2024, time.November, 1), 0, "")
	require.Error(t, err)

	_, err = MaterializeSessionDates(testDate(2024, time.November, 1), -3, "")
	require.Error(t, err)
}
