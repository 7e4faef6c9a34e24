package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func allDaySlots(t *testing.T) []Slot {
	t.Helper()
	slots, err := GenerateSlots("09:00", "17:00", "13:00", "14:00")
	require.NoError(t, err)
	return slots
}

func TestAvailableSlotsWeeklyHolidayBlocksWholeDate(t *testing.T) {
	// 2024-11-17 is a Sunday.
	in := AvailabilityInput{
		Date:          testDate(2024, time.November, 17),
		CarID:         "car-5",
		AllSlots:      allDaySlots(t),
		WeeklyHoliday: "SUNDAY",
	}
	assert.Empty(t, AvailableSlots(in))
}

func TestAvailableSlotsOccupancyBlocksOnlyThatCar(t *testing.T) {
	date := testDate(2024, time.November, 20)
	session := models.BookingSession{
		ID:          "sess-1",
		CarID:       "car-5",
		SessionDate: date,
		Slot:        "10:00-11:00",
		Status:      models.SessionStatusConfirmed,
	}

	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: allDaySlots(t), Sessions: []models.BookingSession{session}}
	assert.NotContains(t, AvailableSlots(in), Slot("10:00-11:00"))

	in.CarID = "car-6"
	assert.Contains(t, AvailableSlots(in), Slot("10:00-11:00"))
}

func TestAvailableSlotsCancelledSessionStillBlocks(t *testing.T) {
	date := testDate(2024, time.November, 20)
	session := models.BookingSession{
		CarID:       "car-5",
		SessionDate: date,
		Slot:        "10:00-11:00",
		Status:      models.SessionStatusCancelled,
	}

	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: allDaySlots(t), Sessions: []models.BookingSession{session}}
	assert.NotContains(t, AvailableSlots(in), Slot("10:00-11:00"))
}

func TestAvailableSlotsCompletedSessionDoesNotBlock(t *testing.T) {
	date := testDate(2024, time.November, 20)
	session := models.BookingSession{
		CarID:       "car-5",
		SessionDate: date,
		Slot:        "10:00-11:00",
		Status:      models.SessionStatusCompleted,
	}

	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: allDaySlots(t), Sessions: []models.BookingSession{session}}
	assert.Contains(t, AvailableSlots(in), Slot("10:00-11:00"))
}

func TestAvailableSlotsWholeDayHoliday(t *testing.T) {
	date := testDate(2024, time.December, 2)
	holiday := models.HolidayDeclaration{
		DeclarationType: models.HolidayAllCarsMultipleDates,
		StartDate:       testDate(2024, time.December, 1),
		EndDate:         testDate(2024, time.December, 3),
	}

	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: allDaySlots(t), Holidays: []models.HolidayDeclaration{holiday}}
	assert.Empty(t, AvailableSlots(in))

	in.Date = testDate(2024, time.December, 4)
	assert.Len(t, AvailableSlots(in), 7)
}

func TestAvailableSlotsSlotScopedHolidayForOneCar(t *testing.T) {
	date := testDate(2024, time.December, 1)
	carID := "car-5"
	holiday := models.HolidayDeclaration{
		DeclarationType: models.HolidayOneCarParticularSlots,
		StartDate:       date,
		EndDate:         date,
		CarID:           &carID,
		Slots:           []string{"09:00-10:00"},
	}

	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: allDaySlots(t), Holidays: []models.HolidayDeclaration{holiday}}
	got := AvailableSlots(in)
	assert.NotContains(t, got, Slot("09:00-10:00"))
	assert.Len(t, got, 6)

	in.CarID = "car-6"
	assert.Len(t, AvailableSlots(in), 7)
}

func TestAvailableSlotsPastTimeEliminationOnlyToday(t *testing.T) {
	date := testDate(2024, time.November, 20)
	now := time.Date(2024, time.November, 20, 11, 0, 0, 0, time.UTC)

	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: allDaySlots(t), Now: &now}
	got := AvailableSlots(in)
	// 11:00 start is not strictly after 11:00, so the first offered slot
	// is 12:00-13:00.
	assert.Equal(t, []Slot{"12:00-13:00", "14:00-15:00", "15:00-16:00", "16:00-17:00"}, got)

	in.Date = testDate(2024, time.November, 21)
	assert.Len(t, AvailableSlots(in), 7)
}

func TestAvailableSlotsIsOrderPreservingSubsequenceAndIdempotent(t *testing.T) {
	date := testDate(2024, time.November, 20)
	all := allDaySlots(t)
	session := models.BookingSession{CarID: "car-5", SessionDate: date, Slot: "11:00-12:00", Status: models.SessionStatusPending}
	in := AvailabilityInput{Date: date, CarID: "car-5", AllSlots: all, Sessions: []models.BookingSession{session}}

	first := AvailableSlots(in)
	second := AvailableSlots(in)
	assert.Equal(t, first, second)

	idx := 0
	for _, slot := range first {
		for idx < len(all) && all[idx] != slot {
			idx++
		}
		require.Less(t, idx, len(all), "result slot %s out of input order", slot)
	}
}

func TestBlockingReasonsCollectsEveryViolation(t *testing.T) {
	date := testDate(2024, time.November, 17) // Sunday
	session := models.BookingSession{ID: "sess-9", CarID: "car-5", SessionDate: date, Slot: "10:00-11:00", Status: models.SessionStatusPending}
	holiday := models.HolidayDeclaration{
		DeclarationType: models.HolidayAllCarsMultipleDates,
		StartDate:       date,
		EndDate:         date,
	}

	in := AvailabilityInput{
		Date:          date,
		CarID:         "car-5",
		Sessions:      []models.BookingSession{session},
		Holidays:      []models.HolidayDeclaration{holiday},
		WeeklyHoliday: "sunday",
	}
	reasons := BlockingReasons(in, "10:00-11:00")
	require.Len(t, reasons, 3)
}
