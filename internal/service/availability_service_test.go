package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

func testProfile() *models.SchoolProfile {
	lunchStart, lunchEnd := "13:00", "14:00"
	weekly := "SUNDAY"
	return &models.SchoolProfile{
		ID:             "school-1",
		Name:           "Test Driving School",
		DayStartTime:   "10:00",
		DayEndTime:     "18:00",
		LunchStartTime: &lunchStart,
		LunchEndTime:   &lunchEnd,
		WeeklyHoliday:  &weekly,
	}
}

func newAvailabilityFixture(cache *stubCache) (*AvailabilityService, *stubSessionRepo) {
	sessions := &stubSessionRepo{byCarDate: map[string][]models.BookingSession{}}
	holidays := &stubHolidayRepo{}
	school := &stubSchoolReader{profile: testProfile()}
	cars := &stubCarReader{cars: map[string]models.Car{
		"car-1": {ID: "car-1", RegistrationNo: "KA-01", Active: true},
	}}
	cfg := AvailabilityCacheConfig{Enabled: cache != nil, TTL: 2 * time.Minute}
	var c availabilityCache
	if cache != nil {
		c = cache
	}
	return NewAvailabilityService(sessions, holidays, school, cars, c, cfg, zap.NewNop()), sessions
}

func TestAvailabilityServiceSlotsForCar(t *testing.T) {
	svc, sessions := newAvailabilityFixture(nil)
	// Monday
	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	sessions.byCarDate["car-1|2025-11-03"] = []models.BookingSession{
		{ID: "sess-1", CarID: "car-1", SessionDate: date, Slot: "10:00-11:00", Status: models.SessionStatusConfirmed},
	}
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	day, cacheHit, err := svc.SlotsForCar(context.Background(), "car-1", date, now)
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, "2025-11-03", day.Date)
	assert.False(t, day.WeeklyHoliday)
	// 10-18 minus the 13:00 lunch leaves seven slots, one is booked.
	assert.Len(t, day.AllSlots, 7)
	assert.Len(t, day.AvailableSlots, 6)
	assert.NotContains(t, day.AvailableSlots, "10:00-11:00")
}

func TestAvailabilityServiceWeeklyHoliday(t *testing.T) {
	svc, _ := newAvailabilityFixture(nil)
	sunday := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	day, _, err := svc.SlotsForCar(context.Background(), "car-1", sunday, now)
	require.NoError(t, err)
	assert.True(t, day.WeeklyHoliday)
	assert.Empty(t, day.AvailableSlots)
}

func TestAvailabilityServiceUnknownCar(t *testing.T) {
	svc, _ := newAvailabilityFixture(nil)
	_, _, err := svc.SlotsForCar(context.Background(), "nope", time.Now(), time.Now())
	require.Error(t, err)
}

func TestAvailabilityServiceCachesComputedDay(t *testing.T) {
	cache := &stubCache{}
	svc, sessions := newAvailabilityFixture(cache)
	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	_, firstHit, err := svc.SlotsForCar(context.Background(), "car-1", date, now)
	require.NoError(t, err)
	assert.False(t, firstHit)
	_, secondHit, err := svc.SlotsForCar(context.Background(), "car-1", date, now)
	require.NoError(t, err)
	assert.True(t, secondHit)

	assert.Equal(t, 1, sessions.listCalls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, cache.hits)
}

func TestAvailabilityServiceClockAppliedAfterCache(t *testing.T) {
	cache := &stubCache{}
	svc, _ := newAvailabilityFixture(cache)
	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

	morning := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	early, _, err := svc.SlotsForCar(context.Background(), "car-1", date, morning)
	require.NoError(t, err)
	assert.Len(t, early.AvailableSlots, 7)

	// Same cached day viewed at 11:00 drops the slots already started.
	midMorning := time.Date(2025, 11, 3, 11, 0, 0, 0, time.UTC)
	later, _, err := svc.SlotsForCar(context.Background(), "car-1", date, midMorning)
	require.NoError(t, err)
	assert.Equal(t, "12:00-13:00", later.AvailableSlots[0])
}

func TestAvailabilityServiceGridForDate(t *testing.T) {
	svc, _ := newAvailabilityFixture(nil)
	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	grid, cacheHit, err := svc.GridForDate(context.Background(), date, now)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.False(t, cacheHit)
	assert.Equal(t, "car-1", grid[0].CarID)
}
