package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type bookingFixture struct {
	svc         *BookingService
	bookings    *stubBookingRepo
	sessions    *stubSessionRepo
	invalidator *stubInvalidator
}

func newBookingFixture() *bookingFixture {
	driverID := "drv-1"
	bookings := &stubBookingRepo{}
	sessions := &stubSessionRepo{byCarDate: map[string][]models.BookingSession{}}
	courses := &stubCourseReader{courses: map[string]models.Course{
		"course-1": {ID: "course-1", Title: "Beginner", Days: 3, Active: true},
	}}
	customers := &stubCustomerReader{customers: map[string]models.Customer{
		"cust-1": {ID: "cust-1", FullName: "Asha"},
	}}
	cars := &stubCarReader{cars: map[string]models.Car{
		"car-1": {ID: "car-1", RegistrationNo: "KA-01", DriverID: &driverID, Active: true},
	}}
	school := &stubSchoolReader{profile: testProfile()}
	holidays := &stubHolidayRepo{}
	invalidator := &stubInvalidator{}
	svc := NewBookingService(bookings, sessions, courses, customers, cars, school, holidays, invalidator, nil, zap.NewNop())
	return &bookingFixture{svc: svc, bookings: bookings, sessions: sessions, invalidator: invalidator}
}

func TestBookingServiceCreateMaterializesSessions(t *testing.T) {
	f := newBookingFixture()
	now := time.Date(2025, 10, 30, 9, 0, 0, 0, time.UTC)

	// Saturday start; Sunday is the weekly off-day so day 2 lands on Monday.
	detail, err := f.svc.Create(context.Background(), dto.CreateBookingRequest{
		CustomerID: "cust-1",
		CourseID:   "course-1",
		CarID:      "car-1",
		Slot:       "10:00-11:00",
		StartDate:  "2025-11-01",
	}, now)
	require.NoError(t, err)

	require.NotNil(t, f.bookings.created)
	assert.Equal(t, models.BookingStatusActive, detail.Booking.Status)
	assert.Equal(t, "drv-1", detail.Booking.DriverID)

	require.Len(t, detail.Sessions, 3)
	wantDates := []string{"2025-11-01", "2025-11-03", "2025-11-04"}
	for i, sess := range detail.Sessions {
		assert.Equal(t, i+1, sess.DayNumber)
		assert.Equal(t, wantDates[i], sess.SessionDate.Format("2006-01-02"))
		assert.Equal(t, "10:00-11:00", sess.Slot)
		assert.Equal(t, models.SessionStatusPending, sess.Status)
	}

	assert.Equal(t, []string{"car-1"}, f.invalidator.invalidatedCars)
}

func TestBookingServiceCreateRejectsOccupiedStartSlot(t *testing.T) {
	f := newBookingFixture()
	now := time.Date(2025, 10, 30, 9, 0, 0, 0, time.UTC)
	f.sessions.byCarDate["car-1|2025-11-01"] = []models.BookingSession{
		{ID: "sess-x", CarID: "car-1", SessionDate: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), Slot: "10:00-11:00", Status: models.SessionStatusCancelled},
	}

	_, err := f.svc.Create(context.Background(), dto.CreateBookingRequest{
		CustomerID: "cust-1",
		CourseID:   "course-1",
		CarID:      "car-1",
		Slot:       "10:00-11:00",
		StartDate:  "2025-11-01",
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSlotUnavailable.Code, appErr.Code)
	assert.Nil(t, f.bookings.created)
}

func TestBookingServiceCreateRejectsPastStartDate(t *testing.T) {
	f := newBookingFixture()
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), dto.CreateBookingRequest{
		CustomerID: "cust-1",
		CourseID:   "course-1",
		CarID:      "car-1",
		Slot:       "10:00-11:00",
		StartDate:  "2025-11-01",
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBookingServiceCreateRejectsOffGridSlot(t *testing.T) {
	f := newBookingFixture()
	now := time.Date(2025, 10, 30, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(context.Background(), dto.CreateBookingRequest{
		CustomerID: "cust-1",
		CourseID:   "course-1",
		CarID:      "car-1",
		Slot:       "13:00-14:00",
		StartDate:  "2025-11-01",
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
