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
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type amendmentFixture struct {
	svc         *AmendmentService
	bookings    *stubBookingRepo
	sessions    *stubSessionRepo
	invalidator *stubInvalidator
}

func newAmendmentFixture(bookingSessions []models.BookingSession) *amendmentFixture {
	bookings := &stubBookingRepo{bookings: map[string]models.Booking{
		"book-1": {ID: "book-1", CarID: "car-1", DriverID: "drv-1", Slot: "10:00-11:00", Status: models.BookingStatusActive},
	}}
	sessions := &stubSessionRepo{
		byBooking: map[string][]models.BookingSession{"book-1": bookingSessions},
		byCar:     bookingSessions,
	}
	holidays := &stubHolidayRepo{}
	school := &stubSchoolReader{profile: testProfile()}
	invalidator := &stubInvalidator{}
	svc := NewAmendmentService(bookings, sessions, holidays, school, invalidator, nil, zap.NewNop())
	return &amendmentFixture{svc: svc, bookings: bookings, sessions: sessions, invalidator: invalidator}
}

func futureBookingSessions() []models.BookingSession {
	return []models.BookingSession{
		{ID: "sess-1", BookingID: "book-1", DayNumber: 1, SessionDate: time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), Slot: "10:00-11:00", CarID: "car-1", DriverID: "drv-1", Status: models.SessionStatusPending},
		{ID: "sess-2", BookingID: "book-1", DayNumber: 2, SessionDate: time.Date(2025, 11, 11, 0, 0, 0, 0, time.UTC), Slot: "10:00-11:00", CarID: "car-1", DriverID: "drv-1", Status: models.SessionStatusConfirmed},
	}
}

func TestAmendmentServiceCancelBooking(t *testing.T) {
	f := newAmendmentFixture(futureBookingSessions())
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	result, err := f.svc.Amend(context.Background(), "book-1", dto.AmendBookingRequest{
		Action: "CANCEL_BOOKING",
		Reason: "customer moved away",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Cancelled)
	assert.Equal(t, 0, result.Created)
	require.NotNil(t, f.sessions.appliedPlan)
	assert.Len(t, f.sessions.appliedPlan.Cancellations, 2)
	assert.Empty(t, f.sessions.appliedPlan.Creations)
	assert.Equal(t, models.BookingStatusCancelled, f.bookings.statuses["book-1"])
	assert.Equal(t, []string{"car-1"}, f.invalidator.invalidatedCars)
}

func TestAmendmentServiceChangeDate(t *testing.T) {
	f := newAmendmentFixture(futureBookingSessions())
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	result, err := f.svc.Amend(context.Background(), "book-1", dto.AmendBookingRequest{
		Action:           "CHANGE_DATE",
		Reason:           "customer request",
		SessionIDs:       []string{"sess-2"},
		ReplacementDates: []string{"2025-11-12"},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Cancelled)
	assert.Equal(t, 1, result.Created)
	plan := f.sessions.appliedPlan
	require.NotNil(t, plan)
	require.Len(t, plan.Creations, 1)
	assert.Equal(t, "2025-11-12", scheduling.DateKey(plan.Creations[0].SessionDate))
	assert.Equal(t, 2, plan.Creations[0].DayNumber)
	assert.Equal(t, "10:00-11:00", string(plan.Creations[0].Slot))
	assert.Equal(t, models.BookingStatus(""), f.bookings.statuses["book-1"])
}

func TestAmendmentServiceChangeDateBelowFloor(t *testing.T) {
	f := newAmendmentFixture(futureBookingSessions())
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	// Earliest remaining session is Nov 10; Nov 9 is below the floor.
	_, err := f.svc.Amend(context.Background(), "book-1", dto.AmendBookingRequest{
		Action:           "CHANGE_DATE",
		Reason:           "customer request",
		SessionIDs:       []string{"sess-2"},
		ReplacementDates: []string{"2025-11-09"},
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDateBlocked.Code, appErr.Code)
	assert.Nil(t, f.sessions.appliedPlan)
}

func TestAmendmentServiceChangeDateRequiresSelection(t *testing.T) {
	f := newAmendmentFixture(futureBookingSessions())
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Amend(context.Background(), "book-1", dto.AmendBookingRequest{
		Action:           "CHANGE_DATE",
		Reason:           "customer request",
		ReplacementDates: []string{"2025-11-12"},
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAmendmentServiceRejectsCancelledBooking(t *testing.T) {
	f := newAmendmentFixture(futureBookingSessions())
	f.bookings.bookings["book-1"] = models.Booking{ID: "book-1", CarID: "car-1", Status: models.BookingStatusCancelled}
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Amend(context.Background(), "book-1", dto.AmendBookingRequest{
		Action: "CANCEL_BOOKING",
		Reason: "again",
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestAmendmentServiceUnknownSession(t *testing.T) {
	f := newAmendmentFixture(futureBookingSessions())
	now := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Amend(context.Background(), "book-1", dto.AmendBookingRequest{
		Action:           "CHANGE_DATE",
		Reason:           "customer request",
		SessionIDs:       []string{"sess-404"},
		ReplacementDates: []string{"2025-11-12"},
	}, now)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
