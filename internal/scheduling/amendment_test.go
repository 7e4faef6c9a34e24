package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

func futureSession(id string, date time.Time, dayNumber int) models.BookingSession {
	return models.BookingSession{
		ID:          id,
		BookingID:   "booking-1",
		DayNumber:   dayNumber,
		SessionDate: date,
		Slot:        "10:00-11:00",
		CarID:       "car-5",
		DriverID:    "driver-2",
		Status:      models.SessionStatusPending,
	}
}

func amendNow() time.Time {
	return time.Date(2024, time.November, 1, 9, 30, 0, 0, time.UTC)
}

func TestBuildAmendmentPlanCancelStampsEverySelectedSession(t *testing.T) {
	sessions := []models.BookingSession{
		futureSession("sess-1", testDate(2024, time.November, 10), 1),
		futureSession("sess-2", testDate(2024, time.November, 11), 2),
	}
	plan, err := BuildAmendmentPlan(AmendmentRequest{
		Action:          AmendCarBreakdown,
		Reason:          "gearbox failure",
		Selected:        sessions,
		BookingSessions: sessions,
		Now:             amendNow(),
	})
	require.NoError(t, err)
	require.Len(t, plan.Cancellations, 2)
	assert.Empty(t, plan.Creations)
	for i, c := range plan.Cancellations {
		assert.Equal(t, sessions[i].ID, c.SessionID)
		assert.Equal(t, amendNow(), c.DeletedAt)
		assert.Contains(t, c.NoteAppend, "gearbox failure")
	}
}

func TestBuildAmendmentPlanRejectsEmptyReasonAndSelection(t *testing.T) {
	sess := futureSession("sess-1", testDate(2024, time.November, 10), 1)

	_, err := BuildAmendmentPlan(AmendmentRequest{
		Action:   AmendCancelBooking,
		Reason:   "   ",
		Selected: []models.BookingSession{sess},
		Now:      amendNow(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = BuildAmendmentPlan(AmendmentRequest{
		Action: AmendCancelBooking,
		Reason: "customer request",
		Now:    amendNow(),
	})
	require.ErrorAs(t, err, &verr)
}

func TestBuildAmendmentPlanRejectsPastOrTerminalSessions(t *testing.T) {
	past := futureSession("sess-1", testDate(2024, time.October, 20), 1)
	_, err := BuildAmendmentPlan(AmendmentRequest{
		Action:   AmendCancelBooking,
		Reason:   "too late",
		Selected: []models.BookingSession{past},
		Now:      amendNow(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	done := futureSession("sess-2", testDate(2024, time.November, 10), 2)
	done.Status = models.SessionStatusCompleted
	_, err = BuildAmendmentPlan(AmendmentRequest{
		Action:   AmendCancelBooking,
		Reason:   "already done",
		Selected: []models.BookingSession{done},
		Now:      amendNow(),
	})
	require.ErrorAs(t, err, &verr)
}

func TestBuildAmendmentPlanReschedulePairsCancelAndCreate(t *testing.T) {
	old := futureSession("sess-1", testDate(2024, time.November, 10), 3)
	booking := []models.BookingSession{
		futureSession("sess-0", testDate(2024, time.November, 9), 2),
		old,
	}
	plan, err := BuildAmendmentPlan(AmendmentRequest{
		Action:           AmendChangeDate,
		Reason:           "customer travelling",
		Selected:         []models.BookingSession{old},
		BookingSessions:  booking,
		ReplacementDates: []time.Time{testDate(2024, time.November, 15)},
		Now:              amendNow(),
	})
	require.NoError(t, err)
	require.Len(t, plan.Cancellations, 1)
	require.Len(t, plan.Creations, 1)

	created := plan.Creations[0]
	assert.Equal(t, old.BookingID, created.BookingID)
	assert.Equal(t, old.DayNumber, created.DayNumber)
	assert.Equal(t, Slot(old.Slot), created.Slot)
	assert.Equal(t, old.CarID, created.CarID)
	assert.Equal(t, old.DriverID, created.DriverID)
	assert.Equal(t, testDate(2024, time.November, 15), created.SessionDate)
	assert.Contains(t, created.InternalNotes, "2024-11-10")
	assert.Contains(t, plan.Cancellations[0].NoteAppend, "date changed")
}

func TestBuildAmendmentPlanRescheduleRejectsDateBeforeFloor(t *testing.T) {
	old := futureSession("sess-1", testDate(2024, time.November, 10), 1)
	_, err := BuildAmendmentPlan(AmendmentRequest{
		Action:           AmendChangeDate,
		Reason:           "bring it forward",
		Selected:         []models.BookingSession{old},
		BookingSessions:  []models.BookingSession{old},
		ReplacementDates: []time.Time{testDate(2024, time.November, 9)},
		Now:              amendNow(),
	})
	var blocked *BlockedDatesError
	require.ErrorAs(t, err, &blocked)
	require.Len(t, blocked.Reasons, 1)
	assert.Contains(t, blocked.Reasons[0], "precedes")
}

func TestBuildAmendmentPlanRescheduleChecksAvailability(t *testing.T) {
	old := futureSession("sess-1", testDate(2024, time.November, 10), 1)
	occupying := futureSession("sess-other", testDate(2024, time.November, 15), 1)
	occupying.BookingID = "booking-2"

	_, err := BuildAmendmentPlan(AmendmentRequest{
		Action:           AmendChangeDate,
		Reason:           "move it",
		Selected:         []models.BookingSession{old},
		BookingSessions:  []models.BookingSession{old},
		ReplacementDates: []time.Time{testDate(2024, time.November, 15)},
		CarSessions:      []models.BookingSession{occupying},
		Now:              amendNow(),
	})
	var blocked *BlockedDatesError
	require.ErrorAs(t, err, &blocked)

	// Weekly holiday replacement is rejected too. 2024-11-17 is a Sunday.
	_, err = BuildAmendmentPlan(AmendmentRequest{
		Action:           AmendChangeDate,
		Reason:           "move it",
		Selected:         []models.BookingSession{old},
		BookingSessions:  []models.BookingSession{old},
		ReplacementDates: []time.Time{testDate(2024, time.November, 17)},
		WeeklyHoliday:    "SUNDAY",
		Now:              amendNow(),
	})
	require.ErrorAs(t, err, &blocked)
}

func TestBuildAmendmentPlanRescheduleCountMismatch(t *testing.T) {
	old := futureSession("sess-1", testDate(2024, time.November, 10), 1)
	_, err := BuildAmendmentPlan(AmendmentRequest{
		Action:          AmendChangeDate,
		Reason:          "move it",
		Selected:        []models.BookingSession{old},
		BookingSessions: []models.BookingSession{old},
		Now:             amendNow(),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
