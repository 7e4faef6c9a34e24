package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

// AmendmentAction names the supported booking amendments.
type AmendmentAction string

const (
	AmendCancelBooking AmendmentAction = "CANCEL_BOOKING"
	AmendCarBreakdown  AmendmentAction = "CAR_BREAKDOWN"
	AmendCarHoliday    AmendmentAction = "CAR_HOLIDAY"
	AmendChangeDate    AmendmentAction = "CHANGE_DATE"
)

// Valid reports whether the value is a known amendment action.
func (a AmendmentAction) Valid() bool {
	switch a {
	case AmendCancelBooking, AmendCarBreakdown, AmendCarHoliday, AmendChangeDate:
		return true
	}
	return false
}

// AmendmentRequest carries everything needed to plan an amendment. The
// caller loads the booking's sessions, the car-wide session snapshot for
// occupancy checks, and the active holiday declarations beforehand.
type AmendmentRequest struct {
	Action           AmendmentAction
	Reason           string
	Selected         []models.BookingSession
	BookingSessions  []models.BookingSession
	ReplacementDates []time.Time
	CarSessions      []models.BookingSession
	Holidays         []models.HolidayDeclaration
	WeeklyHoliday    string
	Now              time.Time
}

// SessionCancellation marks one session CANCELLED with an audit stamp.
type SessionCancellation struct {
	SessionID  string
	DeletedAt  time.Time
	NoteAppend string
}

// SessionCreation describes a replacement session to insert.
type SessionCreation struct {
	BookingID     string
	DayNumber     int
	SessionDate   time.Time
	Slot          Slot
	CarID         string
	DriverID      string
	InternalNotes string
}

// AmendmentPlan is the ordered pair of operation sets an amendment emits.
// Cancellations must reach storage before creations so a failed create
// never leaves duplicate active sessions; the storage boundary is expected
// to wrap both sets in one transaction.
type AmendmentPlan struct {
	Cancellations []SessionCancellation
	Creations     []SessionCreation
}

// ValidationError flags a caller contract violation detected before any
// operation was planned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BlockedDatesError aggregates every business rule a replacement date
// violates, so the caller can present all of them at once.
type BlockedDatesError struct {
	Reasons []string
}

func (e *BlockedDatesError) Error() string {
	return "replacement dates blocked: " + strings.Join(e.Reasons, "; ")
}

// BuildAmendmentPlan validates the request and computes the full set of
// cancel and create operations. On any failure it returns a nil plan and
// no partial output.
func BuildAmendmentPlan(req AmendmentRequest) (*AmendmentPlan, error) {
	if !req.Action.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown amendment action %q", req.Action)}
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, &ValidationError{Message: "amendment reason must not be empty"}
	}
	if len(req.Selected) == 0 {
		return nil, &ValidationError{Message: "no sessions selected"}
	}

	today := DateKey(req.Now)
	for _, sess := range req.Selected {
		if sess.Status != models.SessionStatusPending && sess.Status != models.SessionStatusConfirmed {
			return nil, &ValidationError{Message: fmt.Sprintf("session %s is %s and cannot be amended", sess.ID, sess.Status)}
		}
		if DateKey(sess.SessionDate) <= today {
			return nil, &ValidationError{Message: fmt.Sprintf("session %s on %s is not in the future", sess.ID, DateKey(sess.SessionDate))}
		}
	}

	if req.Action == AmendChangeDate {
		return planReschedule(req)
	}

	plan := &AmendmentPlan{}
	for _, sess := range req.Selected {
		plan.Cancellations = append(plan.Cancellations, SessionCancellation{
			SessionID:  sess.ID,
			DeletedAt:  req.Now,
			NoteAppend: fmt.Sprintf("%s: %s", req.Action, strings.TrimSpace(req.Reason)),
		})
	}
	return plan, nil
}

func planReschedule(req AmendmentRequest) (*AmendmentPlan, error) {
	if len(req.ReplacementDates) != len(req.Selected) {
		return nil, &ValidationError{Message: fmt.Sprintf("expected %d replacement dates, got %d", len(req.Selected), len(req.ReplacementDates))}
	}

	floor := earliestScheduledDate(req.BookingSessions)

	var blocked []string
	for i, sess := range req.Selected {
		replacement := req.ReplacementDates[i]

		if floor != "" && DateKey(replacement) < floor {
			blocked = append(blocked, fmt.Sprintf("replacement %s precedes the earliest scheduled session (%s)", DateKey(replacement), floor))
			continue
		}

		in := AvailabilityInput{
			Date:          replacement,
			CarID:         sess.CarID,
			Sessions:      req.CarSessions,
			Holidays:      req.Holidays,
			WeeklyHoliday: req.WeeklyHoliday,
		}
		blocked = append(blocked, BlockingReasons(in, Slot(sess.Slot))...)
	}
	if len(blocked) > 0 {
		return nil, &BlockedDatesError{Reasons: blocked}
	}

	plan := &AmendmentPlan{}
	for i, sess := range req.Selected {
		replacement := req.ReplacementDates[i]
		plan.Cancellations = append(plan.Cancellations, SessionCancellation{
			SessionID:  sess.ID,
			DeletedAt:  req.Now,
			NoteAppend: fmt.Sprintf("date changed to %s: %s", DateKey(replacement), strings.TrimSpace(req.Reason)),
		})
		plan.Creations = append(plan.Creations, SessionCreation{
			BookingID:     sess.BookingID,
			DayNumber:     sess.DayNumber,
			SessionDate:   replacement,
			Slot:          Slot(sess.Slot),
			CarID:         sess.CarID,
			DriverID:      sess.DriverID,
			InternalNotes: fmt.Sprintf("rescheduled from %s", DateKey(sess.SessionDate)),
		})
	}
	return plan, nil
}

// earliestScheduledDate finds the floor for replacement dates: the first
// still-scheduled (PENDING or CONFIRMED, not amended away) session date.
func earliestScheduledDate(sessions []models.BookingSession) string {
	earliest := ""
	for _, sess := range sessions {
		if sess.DeletedAt != nil {
			continue
		}
		if sess.Status != models.SessionStatusPending && sess.Status != models.SessionStatusConfirmed {
			continue
		}
		key := DateKey(sess.SessionDate)
		if earliest == "" || key < earliest {
			earliest = key
		}
	}
	return earliest
}
