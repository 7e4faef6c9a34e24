package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

// AvailabilityInput is the snapshot a caller assembles before asking which
// slots remain bookable for a car on a date. Now must be supplied by the
// caller; the engine never reads the wall clock itself.
type AvailabilityInput struct {
	Date          time.Time
	CarID         string
	AllSlots      []Slot
	Sessions      []models.BookingSession
	Holidays      []models.HolidayDeclaration
	WeeklyHoliday string
	Now           *time.Time
}

// blockingStatuses occupy a car+date+slot. CANCELLED is included on
// purpose: a slot cancelled earlier the same day stays blocked for that
// exact car+slot+date rather than being immediately re-offered.
var blockingStatuses = map[models.SessionStatus]struct{}{
	models.SessionStatusPending:   {},
	models.SessionStatusConfirmed: {},
	models.SessionStatusCancelled: {},
}

// AvailableSlots returns the order-preserving subset of AllSlots that is
// bookable for the input's car and date. Identical inputs always yield
// identical outputs.
func AvailableSlots(in AvailabilityInput) []Slot {
	if IsWeeklyHoliday(in.Date, in.WeeklyHoliday) {
		return nil
	}

	available := make([]Slot, 0, len(in.AllSlots))
	for _, slot := range in.AllSlots {
		if slotBlocked(in, slot) {
			continue
		}
		available = append(available, slot)
	}
	return available
}

// BlockingReasons returns every rule that prevents booking the given slot
// on the input's date, as human-readable messages. An empty result means
// the slot is bookable. Callers validating amendments use this to surface
// all violations at once.
func BlockingReasons(in AvailabilityInput, slot Slot) []string {
	var reasons []string

	if IsWeeklyHoliday(in.Date, in.WeeklyHoliday) {
		reasons = append(reasons, fmt.Sprintf("%s falls on the weekly holiday (%s)", DateKey(in.Date), strings.ToUpper(in.WeeklyHoliday)))
	}

	for _, sess := range in.Sessions {
		if sessionOccupies(sess, in.Date, in.CarID, slot) {
			reasons = append(reasons, fmt.Sprintf("slot %s on %s is already taken by session %s (%s)", slot, DateKey(in.Date), sess.ID, sess.Status))
			break
		}
	}

	for _, h := range in.Holidays {
		if holidayBlocksDay(h, in.Date, in.CarID) {
			reasons = append(reasons, fmt.Sprintf("%s is inside a declared holiday (%s to %s)", DateKey(in.Date), DateKey(h.StartDate), DateKey(h.EndDate)))
			continue
		}
		if holidayBlocksSlot(h, in.Date, in.CarID, slot) {
			reasons = append(reasons, fmt.Sprintf("slot %s on %s is blocked by a holiday declaration", slot, DateKey(in.Date)))
		}
	}

	if in.Now != nil && sameDay(in.Date, *in.Now) && !slotAfter(slot, *in.Now) {
		reasons = append(reasons, fmt.Sprintf("slot %s has already started today", slot))
	}

	return reasons
}

func slotBlocked(in AvailabilityInput, slot Slot) bool {
	for _, sess := range in.Sessions {
		if sessionOccupies(sess, in.Date, in.CarID, slot) {
			return true
		}
	}

	for _, h := range in.Holidays {
		if holidayBlocksDay(h, in.Date, in.CarID) {
			return true
		}
		if holidayBlocksSlot(h, in.Date, in.CarID, slot) {
			return true
		}
	}

	if in.Now != nil && sameDay(in.Date, *in.Now) && !slotAfter(slot, *in.Now) {
		return true
	}

	return false
}

func sessionOccupies(sess models.BookingSession, date time.Time, carID string, slot Slot) bool {
	if sess.CarID != carID || Slot(sess.Slot) != slot {
		return false
	}
	if DateKey(sess.SessionDate) != DateKey(date) {
		return false
	}
	_, blocks := blockingStatuses[sess.Status]
	return blocks
}

func holidayAppliesToCar(h models.HolidayDeclaration, carID string) bool {
	if !h.DeclarationType.CarScoped() {
		return true
	}
	return h.CarID != nil && *h.CarID == carID
}

func holidayCoversDate(h models.HolidayDeclaration, date time.Time) bool {
	key := DateKey(date)
	return key >= DateKey(h.StartDate) && key <= DateKey(h.EndDate)
}

func holidayBlocksDay(h models.HolidayDeclaration, date time.Time, carID string) bool {
	if h.DeclarationType.SlotScoped() {
		return false
	}
	return holidayAppliesToCar(h, carID) && holidayCoversDate(h, date)
}

func holidayBlocksSlot(h models.HolidayDeclaration, date time.Time, carID string, slot Slot) bool {
	if !h.DeclarationType.SlotScoped() {
		return false
	}
	if !holidayAppliesToCar(h, carID) || !holidayCoversDate(h, date) {
		return false
	}
	for _, s := range h.Slots {
		if Slot(s) == slot {
			return true
		}
	}
	return false
}

// slotAfter reports whether the slot starts strictly after the reference
// instant's time of day. Unparseable slots are treated as elapsed.
func slotAfter(slot Slot, now time.Time) bool {
	start, err := slot.StartMinutes()
	if err != nil {
		return false
	}
	return start > now.UTC().Hour()*60+now.UTC().Minute()
}

// IsWeeklyHoliday reports whether the date falls on the school's weekly
// recurring off-day. Day names match case-insensitively.
func IsWeeklyHoliday(date time.Time, weeklyHoliday string) bool {
	if weeklyHoliday == "" {
		return false
	}
	return strings.EqualFold(date.UTC().Weekday().String(), weeklyHoliday)
}

// DateKey normalizes a timestamp to its UTC calendar date string.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}
