// Package scheduling implements the slot availability and session
// generation engine: slot generation from operating hours, availability
// filtering against sessions and holiday declarations, materialization of
// multi-day course sessions, and amendment planning. Everything here is a
// pure computation over caller-supplied snapshots; no clocks or I/O.
package scheduling

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotDurationMinutes is the fixed length of every bookable slot.
const SlotDurationMinutes = 60

// Slot is a one-hour interval encoded as "HH:MM-HH:MM" in 24-hour form.
type Slot string

// StartMinutes returns the slot's start as minutes from midnight.
func (s Slot) StartMinutes() (int, error) {
	parts := strings.SplitN(string(s), "-", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed slot %q", s)
	}
	return parseClock(parts[0])
}

// ClockMinutes parses an "HH:MM" clock value into minutes from midnight.
func ClockMinutes(v string) (int, error) {
	return parseClock(v)
}

// GenerateSlots produces the ordered list of one-hour slots between
// dayStart and dayEnd, excluding any slot overlapping the lunch window.
// A trailing window shorter than an hour is not emitted. Lunch times are
// optional; pass empty strings for both to skip lunch exclusion.
func GenerateSlots(dayStart, dayEnd, lunchStart, lunchEnd string) ([]Slot, error) {
	start, err := parseClock(dayStart)
	if err != nil {
		return nil, fmt.Errorf("day start: %w", err)
	}
	end, err := parseClock(dayEnd)
	if err != nil {
		return nil, fmt.Errorf("day end: %w", err)
	}

	hasLunch := lunchStart != "" || lunchEnd != ""
	var lunchFrom, lunchTo int
	if hasLunch {
		if lunchStart == "" || lunchEnd == "" {
			return nil, fmt.Errorf("lunch window requires both start and end")
		}
		lunchFrom, err = parseClock(lunchStart)
		if err != nil {
			return nil, fmt.Errorf("lunch start: %w", err)
		}
		lunchTo, err = parseClock(lunchEnd)
		if err != nil {
			return nil, fmt.Errorf("lunch end: %w", err)
		}
		if lunchFrom >= lunchTo {
			return nil, fmt.Errorf("lunch start %s must precede lunch end %s", lunchStart, lunchEnd)
		}
	}

	var slots []Slot
	for cur := start; cur < end; cur += SlotDurationMinutes {
		next := cur + SlotDurationMinutes
		if next > end {
			break
		}
		if hasLunch && overlapsLunch(cur, next, lunchFrom, lunchTo) {
			continue
		}
		slots = append(slots, Slot(formatClock(cur)+"-"+formatClock(next)))
	}
	return slots, nil
}

// overlapsLunch reports whether the window [from, to) collides with the
// lunch interval [lunchFrom, lunchTo). A window ending exactly at lunch
// start (or starting exactly at lunch end) does not collide.
func overlapsLunch(from, to, lunchFrom, lunchTo int) bool {
	if from >= lunchFrom && from < lunchTo {
		return true
	}
	if to > lunchFrom && to < lunchTo {
		return true
	}
	return from <= lunchFrom && to >= lunchTo
}

func parseClock(v string) (int, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed time %q, expected HH:MM", v)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed hour in %q", v)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed minute in %q", v)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", v)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
