package scheduling

import (
	"fmt"
	"time"
)

// MaterializeSessionDates produces one calendar date per course day. Day 1
// lands on startDate itself; later days advance one day at a time and skip
// the weekly holiday. Ad-hoc holiday declarations are not consulted here:
// bookings that run into a declared holiday are resolved through the
// amendment flow, not at materialization time.
func MaterializeSessionDates(startDate time.Time, courseDays int, weeklyHoliday string) ([]time.Time, error) {
	if courseDays <= 0 {
		return nil, fmt.Errorf("course days must be positive, got %d", courseDays)
	}

	start := time.Date(startDate.UTC().Year(), startDate.UTC().Month(), startDate.UTC().Day(), 0, 0, 0, 0, time.UTC)

	dates := make([]time.Time, 0, courseDays)
	dates = append(dates, start)

	current := start
	for day := 2; day <= courseDays; day++ {
		current = current.AddDate(0, 0, 1)
		for IsWeeklyHoliday(current, weeklyHoliday) {
			current = current.AddDate(0, 0, 1)
		}
		dates = append(dates, current)
	}
	return dates, nil
}
