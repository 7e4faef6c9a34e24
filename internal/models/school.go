package models

import "time"

// SchoolProfile holds the school-wide calendar configuration that drives
// slot generation: operating hours, the optional lunch window, and the
// optional weekly recurring off-day.
type SchoolProfile struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	DayStartTime   string    `db:"day_start_time" json:"day_start_time"`
	DayEndTime     string    `db:"day_end_time" json:"day_end_time"`
	LunchStartTime *string   `db:"lunch_start_time" json:"lunch_start_time,omitempty"`
	LunchEndTime   *string   `db:"lunch_end_time" json:"lunch_end_time,omitempty"`
	WeeklyHoliday  *string   `db:"weekly_holiday" json:"weekly_holiday,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
