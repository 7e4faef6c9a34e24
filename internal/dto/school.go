package dto

// UpdateSchoolProfileRequest replaces the school calendar configuration.
type UpdateSchoolProfileRequest struct {
	Name           string  `json:"name" validate:"required"`
	DayStartTime   string  `json:"day_start_time" validate:"required"`
	DayEndTime     string  `json:"day_end_time" validate:"required"`
	LunchStartTime *string `json:"lunch_start_time,omitempty"`
	LunchEndTime   *string `json:"lunch_end_time,omitempty"`
	WeeklyHoliday  *string `json:"weekly_holiday,omitempty"`
}
