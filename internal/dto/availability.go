package dto

// DayAvailability is the availability payload for one car on one date.
type DayAvailability struct {
	CarID          string   `json:"car_id"`
	Date           string   `json:"date"`
	WeeklyHoliday  bool     `json:"weekly_holiday"`
	AllSlots       []string `json:"all_slots"`
	AvailableSlots []string `json:"available_slots"`
}

// AvailabilityQuery captures query parameters for availability lookups.
type AvailabilityQuery struct {
	CarID string `form:"carId"`
	Date  string `form:"date" binding:"required"`
}
