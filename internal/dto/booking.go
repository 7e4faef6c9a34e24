package dto

import "github.com/drivedesk/drivedesk-api/internal/models"

// CreateBookingRequest is the payload for booking a course.
type CreateBookingRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	CourseID   string `json:"course_id" validate:"required"`
	CarID      string `json:"car_id" validate:"required"`
	Slot       string `json:"slot" validate:"required"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
}

// BookingDetail pairs a booking with its scheduled sessions.
type BookingDetail struct {
	Booking  models.Booking          `json:"booking"`
	Sessions []models.BookingSession `json:"sessions"`
}

// AmendBookingRequest is the payload for amending a booking's sessions.
type AmendBookingRequest struct {
	Action           string   `json:"action" validate:"required"`
	Reason           string   `json:"reason" validate:"required"`
	SessionIDs       []string `json:"session_ids"`
	ReplacementDates []string `json:"replacement_dates" validate:"dive,datetime=2006-01-02"`
}

// AmendmentResult summarizes the applied amendment.
type AmendmentResult struct {
	BookingID string                  `json:"booking_id"`
	Cancelled int                     `json:"cancelled"`
	Created   int                     `json:"created"`
	Sessions  []models.BookingSession `json:"sessions"`
}

// UpdateAttendanceRequest records a session outcome.
type UpdateAttendanceRequest struct {
	Status          string  `json:"status" validate:"required,oneof=CONFIRMED COMPLETED NO_SHOW"`
	Attended        bool    `json:"attended"`
	InstructorNotes *string `json:"instructor_notes,omitempty"`
}
