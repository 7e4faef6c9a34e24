package models

import "time"

// BookingStatus tracks the overall state of a booking.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// SessionStatus tracks the lifecycle of a single booking session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusConfirmed SessionStatus = "CONFIRMED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
	SessionStatusNoShow    SessionStatus = "NO_SHOW"
)

// Booking groups a customer, a course, a car, and a fixed daily slot
// starting from a given date. It owns its booking sessions.
type Booking struct {
	ID         string        `db:"id" json:"id"`
	CustomerID string        `db:"customer_id" json:"customer_id"`
	CourseID   string        `db:"course_id" json:"course_id"`
	CarID      string        `db:"car_id" json:"car_id"`
	DriverID   string        `db:"driver_id" json:"driver_id"`
	Slot       string        `db:"slot" json:"slot"`
	StartDate  time.Time     `db:"start_date" json:"start_date"`
	Status     BookingStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingSession is one scheduled occurrence of a multi-day course. A
// session with DeletedAt set was amended away: it stays CANCELLED in the
// history and is never hard-deleted.
type BookingSession struct {
	ID              string        `db:"id" json:"id"`
	BookingID       string        `db:"booking_id" json:"booking_id"`
	DayNumber       int           `db:"day_number" json:"day_number"`
	SessionDate     time.Time     `db:"session_date" json:"session_date"`
	Slot            string        `db:"slot" json:"slot"`
	CarID           string        `db:"car_id" json:"car_id"`
	DriverID        string        `db:"driver_id" json:"driver_id"`
	Status          SessionStatus `db:"status" json:"status"`
	Attended        bool          `db:"attended" json:"attended"`
	DeletedAt       *time.Time    `db:"deleted_at" json:"deleted_at,omitempty"`
	InstructorNotes *string       `db:"instructor_notes" json:"instructor_notes,omitempty"`
	InternalNotes   *string       `db:"internal_notes" json:"internal_notes,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	CustomerID string
	CarID      string
	Status     string
	Page       int
	PageSize   int
}

// SessionFilter narrows booking session queries.
type SessionFilter struct {
	CarID     string
	BookingID string
	Date      *time.Time
	Statuses  []SessionStatus
}
