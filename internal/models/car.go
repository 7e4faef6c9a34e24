package models

import "time"

// Car represents a training vehicle with its assigned instructor.
type Car struct {
	ID             string    `db:"id" json:"id"`
	RegistrationNo string    `db:"registration_no" json:"registration_no"`
	Model          string    `db:"model" json:"model"`
	Transmission   string    `db:"transmission" json:"transmission"`
	DriverID       *string   `db:"driver_id" json:"driver_id,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CarFilter describes query params for listing cars.
type CarFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
