package models

import "time"

// Driver represents an instructor who can be assigned to a car.
type Driver struct {
	ID            string    `db:"id" json:"id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Phone         string    `db:"phone" json:"phone"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DriverFilter describes query params for listing drivers.
type DriverFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
