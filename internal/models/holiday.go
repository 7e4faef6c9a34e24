package models

import (
	"time"

	"github.com/lib/pq"
)

// HolidayType scopes a holiday declaration to cars and slots.
type HolidayType string

const (
	HolidayAllCarsMultipleDates   HolidayType = "ALL_CARS_MULTIPLE_DATES"
	HolidayOneCarMultipleDates    HolidayType = "ONE_CAR_MULTIPLE_DATES"
	HolidayAllCarsParticularSlots HolidayType = "ALL_CARS_PARTICULAR_SLOTS"
	HolidayOneCarParticularSlots  HolidayType = "ONE_CAR_PARTICULAR_SLOTS"
)

// CarScoped reports whether the declaration applies to a single car.
func (t HolidayType) CarScoped() bool {
	return t == HolidayOneCarMultipleDates || t == HolidayOneCarParticularSlots
}

// SlotScoped reports whether the declaration blocks specific slots rather
// than whole days.
func (t HolidayType) SlotScoped() bool {
	return t == HolidayAllCarsParticularSlots || t == HolidayOneCarParticularSlots
}

// Valid reports whether the value is one of the four declaration types.
func (t HolidayType) Valid() bool {
	switch t {
	case HolidayAllCarsMultipleDates, HolidayOneCarMultipleDates,
		HolidayAllCarsParticularSlots, HolidayOneCarParticularSlots:
		return true
	}
	return false
}

// HolidayDeclaration blocks an inclusive date range, optionally scoped to
// one car and/or a set of slots. Declarations are immutable once created.
type HolidayDeclaration struct {
	ID              string         `db:"id" json:"id"`
	DeclarationType HolidayType    `db:"declaration_type" json:"declaration_type"`
	StartDate       time.Time      `db:"start_date" json:"start_date"`
	EndDate         time.Time      `db:"end_date" json:"end_date"`
	CarID           *string        `db:"car_id" json:"car_id,omitempty"`
	Slots           pq.StringArray `db:"slots" json:"slots,omitempty"`
	Reason          string         `db:"reason" json:"reason"`
	CreatedBy       *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// HolidayFilter narrows holiday declaration queries.
type HolidayFilter struct {
	CarID    string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
