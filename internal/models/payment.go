package models

import "time"

// PaymentMethod identifies how a payment was collected.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodStripe PaymentMethod = "STRIPE"
)

// PaymentStatus tracks settlement of a payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Payment records money collected against a booking.
type Payment struct {
	ID              string        `db:"id" json:"id"`
	BookingID       string        `db:"booking_id" json:"booking_id"`
	AmountCents     int64         `db:"amount_cents" json:"amount_cents"`
	Currency        string        `db:"currency" json:"currency"`
	Method          PaymentMethod `db:"method" json:"method"`
	Status          PaymentStatus `db:"status" json:"status"`
	StripeSessionID *string       `db:"stripe_session_id" json:"stripe_session_id,omitempty"`
	Reference       string        `db:"reference" json:"reference"`
	PaidAt          *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentFilter narrows payment queries.
type PaymentFilter struct {
	BookingID string
	Status    string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
