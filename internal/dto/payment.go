package dto

// RecordPaymentRequest records a manual (cash or card terminal) payment.
type RecordPaymentRequest struct {
	BookingID   string `json:"booking_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required,oneof=CASH CARD"`
	Reference   string `json:"reference"`
}

// CheckoutRequest starts a Stripe checkout for a booking's balance.
type CheckoutRequest struct {
	BookingID   string `json:"booking_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Description string `json:"description"`
}

// CheckoutResponse returns the hosted payment page for the customer.
type CheckoutResponse struct {
	PaymentID       string `json:"payment_id"`
	StripeSessionID string `json:"stripe_session_id"`
	CheckoutURL     string `json:"checkout_url"`
}
