package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByStripeSession(ctx context.Context, sessionID string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, paidAt *time.Time) error
}

type paymentBookingReader interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
}

// StripeConfig carries the Stripe credentials and return URLs.
type StripeConfig struct {
	Enabled    bool
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// PaymentService records manual payments and drives Stripe checkout for
// card collection.
type PaymentService struct {
	repo      paymentRepository
	bookings  paymentBookingReader
	config    StripeConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, bookings paymentBookingReader, config StripeConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Currency == "" {
		config.Currency = "usd"
	}
	return &PaymentService{repo: repo, bookings: bookings, config: config, validator: validate, logger: logger}
}

// List returns payments with pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// RecordManual stores a cash or card-terminal payment as settled.
func (s *PaymentService) RecordManual(ctx context.Context, req dto.RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if _, err := s.bookings.FindByID(ctx, req.BookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		BookingID:   req.BookingID,
		AmountCents: req.AmountCents,
		Currency:    s.config.Currency,
		Method:      models.PaymentMethod(req.Method),
		Status:      models.PaymentStatusPaid,
		Reference:   req.Reference,
		PaidAt:      &now,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store payment")
	}

	s.logger.Info("manual payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", payment.BookingID),
		zap.Int64("amount_cents", payment.AmountCents))
	return payment, nil
}

// CreateCheckout opens a Stripe checkout session for a booking and stores
// a PENDING payment referencing it.
func (s *PaymentService) CreateCheckout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "online payments are not enabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}
	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	description := req.Description
	if description == "" {
		description = "Driving course booking " + booking.ID
	}

	// Stripe uses a global API key. Keep usage limited to this call.
	stripe.Key = s.config.SecretKey

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.config.SuccessURL),
		CancelURL:         stripe.String(s.config.CancelURL),
		ClientReferenceID: stripe.String(booking.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.config.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"booking_id": booking.ID,
		},
	}
	params.AddExpand("url")

	sess, err := checkoutsession.New(params)
	if err != nil {
		s.logger.Error("stripe checkout session create failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create checkout session")
	}

	payment := &models.Payment{
		BookingID:       booking.ID,
		AmountCents:     req.AmountCents,
		Currency:        s.config.Currency,
		Method:          models.PaymentMethodStripe,
		Status:          models.PaymentStatusPending,
		StripeSessionID: &sess.ID,
		Reference:       sess.ID,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store payment")
	}

	s.logger.Info("checkout session created",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", booking.ID),
		zap.String("stripe_session_id", sess.ID))

	return &dto.CheckoutResponse{
		PaymentID:       payment.ID,
		StripeSessionID: sess.ID,
		CheckoutURL:     sess.URL,
	}, nil
}

// SettleCheckout marks the payment behind a completed checkout session as
// paid. Driven by the checkout.session.completed callback.
func (s *PaymentService) SettleCheckout(ctx context.Context, stripeSessionID string) (*models.Payment, error) {
	payment, err := s.repo.FindByStripeSession(ctx, stripeSessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "checkout session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status == models.PaymentStatusPaid {
		return payment, nil
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusPaid, &now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}
	payment.Status = models.PaymentStatusPaid
	payment.PaidAt = &now

	s.logger.Info("checkout settled", zap.String("payment_id", payment.ID), zap.String("stripe_session_id", stripeSessionID))
	return payment, nil
}
