package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

// PaymentRepository provides persistence for payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = "id, booking_id, amount_cents, currency, method, status, stripe_session_id, reference, paid_at, created_at, updated_at"

// List returns payments with optional filtering and pagination.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BookingID != "" {
		conditions = append(conditions, fmt.Sprintf("booking_id = $%d", len(args)+1))
		args = append(args, filter.BookingID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", paymentColumns, base, size, (page-1)*size)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID loads a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByStripeSession loads a payment by its Stripe checkout session id.
func (r *PaymentRepository) FindByStripeSession(ctx context.Context, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	query := fmt.Sprintf("SELECT %s FROM payments WHERE stripe_session_id = $1", paymentColumns)
	if err := r.db.GetContext(ctx, &payment, query, sessionID); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create stores a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	const query = `INSERT INTO payments (id, booking_id, amount_cents, currency, method, status, stripe_session_id, reference, paid_at, created_at, updated_at) VALUES (:id, :booking_id, :amount_cents, :currency, :method, :status, :stripe_session_id, :reference, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// UpdateStatus sets a payment's settlement status, stamping paid_at when
// the payment settles.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, paidAt *time.Time) error {
	now := time.Now().UTC()
	const query = `UPDATE payments SET status = $1, paid_at = COALESCE($2, paid_at), updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, status, paidAt, now, id); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}
