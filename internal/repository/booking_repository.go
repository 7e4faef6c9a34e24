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

// BookingRepository provides persistence for bookings and their sessions.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = "id, customer_id, course_id, car_id, driver_id, slot, start_date, status, created_at, updated_at"

// List returns bookings with optional filtering and pagination.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CustomerID != "" {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)+1))
		args = append(args, filter.CustomerID)
	}
	if filter.CarID != "" {
		conditions = append(conditions, fmt.Sprintf("car_id = $%d", len(args)+1))
		args = append(args, filter.CarID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", bookingColumns, base, size, (page-1)*size)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns)
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateWithSessions inserts the booking and its materialized sessions in
// one transaction, so a failed session insert rolls everything back.
func (r *BookingRepository) CreateWithSessions(ctx context.Context, booking *models.Booking, sessions []models.BookingSession) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	const bookingInsert = `INSERT INTO bookings (id, customer_id, course_id, car_id, driver_id, slot, start_date, status, created_at, updated_at) VALUES (:id, :customer_id, :course_id, :car_id, :driver_id, :slot, :start_date, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, bookingInsert, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	for i := range sessions {
		sessions[i].BookingID = booking.ID
		if err = insertSession(ctx, tx, &sessions[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create booking: %w", err)
	}
	return nil
}

// UpdateStatus changes the booking's overall status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`, status, now, id); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

func insertSession(ctx context.Context, exec sqlx.ExtContext, session *models.BookingSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO booking_sessions (id, booking_id, day_number, session_date, slot, car_id, driver_id, status, attended, instructor_notes, internal_notes, created_at, updated_at) VALUES (:id, :booking_id, :day_number, :session_date, :slot, :car_id, :driver_id, :status, :attended, :instructor_notes, :internal_notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, session); err != nil {
		return fmt.Errorf("insert booking session: %w", err)
	}
	return nil
}
