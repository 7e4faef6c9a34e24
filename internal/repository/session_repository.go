package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
)

// SessionRepository provides persistence for booking sessions, including
// the transactional cancel-then-create pair an amendment emits.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, booking_id, day_number, session_date, slot, car_id, driver_id, status, attended, deleted_at, instructor_notes, internal_notes, created_at, updated_at"

// ListByCarAndDate returns every session for a car on a calendar date,
// including amended-away ones, since CANCELLED sessions still block.
func (r *SessionRepository) ListByCarAndDate(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE car_id = $1 AND session_date = $2 ORDER BY slot ASC", sessionColumns)
	var sessions []models.BookingSession
	if err := r.db.SelectContext(ctx, &sessions, query, carID, date.UTC().Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list sessions by car and date: %w", err)
	}
	return sessions, nil
}

// ListByCarFromDate returns a car's sessions on or after the given date.
func (r *SessionRepository) ListByCarFromDate(ctx context.Context, carID string, from time.Time) ([]models.BookingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE car_id = $1 AND session_date >= $2 ORDER BY session_date ASC, slot ASC", sessionColumns)
	var sessions []models.BookingSession
	if err := r.db.SelectContext(ctx, &sessions, query, carID, from.UTC().Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list sessions by car from date: %w", err)
	}
	return sessions, nil
}

// ListByBooking returns all sessions of a booking ordered by day number.
func (r *SessionRepository) ListByBooking(ctx context.Context, bookingID string) ([]models.BookingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE booking_id = $1 ORDER BY day_number ASC, created_at ASC", sessionColumns)
	var sessions []models.BookingSession
	if err := r.db.SelectContext(ctx, &sessions, query, bookingID); err != nil {
		return nil, fmt.Errorf("list sessions by booking: %w", err)
	}
	return sessions, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.BookingSession, error) {
	var session models.BookingSession
	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE id = $1", sessionColumns)
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateAttendance marks a session's attendance outcome.
func (r *SessionRepository) UpdateAttendance(ctx context.Context, id string, status models.SessionStatus, attended bool, instructorNotes *string) error {
	now := time.Now().UTC()
	const query = `UPDATE booking_sessions SET status = $1, attended = $2, instructor_notes = COALESCE($3, instructor_notes), updated_at = $4 WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, status, attended, instructorNotes, now, id); err != nil {
		return fmt.Errorf("update session attendance: %w", err)
	}
	return nil
}

// ApplyAmendment executes an amendment plan atomically: every
// cancellation lands before any creation, all inside one transaction.
func (r *SessionRepository) ApplyAmendment(ctx context.Context, plan *scheduling.AmendmentPlan) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin amendment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const cancelQuery = `UPDATE booking_sessions SET status = $1, deleted_at = $2, internal_notes = CONCAT_WS(E'\n', internal_notes, $3::text), updated_at = $4 WHERE id = $5`
	now := time.Now().UTC()
	for _, c := range plan.Cancellations {
		if _, err = tx.ExecContext(ctx, cancelQuery, models.SessionStatusCancelled, c.DeletedAt, c.NoteAppend, now, c.SessionID); err != nil {
			return fmt.Errorf("cancel session %s: %w", c.SessionID, err)
		}
	}

	for _, c := range plan.Creations {
		notes := c.InternalNotes
		session := models.BookingSession{
			BookingID:     c.BookingID,
			DayNumber:     c.DayNumber,
			SessionDate:   c.SessionDate,
			Slot:          string(c.Slot),
			CarID:         c.CarID,
			DriverID:      c.DriverID,
			Status:        models.SessionStatusPending,
			InternalNotes: &notes,
		}
		if err = insertSession(ctx, tx, &session); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit amendment: %w", err)
	}
	return nil
}
