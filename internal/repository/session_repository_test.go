package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "booking_id", "day_number", "session_date", "slot", "car_id", "driver_id", "status", "attended", "deleted_at", "instructor_notes", "internal_notes", "created_at", "updated_at"})
}

func TestSessionRepositoryListByCarAndDate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	rows := sessionRows().
		AddRow("sess-1", "book-1", 1, date, "10:00-11:00", "car-5", "drv-1", models.SessionStatusConfirmed, false, nil, nil, nil, time.Now(), time.Now()).
		AddRow("sess-2", "book-2", 3, date, "14:00-15:00", "car-5", "drv-1", models.SessionStatusCancelled, false, nil, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, booking_id, day_number, session_date, slot, car_id, driver_id, status, attended, deleted_at, instructor_notes, internal_notes, created_at, updated_at FROM booking_sessions WHERE car_id = $1 AND session_date = $2 ORDER BY slot ASC")).
		WithArgs("car-5", "2025-11-03").
		WillReturnRows(rows)

	sessions, err := repo.ListByCarAndDate(context.Background(), "car-5", date)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, models.SessionStatusCancelled, sessions[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryApplyAmendmentCancelsBeforeCreating(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	deletedAt := time.Date(2025, 11, 1, 9, 30, 0, 0, time.UTC)
	plan := &scheduling.AmendmentPlan{
		Cancellations: []scheduling.SessionCancellation{
			{SessionID: "sess-1", DeletedAt: deletedAt, NoteAppend: "CHANGE_DATE: customer request"},
		},
		Creations: []scheduling.SessionCreation{
			{
				BookingID:     "book-1",
				DayNumber:     2,
				SessionDate:   time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC),
				Slot:          "10:00-11:00",
				CarID:         "car-5",
				DriverID:      "drv-1",
				InternalNotes: "rescheduled from 2025-11-04",
			},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE booking_sessions SET status = $1")).
		WithArgs(models.SessionStatusCancelled, deletedAt, "CHANGE_DATE: customer request", sqlmock.AnyArg(), "sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_sessions")).
		WithArgs(sqlmock.AnyArg(), "book-1", 2, sqlmock.AnyArg(), "10:00-11:00", "car-5", "drv-1", models.SessionStatusPending, false, nil, "rescheduled from 2025-11-04", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyAmendment(context.Background(), plan))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryApplyAmendmentRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	plan := &scheduling.AmendmentPlan{
		Cancellations: []scheduling.SessionCancellation{
			{SessionID: "sess-1", DeletedAt: time.Now().UTC(), NoteAppend: "CANCEL_BOOKING: refund"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE booking_sessions SET status = $1")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ApplyAmendment(context.Background(), plan)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateAttendance(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	notes := "covered parallel parking"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE booking_sessions SET status = $1, attended = $2, instructor_notes = COALESCE($3, instructor_notes)")).
		WithArgs(models.SessionStatusCompleted, true, notes, sqlmock.AnyArg(), "sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateAttendance(context.Background(), "sess-1", models.SessionStatusCompleted, true, &notes))
	assert.NoError(t, mock.ExpectationsWereMet())
}
