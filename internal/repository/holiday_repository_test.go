package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

func newHolidayRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestHolidayRepositoryListActiveForDate(t *testing.T) {
	db, mock, cleanup := newHolidayRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	rows := sqlmock.NewRows([]string{"id", "declaration_type", "start_date", "end_date", "car_id", "slots", "reason", "created_by", "created_at"}).
		AddRow("hol-1", models.HolidayAllCarsMultipleDates, time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC), nil, "{}", "winter closure", "user-1", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM holiday_declarations WHERE start_date <= $1 AND end_date >= $1")).
		WithArgs("2025-12-25").
		WillReturnRows(rows)

	holidays, err := repo.ListActiveForDate(context.Background(), time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, models.HolidayAllCarsMultipleDates, holidays[0].DeclarationType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryListWithCarFilter(t *testing.T) {
	db, mock, cleanup := newHolidayRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	rows := sqlmock.NewRows([]string{"id", "declaration_type", "start_date", "end_date", "car_id", "slots", "reason", "created_by", "created_at"}).
		AddRow("hol-2", models.HolidayOneCarParticularSlots, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), "car-3", `{"10:00-11:00"}`, "maintenance", "user-1", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM holiday_declarations WHERE 1=1 AND car_id = $1")).
		WithArgs("car-3").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM holiday_declarations WHERE 1=1 AND car_id = $1")).
		WithArgs("car-3").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	holidays, total, err := repo.List(context.Background(), models.HolidayFilter{CarID: "car-3"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, holidays, 1)
	assert.Equal(t, pq.StringArray{"10:00-11:00"}, holidays[0].Slots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newHolidayRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	carID := "car-3"
	createdBy := "user-1"
	holiday := &models.HolidayDeclaration{
		DeclarationType: models.HolidayOneCarMultipleDates,
		StartDate:       time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC),
		CarID:           &carID,
		Reason:          "breakdown",
		CreatedBy:       &createdBy,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO holiday_declarations")).
		WithArgs(sqlmock.AnyArg(), models.HolidayOneCarMultipleDates, sqlmock.AnyArg(), sqlmock.AnyArg(), carID, sqlmock.AnyArg(), "breakdown", "user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), holiday))
	assert.NotEmpty(t, holiday.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
