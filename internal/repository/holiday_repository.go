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

// HolidayRepository provides persistence for holiday declarations.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository creates a new holiday repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

const holidayColumns = "id, declaration_type, start_date, end_date, car_id, slots, reason, created_by, created_at"

// ListActiveForDate returns declarations whose range covers the date.
func (r *HolidayRepository) ListActiveForDate(ctx context.Context, date time.Time) ([]models.HolidayDeclaration, error) {
	query := fmt.Sprintf("SELECT %s FROM holiday_declarations WHERE start_date <= $1 AND end_date >= $1 ORDER BY start_date ASC", holidayColumns)
	var holidays []models.HolidayDeclaration
	if err := r.db.SelectContext(ctx, &holidays, query, date.UTC().Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list holidays for date: %w", err)
	}
	return holidays, nil
}

// ListFromDate returns declarations that end on or after the date.
func (r *HolidayRepository) ListFromDate(ctx context.Context, from time.Time) ([]models.HolidayDeclaration, error) {
	query := fmt.Sprintf("SELECT %s FROM holiday_declarations WHERE end_date >= $1 ORDER BY start_date ASC", holidayColumns)
	var holidays []models.HolidayDeclaration
	if err := r.db.SelectContext(ctx, &holidays, query, from.UTC().Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list holidays from date: %w", err)
	}
	return holidays, nil
}

// List returns declarations with optional filtering and pagination.
func (r *HolidayRepository) List(ctx context.Context, filter models.HolidayFilter) ([]models.HolidayDeclaration, int, error) {
	base := "FROM holiday_declarations WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CarID != "" {
		conditions = append(conditions, fmt.Sprintf("car_id = $%d", len(args)+1))
		args = append(args, filter.CarID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, filter.From.UTC().Format("2006-01-02"))
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, filter.To.UTC().Format("2006-01-02"))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date DESC LIMIT %d OFFSET %d", holidayColumns, base, size, (page-1)*size)
	var holidays []models.HolidayDeclaration
	if err := r.db.SelectContext(ctx, &holidays, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list holidays: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count holidays: %w", err)
	}
	return holidays, total, nil
}

// Create stores a new holiday declaration. Declarations are immutable.
func (r *HolidayRepository) Create(ctx context.Context, holiday *models.HolidayDeclaration) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	holiday.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO holiday_declarations (id, declaration_type, start_date, end_date, car_id, slots, reason, created_by, created_at) VALUES (:id, :declaration_type, :start_date, :end_date, :car_id, :slots, :reason, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, holiday); err != nil {
		return fmt.Errorf("create holiday declaration: %w", err)
	}
	return nil
}
