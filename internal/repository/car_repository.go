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

// CarRepository provides persistence for cars.
type CarRepository struct {
	db *sqlx.DB
}

// NewCarRepository creates a new car repository.
func NewCarRepository(db *sqlx.DB) *CarRepository {
	return &CarRepository{db: db}
}

const carColumns = "id, registration_no, model, transmission, driver_id, active, created_at, updated_at"

// List returns cars with optional filtering and pagination.
func (r *CarRepository) List(ctx context.Context, filter models.CarFilter) ([]models.Car, int, error) {
	base := "FROM cars WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(registration_no ILIKE $%d OR model ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY registration_no ASC LIMIT %d OFFSET %d", carColumns, base, size, (page-1)*size)
	var cars []models.Car
	if err := r.db.SelectContext(ctx, &cars, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list cars: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count cars: %w", err)
	}
	return cars, total, nil
}

// FindByID loads a car by id.
func (r *CarRepository) FindByID(ctx context.Context, id string) (*models.Car, error) {
	var car models.Car
	query := fmt.Sprintf("SELECT %s FROM cars WHERE id = $1", carColumns)
	if err := r.db.GetContext(ctx, &car, query, id); err != nil {
		return nil, err
	}
	return &car, nil
}

// Create stores a new car record.
func (r *CarRepository) Create(ctx context.Context, car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	car.CreatedAt = now
	car.UpdatedAt = now

	const query = `INSERT INTO cars (id, registration_no, model, transmission, driver_id, active, created_at, updated_at) VALUES (:id, :registration_no, :model, :transmission, :driver_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, car); err != nil {
		return fmt.Errorf("create car: %w", err)
	}
	return nil
}

// Update modifies a car record.
func (r *CarRepository) Update(ctx context.Context, car *models.Car) error {
	car.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cars SET registration_no = :registration_no, model = :model, transmission = :transmission, driver_id = :driver_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, car); err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	return nil
}

// Delete removes a car by id.
func (r *CarRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	return nil
}
