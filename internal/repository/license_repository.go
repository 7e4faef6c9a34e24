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

// LicenseRepository provides persistence for license applications.
type LicenseRepository struct {
	db *sqlx.DB
}

// NewLicenseRepository creates a new license repository.
func NewLicenseRepository(db *sqlx.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

const licenseColumns = "id, customer_id, license_type, stage, test_date, remarks, created_at, updated_at"

// List returns license applications with optional filtering.
func (r *LicenseRepository) List(ctx context.Context, filter models.LicenseFilter) ([]models.LicenseApplication, int, error) {
	base := "FROM license_applications WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CustomerID != "" {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)+1))
		args = append(args, filter.CustomerID)
	}
	if filter.Stage != "" {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", len(args)+1))
		args = append(args, filter.Stage)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", licenseColumns, base, size, (page-1)*size)
	var apps []models.LicenseApplication
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list license applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count license applications: %w", err)
	}
	return apps, total, nil
}

// FindByID loads a license application by id.
func (r *LicenseRepository) FindByID(ctx context.Context, id string) (*models.LicenseApplication, error) {
	var app models.LicenseApplication
	query := fmt.Sprintf("SELECT %s FROM license_applications WHERE id = $1", licenseColumns)
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// Create stores a new license application.
func (r *LicenseRepository) Create(ctx context.Context, app *models.LicenseApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	const query = `INSERT INTO license_applications (id, customer_id, license_type, stage, test_date, remarks, created_at, updated_at) VALUES (:id, :customer_id, :license_type, :stage, :test_date, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create license application: %w", err)
	}
	return nil
}

// Update modifies a license application.
func (r *LicenseRepository) Update(ctx context.Context, app *models.LicenseApplication) error {
	app.UpdatedAt = time.Now().UTC()
	const query = `UPDATE license_applications SET stage = :stage, test_date = :test_date, remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("update license application: %w", err)
	}
	return nil
}
