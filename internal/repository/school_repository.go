package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/drivedesk/drivedesk-api/internal/models"
)

// SchoolRepository persists the single school profile row.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository creates a new school repository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Get loads the school profile. The table holds exactly one row.
func (r *SchoolRepository) Get(ctx context.Context) (*models.SchoolProfile, error) {
	var profile models.SchoolProfile
	const query = `SELECT id, name, day_start_time, day_end_time, lunch_start_time, lunch_end_time, weekly_holiday, created_at, updated_at FROM school_profile LIMIT 1`
	if err := r.db.GetContext(ctx, &profile, query); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates or replaces the school profile.
func (r *SchoolRepository) Upsert(ctx context.Context, profile *models.SchoolProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const query = `INSERT INTO school_profile (id, name, day_start_time, day_end_time, lunch_start_time, lunch_end_time, weekly_holiday, created_at, updated_at)
		VALUES (:id, :name, :day_start_time, :day_end_time, :lunch_start_time, :lunch_end_time, :weekly_holiday, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, day_start_time = EXCLUDED.day_start_time, day_end_time = EXCLUDED.day_end_time, lunch_start_time = EXCLUDED.lunch_start_time, lunch_end_time = EXCLUDED.lunch_end_time, weekly_holiday = EXCLUDED.weekly_holiday, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert school profile: %w", err)
	}
	return nil
}
