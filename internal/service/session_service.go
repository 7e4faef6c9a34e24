package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type sessionRepository interface {
	ListByCarAndDate(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error)
	FindByID(ctx context.Context, id string) (*models.BookingSession, error)
	UpdateAttendance(ctx context.Context, id string, status models.SessionStatus, attended bool, instructorNotes *string) error
}

// SessionService exposes the day sheet and attendance marking.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// DaySheet lists a car's sessions on a date, cancelled ones included.
func (s *SessionService) DaySheet(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error) {
	sessions, err := s.repo.ListByCarAndDate(ctx, carID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day sheet")
	}
	return sessions, nil
}

// MarkAttendance records the outcome of a session.
func (s *SessionService) MarkAttendance(ctx context.Context, id string, req dto.UpdateAttendanceRequest) (*models.BookingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Status == models.SessionStatusCancelled || session.DeletedAt != nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cancelled sessions cannot be marked")
	}

	status := models.SessionStatus(req.Status)
	if err := s.repo.UpdateAttendance(ctx, id, status, req.Attended, req.InstructorNotes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload session")
	}
	return updated, nil
}
