package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type schoolRepository interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
	Upsert(ctx context.Context, profile *models.SchoolProfile) error
}

var weekdayNames = map[string]struct{}{
	"MONDAY": {}, "TUESDAY": {}, "WEDNESDAY": {}, "THURSDAY": {},
	"FRIDAY": {}, "SATURDAY": {}, "SUNDAY": {},
}

// SchoolService manages the single school profile that drives slot
// generation.
type SchoolService struct {
	repo         schoolRepository
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewSchoolService constructs a SchoolService.
func NewSchoolService(repo schoolRepository, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{repo: repo, availability: availability, validator: validate, logger: logger}
}

// Get returns the current school profile.
func (s *SchoolService) Get(ctx context.Context) (*models.SchoolProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school profile is not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	return profile, nil
}

// Slots returns the slot grid derived from the current profile.
func (s *SchoolService) Slots(ctx context.Context) ([]string, error) {
	profile, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := generateProfileSlots(profile)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "school operating hours are invalid")
	}
	return slotStrings(slots), nil
}

// Update replaces the calendar configuration. The new hours must produce
// at least one slot before they are accepted.
func (s *SchoolService) Update(ctx context.Context, req dto.UpdateSchoolProfileRequest) (*models.SchoolProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school profile payload")
	}

	lunchStart, lunchEnd := "", ""
	if req.LunchStartTime != nil {
		lunchStart = *req.LunchStartTime
	}
	if req.LunchEndTime != nil {
		lunchEnd = *req.LunchEndTime
	}
	slots, err := scheduling.GenerateSlots(req.DayStartTime, req.DayEndTime, lunchStart, lunchEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "operating hours are invalid")
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "operating hours produce no bookable slots")
	}
	if lunchStart != "" && lunchEnd != "" {
		// GenerateSlots already parsed all four values.
		dayFrom, _ := scheduling.ClockMinutes(req.DayStartTime)
		dayTo, _ := scheduling.ClockMinutes(req.DayEndTime)
		lunchFrom, _ := scheduling.ClockMinutes(lunchStart)
		lunchTo, _ := scheduling.ClockMinutes(lunchEnd)
		if lunchFrom < dayFrom || lunchTo > dayTo {
			return nil, appErrors.Clone(appErrors.ErrValidation, "lunch break must fall within operating hours")
		}
	}

	if req.WeeklyHoliday != nil && *req.WeeklyHoliday != "" {
		if _, ok := weekdayNames[strings.ToUpper(*req.WeeklyHoliday)]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "weekly_holiday must be a weekday name")
		}
	}

	profile := &models.SchoolProfile{
		Name:           req.Name,
		DayStartTime:   req.DayStartTime,
		DayEndTime:     req.DayEndTime,
		LunchStartTime: req.LunchStartTime,
		LunchEndTime:   req.LunchEndTime,
		WeeklyHoliday:  req.WeeklyHoliday,
	}
	if existing, err := s.repo.Get(ctx); err == nil {
		profile.ID = existing.ID
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store school profile")
	}

	if s.availability != nil {
		s.availability.InvalidateAll(ctx)
	}

	s.logger.Info("school profile updated", zap.String("profile_id", profile.ID), zap.Int("slots", len(slots)))
	return profile, nil
}
