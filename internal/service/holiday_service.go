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

type holidayRepository interface {
	List(ctx context.Context, filter models.HolidayFilter) ([]models.HolidayDeclaration, int, error)
	Create(ctx context.Context, holiday *models.HolidayDeclaration) error
}

// HolidayService manages holiday declarations. Declarations are
// append-only; amending affected bookings is a separate operation.
type HolidayService struct {
	repo         holidayRepository
	cars         carReader
	school       schoolReader
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewHolidayService constructs a HolidayService.
func NewHolidayService(repo holidayRepository, cars carReader, school schoolReader, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{repo: repo, cars: cars, school: school, availability: availability, validator: validate, logger: logger}
}

// List returns holiday declarations with pagination metadata.
func (s *HolidayService) List(ctx context.Context, filter models.HolidayFilter) ([]models.HolidayDeclaration, *models.Pagination, error) {
	holidays, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holiday declarations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return holidays, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Declare validates and stores a new holiday declaration.
func (s *HolidayService) Declare(ctx context.Context, req dto.DeclareHolidayRequest, createdBy string) (*models.HolidayDeclaration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}

	declType := models.HolidayType(req.DeclarationType)
	if !declType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown declaration type")
	}

	startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be formatted YYYY-MM-DD")
	}
	endDate, err := time.ParseInLocation("2006-01-02", req.EndDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be formatted YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	if declType.CarScoped() {
		if req.CarID == nil || *req.CarID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "declaration type requires a car_id")
		}
		if _, err := s.cars.FindByID(ctx, *req.CarID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "car not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load car")
		}
	} else if req.CarID != nil && *req.CarID != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "declaration type does not accept a car_id")
	}

	if declType.SlotScoped() {
		if len(req.Slots) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "declaration type requires at least one slot")
		}
		if err := s.checkSlotsOnGrid(ctx, req.Slots); err != nil {
			return nil, err
		}
	} else if len(req.Slots) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "declaration type does not accept slots")
	}

	holiday := &models.HolidayDeclaration{
		DeclarationType: declType,
		StartDate:       startDate,
		EndDate:         endDate,
		CarID:           req.CarID,
		Slots:           req.Slots,
		Reason:          req.Reason,
	}
	if createdBy != "" {
		holiday.CreatedBy = &createdBy
	}

	if err := s.repo.Create(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store holiday declaration")
	}

	if s.availability != nil {
		if declType.CarScoped() {
			s.availability.InvalidateCar(ctx, *req.CarID)
		} else {
			s.availability.InvalidateAll(ctx)
		}
	}

	s.logger.Info("holiday declared",
		zap.String("holiday_id", holiday.ID),
		zap.String("type", string(declType)),
		zap.String("from", req.StartDate),
		zap.String("to", req.EndDate))

	return holiday, nil
}

func (s *HolidayService) checkSlotsOnGrid(ctx context.Context, slots []string) error {
	profile, err := s.school.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "school profile is not configured")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	grid, err := generateProfileSlots(profile)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "school operating hours are invalid")
	}
	for _, slot := range slots {
		if !containsSlot(grid, slot) {
			return appErrors.Clone(appErrors.ErrValidation, "slot "+slot+" does not match the school's slot grid")
		}
	}
	return nil
}
