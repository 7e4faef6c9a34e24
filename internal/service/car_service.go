package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/models"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type carRepository interface {
	List(ctx context.Context, filter models.CarFilter) ([]models.Car, int, error)
	FindByID(ctx context.Context, id string) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id string) error
}

type driverReader interface {
	FindByID(ctx context.Context, id string) (*models.Driver, error)
}

// SaveCarRequest is the payload for creating or updating a car.
type SaveCarRequest struct {
	RegistrationNo string  `json:"registration_no" validate:"required"`
	Model          string  `json:"model" validate:"required"`
	Transmission   string  `json:"transmission" validate:"required,oneof=MANUAL AUTOMATIC"`
	DriverID       *string `json:"driver_id,omitempty"`
	Active         bool    `json:"active"`
}

// CarService manages the training fleet.
type CarService struct {
	repo         carRepository
	drivers      driverReader
	availability availabilityInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewCarService constructs a CarService.
func NewCarService(repo carRepository, drivers driverReader, availability availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *CarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CarService{repo: repo, drivers: drivers, availability: availability, validator: validate, logger: logger}
}

// List returns cars with pagination metadata.
func (s *CarService) List(ctx context.Context, filter models.CarFilter) ([]models.Car, *models.Pagination, error) {
	cars, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cars")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return cars, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a car by id.
func (s *CarService) Get(ctx context.Context, id string) (*models.Car, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "car not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load car")
	}
	return car, nil
}

// Create registers a new car.
func (s *CarService) Create(ctx context.Context, req SaveCarRequest) (*models.Car, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid car payload")
	}
	if err := s.checkDriver(ctx, req.DriverID); err != nil {
		return nil, err
	}

	car := &models.Car{
		RegistrationNo: req.RegistrationNo,
		Model:          req.Model,
		Transmission:   req.Transmission,
		DriverID:       req.DriverID,
		Active:         req.Active,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create car")
	}
	return car, nil
}

// Update modifies a car. Deactivating a car does not touch its existing
// sessions; those are handled through amendments.
func (s *CarService) Update(ctx context.Context, id string, req SaveCarRequest) (*models.Car, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid car payload")
	}
	car, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDriver(ctx, req.DriverID); err != nil {
		return nil, err
	}

	car.RegistrationNo = req.RegistrationNo
	car.Model = req.Model
	car.Transmission = req.Transmission
	car.DriverID = req.DriverID
	car.Active = req.Active

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update car")
	}
	if s.availability != nil {
		s.availability.InvalidateCar(ctx, id)
	}
	return car, nil
}

// Delete removes a car from the fleet.
func (s *CarService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete car")
	}
	if s.availability != nil {
		s.availability.InvalidateCar(ctx, id)
	}
	return nil
}

func (s *CarService) checkDriver(ctx context.Context, driverID *string) error {
	if driverID == nil || *driverID == "" {
		return nil
	}
	driver, err := s.drivers.FindByID(ctx, *driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	if !driver.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "driver is not active")
	}
	return nil
}
