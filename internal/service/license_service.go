package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/models"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type licenseRepository interface {
	List(ctx context.Context, filter models.LicenseFilter) ([]models.LicenseApplication, int, error)
	FindByID(ctx context.Context, id string) (*models.LicenseApplication, error)
	Create(ctx context.Context, app *models.LicenseApplication) error
	Update(ctx context.Context, app *models.LicenseApplication) error
}

// CreateLicenseApplicationRequest opens a new application.
type CreateLicenseApplicationRequest struct {
	CustomerID  string `json:"customer_id" validate:"required"`
	LicenseType string `json:"license_type" validate:"required"`
	Remarks     string `json:"remarks"`
}

// AdvanceLicenseStageRequest moves an application to its next stage.
type AdvanceLicenseStageRequest struct {
	Stage    string  `json:"stage" validate:"required"`
	TestDate *string `json:"test_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Remarks  string  `json:"remarks"`
}

// LicenseService tracks driving-license applications through their
// forward-only stage graph.
type LicenseService struct {
	repo      licenseRepository
	customers customerReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLicenseService constructs a LicenseService.
func NewLicenseService(repo licenseRepository, customers customerReader, validate *validator.Validate, logger *zap.Logger) *LicenseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LicenseService{repo: repo, customers: customers, validator: validate, logger: logger}
}

// List returns applications with pagination metadata.
func (s *LicenseService) List(ctx context.Context, filter models.LicenseFilter) ([]models.LicenseApplication, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list license applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads an application by id.
func (s *LicenseService) Get(ctx context.Context, id string) (*models.LicenseApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "license application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load license application")
	}
	return app, nil
}

// Create opens an application at the APPLIED stage.
func (s *LicenseService) Create(ctx context.Context, req CreateLicenseApplicationRequest) (*models.LicenseApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid license application payload")
	}
	if _, err := s.customers.FindByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "customer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load customer")
	}

	app := &models.LicenseApplication{
		CustomerID:  req.CustomerID,
		LicenseType: req.LicenseType,
		Stage:       models.LicenseStageApplied,
		Remarks:     req.Remarks,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store license application")
	}
	return app, nil
}

// AdvanceStage moves an application along the allowed transitions.
func (s *LicenseService) AdvanceStage(ctx context.Context, id string, req AdvanceLicenseStageRequest) (*models.LicenseApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := models.LicenseStage(req.Stage)
	if !app.Stage.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "stage transition "+string(app.Stage)+" -> "+string(next)+" is not allowed")
	}
	if next == models.LicenseStageTestScheduled && req.TestDate == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduling a test requires a test_date")
	}

	if req.TestDate != nil {
		testDate, err := time.ParseInLocation("2006-01-02", *req.TestDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "test_date must be formatted YYYY-MM-DD")
		}
		app.TestDate = &testDate
	}

	app.Stage = next
	if req.Remarks != "" {
		app.Remarks = req.Remarks
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update license application")
	}

	s.logger.Info("license application advanced",
		zap.String("application_id", app.ID),
		zap.String("stage", string(next)))
	return app, nil
}
