package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
)

type holidayFixture struct {
	svc         *HolidayService
	repo        *stubHolidayRepo
	invalidator *stubInvalidator
}

func newHolidayFixture() *holidayFixture {
	repo := &stubHolidayRepo{}
	cars := &stubCarReader{cars: map[string]models.Car{
		"car-1": {ID: "car-1", Active: true},
	}}
	school := &stubSchoolReader{profile: testProfile()}
	invalidator := &stubInvalidator{}
	svc := NewHolidayService(repo, cars, school, invalidator, nil, zap.NewNop())
	return &holidayFixture{svc: svc, repo: repo, invalidator: invalidator}
}

func TestHolidayServiceDeclareAllCars(t *testing.T) {
	f := newHolidayFixture()

	holiday, err := f.svc.Declare(context.Background(), dto.DeclareHolidayRequest{
		DeclarationType: "ALL_CARS_MULTIPLE_DATES",
		StartDate:       "2025-12-25",
		EndDate:         "2025-12-26",
		Reason:          "christmas break",
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "hol-new", holiday.ID)
	require.NotNil(t, holiday.CreatedBy)
	assert.Equal(t, "user-1", *holiday.CreatedBy)
	assert.Equal(t, 1, f.invalidator.invalidatedAll)
	assert.Empty(t, f.invalidator.invalidatedCars)
}

func TestHolidayServiceDeclareCarSlots(t *testing.T) {
	f := newHolidayFixture()
	carID := "car-1"

	holiday, err := f.svc.Declare(context.Background(), dto.DeclareHolidayRequest{
		DeclarationType: "ONE_CAR_PARTICULAR_SLOTS",
		StartDate:       "2025-12-01",
		EndDate:         "2025-12-01",
		CarID:           &carID,
		Slots:           []string{"10:00-11:00", "11:00-12:00"},
		Reason:          "maintenance",
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.HolidayOneCarParticularSlots, holiday.DeclarationType)
	assert.Equal(t, []string{"car-1"}, f.invalidator.invalidatedCars)
	assert.Zero(t, f.invalidator.invalidatedAll)
}

func TestHolidayServiceDeclareRejectsOffGridSlot(t *testing.T) {
	f := newHolidayFixture()
	carID := "car-1"

	// 13:00-14:00 is the lunch break and never appears on the grid.
	_, err := f.svc.Declare(context.Background(), dto.DeclareHolidayRequest{
		DeclarationType: "ONE_CAR_PARTICULAR_SLOTS",
		StartDate:       "2025-12-01",
		EndDate:         "2025-12-01",
		CarID:           &carID,
		Slots:           []string{"13:00-14:00"},
		Reason:          "maintenance",
	}, "user-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, f.repo.created)
}

func TestHolidayServiceDeclareRejectsCarOnAllCarsType(t *testing.T) {
	f := newHolidayFixture()
	carID := "car-1"

	_, err := f.svc.Declare(context.Background(), dto.DeclareHolidayRequest{
		DeclarationType: "ALL_CARS_MULTIPLE_DATES",
		StartDate:       "2025-12-01",
		EndDate:         "2025-12-02",
		CarID:           &carID,
		Reason:          "typo",
	}, "user-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestHolidayServiceDeclareUnknownCar(t *testing.T) {
	f := newHolidayFixture()
	carID := "car-404"

	_, err := f.svc.Declare(context.Background(), dto.DeclareHolidayRequest{
		DeclarationType: "ONE_CAR_MULTIPLE_DATES",
		StartDate:       "2025-12-01",
		EndDate:         "2025-12-02",
		CarID:           &carID,
		Reason:          "service",
	}, "user-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestHolidayServiceDeclareInvertedRange(t *testing.T) {
	f := newHolidayFixture()

	_, err := f.svc.Declare(context.Background(), dto.DeclareHolidayRequest{
		DeclarationType: "ALL_CARS_MULTIPLE_DATES",
		StartDate:       "2025-12-10",
		EndDate:         "2025-12-09",
		Reason:          "bad range",
	}, "user-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
