package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/service"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

type stubSessions struct{}

func (stubSessions) ListByCarAndDate(ctx context.Context, carID string, date time.Time) ([]models.BookingSession, error) {
	return nil, nil
}

type stubHolidays struct{}

func (stubHolidays) ListActiveForDate(ctx context.Context, date time.Time) ([]models.HolidayDeclaration, error) {
	return nil, nil
}

type stubSchool struct{}

func (stubSchool) Get(ctx context.Context) (*models.SchoolProfile, error) {
	weekly := "SUNDAY"
	lunchStart := "12:00"
	lunchEnd := "13:00"
	return &models.SchoolProfile{
		ID:             "profile-1",
		DayStartTime:   "10:00",
		DayEndTime:     "14:00",
		LunchStartTime: &lunchStart,
		LunchEndTime:   &lunchEnd,
		WeeklyHoliday:  &weekly,
	}, nil
}

type stubCars struct{}

func (stubCars) FindByID(ctx context.Context, id string) (*models.Car, error) {
	if id != "car-1" {
		return nil, sql.ErrNoRows
	}
	return &models.Car{ID: "car-1", Active: true}, nil
}

func (stubCars) List(ctx context.Context, filter models.CarFilter) ([]models.Car, int, error) {
	return []models.Car{{ID: "car-1", Active: true}}, 1, nil
}

func newAvailabilityTestService() *service.AvailabilityService {
	return service.NewAvailabilityService(
		stubSessions{},
		stubHolidays{},
		stubSchool{},
		stubCars{},
		nil,
		service.AvailabilityCacheConfig{},
		zap.NewNop(),
	)
}

func TestAvailabilityHandlerRequiresCarID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newAvailabilityTestService())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/availability?date=2025-11-03", nil)
	c.Request = req

	handler.Slots(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerRejectsInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newAvailabilityTestService())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/availability?carId=car-1&date=bad", nil)
	c.Request = req

	handler.Slots(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerReturnsSlots(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newAvailabilityTestService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	// A Monday far in the future so no slot is trimmed as past.
	req, _ := http.NewRequest(http.MethodGet, "/availability?carId=car-1&date=2030-11-04", nil)
	c.Request = req

	handler.Slots(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	require.NotNil(t, envelope.Meta)
	require.Equal(t, false, envelope.Meta["cache_hit"])
	require.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestAvailabilityHandlerUnknownCar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(newAvailabilityTestService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/availability?carId=car-404&date=2030-11-04", nil)
	c.Request = req

	handler.Slots(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
