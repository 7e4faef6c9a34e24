package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/middleware"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// AvailabilityHandler exposes the slot availability endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Slots godoc
// @Summary Available slots for one car on a date
// @Tags Availability
// @Produce json
// @Param carId query string true "Car ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	carID := c.Query("carId")
	if carID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "carId is required"))
		return
	}
	date, err := dateQuery(c, "date")
	if err != nil || date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}

	start := time.Now()
	day, cacheHit, err := h.availability.SlotsForCar(c.Request.Context(), carID, *date, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, day, nil, meta)
}

// Grid godoc
// @Summary Availability for every active car on a date
// @Tags Availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /availability/grid [get]
func (h *AvailabilityHandler) Grid(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil || date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}

	start := time.Now()
	days, cacheHit, err := h.availability.GridForDate(c.Request.Context(), *date, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, days, nil, meta)
}
