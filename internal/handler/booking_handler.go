package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// BookingHandler exposes booking and amendment endpoints.
type BookingHandler struct {
	bookings   *service.BookingService
	amendments *service.AmendmentService
	metrics    *service.MetricsService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings *service.BookingService, amendments *service.AmendmentService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, amendments: amendments, metrics: metrics}
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param customerId query string false "Filter by customer"
// @Param carId query string false "Filter by car"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var filter models.BookingFilter
	filter.CustomerID = c.Query("customerId")
	filter.CarID = c.Query("carId")
	filter.Status = c.Query("status")
	filter.Page, filter.PageSize = pageParams(c)

	bookings, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get booking detail with sessions
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	detail, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create booking and materialize its sessions
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	detail, err := h.bookings.Create(c.Request.Context(), req, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordBookingCreated()
	response.Created(c, detail)
}

// Amend godoc
// @Summary Amend booking sessions
// @Description Cancel sessions, cancel the whole booking, or move session dates
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.AmendBookingRequest true "Amendment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/amendments [post]
func (h *BookingHandler) Amend(c *gin.Context) {
	var req dto.AmendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid amendment payload"))
		return
	}

	result, err := h.amendments.Amend(c.Request.Context(), c.Param("id"), req, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordAmendmentApplied(req.Action)
	response.JSON(c, http.StatusOK, result, nil)
}

// Complete godoc
// @Summary Mark booking completed
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	if err := h.bookings.Complete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
