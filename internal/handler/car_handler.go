package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// CarHandler exposes car fleet endpoints.
type CarHandler struct {
	cars *service.CarService
}

// NewCarHandler constructs CarHandler.
func NewCarHandler(cars *service.CarService) *CarHandler {
	return &CarHandler{cars: cars}
}

// List godoc
// @Summary List cars
// @Tags Cars
// @Produce json
// @Param search query string false "Search by name or registration"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /cars [get]
func (h *CarHandler) List(c *gin.Context) {
	var filter models.CarFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Active = boolQuery(c, "active")
	filter.Page, filter.PageSize = pageParams(c)

	cars, pagination, err := h.cars.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cars, pagination)
}

// Get godoc
// @Summary Get car detail
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} response.Envelope
// @Router /cars/{id} [get]
func (h *CarHandler) Get(c *gin.Context) {
	car, err := h.cars.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, car, nil)
}

// Create godoc
// @Summary Create car
// @Tags Cars
// @Accept json
// @Produce json
// @Param payload body service.SaveCarRequest true "Car payload"
// @Success 201 {object} response.Envelope
// @Router /cars [post]
func (h *CarHandler) Create(c *gin.Context) {
	var req service.SaveCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	car, err := h.cars.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, car)
}

// Update godoc
// @Summary Update car
// @Tags Cars
// @Accept json
// @Produce json
// @Param id path string true "Car ID"
// @Param payload body service.SaveCarRequest true "Car payload"
// @Success 200 {object} response.Envelope
// @Router /cars/{id} [put]
func (h *CarHandler) Update(c *gin.Context) {
	var req service.SaveCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	car, err := h.cars.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, car, nil)
}

// Delete godoc
// @Summary Retire car
// @Tags Cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 204 {object} response.Envelope
// @Router /cars/{id} [delete]
func (h *CarHandler) Delete(c *gin.Context) {
	if err := h.cars.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
