package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// HolidayHandler exposes holiday declaration endpoints.
type HolidayHandler struct {
	holidays *service.HolidayService
	metrics  *service.MetricsService
}

// NewHolidayHandler constructs HolidayHandler.
func NewHolidayHandler(holidays *service.HolidayService, metrics *service.MetricsService) *HolidayHandler {
	return &HolidayHandler{holidays: holidays, metrics: metrics}
}

// List godoc
// @Summary List holiday declarations
// @Tags Holidays
// @Produce json
// @Param carId query string false "Filter by car"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *HolidayHandler) List(c *gin.Context) {
	var filter models.HolidayFilter
	filter.CarID = c.Query("carId")
	from, err := dateQuery(c, "from")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD"))
		return
	}
	filter.From = from
	to, err := dateQuery(c, "to")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD"))
		return
	}
	filter.To = to
	filter.Page, filter.PageSize = pageParams(c)

	holidays, pagination, err := h.holidays.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, holidays, pagination)
}

// Declare godoc
// @Summary Declare a holiday
// @Description Block whole days or particular slots for all cars or one car
// @Tags Holidays
// @Accept json
// @Produce json
// @Param payload body dto.DeclareHolidayRequest true "Holiday payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /holidays [post]
func (h *HolidayHandler) Declare(c *gin.Context) {
	var req dto.DeclareHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid holiday payload"))
		return
	}

	createdBy := ""
	if claims := claimsFromContext(c); claims != nil {
		createdBy = claims.UserID
	}

	holiday, err := h.holidays.Declare(c.Request.Context(), req, createdBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordHolidayDeclared()
	response.Created(c, holiday)
}
