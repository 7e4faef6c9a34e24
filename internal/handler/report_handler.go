package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/scheduling"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// ReportHandler exposes report export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DaySheet godoc
// @Summary Day sheet PDF for all active cars
// @Tags Reports
// @Produce application/pdf
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/day-sheet [get]
func (h *ReportHandler) DaySheet(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil || date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}

	pdf, err := h.reports.DaySheetPDF(c.Request.Context(), *date)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("day-sheet-%s.pdf", scheduling.DateKey(*date))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "application/pdf", pdf)
}

// PaymentsCSV godoc
// @Summary Payments export as CSV
// @Tags Reports
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /reports/payments [get]
func (h *ReportHandler) PaymentsCSV(c *gin.Context) {
	var filter models.PaymentFilter
	filter.Status = c.Query("status")
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

	csv, err := h.reports.PaymentsCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=payments.csv")
	c.Data(200, "text/csv", csv)
}
