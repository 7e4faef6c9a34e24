package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/models"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// LicenseHandler exposes license application endpoints.
type LicenseHandler struct {
	licenses *service.LicenseService
}

// NewLicenseHandler constructs LicenseHandler.
func NewLicenseHandler(licenses *service.LicenseService) *LicenseHandler {
	return &LicenseHandler{licenses: licenses}
}

// List godoc
// @Summary List license applications
// @Tags Licenses
// @Produce json
// @Param customerId query string false "Filter by customer"
// @Param stage query string false "Filter by stage"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	var filter models.LicenseFilter
	filter.CustomerID = c.Query("customerId")
	filter.Stage = c.Query("stage")
	filter.Page, filter.PageSize = pageParams(c)

	licenses, pagination, err := h.licenses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, licenses, pagination)
}

// Get godoc
// @Summary Get license application detail
// @Tags Licenses
// @Produce json
// @Param id path string true "License application ID"
// @Success 200 {object} response.Envelope
// @Router /licenses/{id} [get]
func (h *LicenseHandler) Get(c *gin.Context) {
	license, err := h.licenses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}

// Create godoc
// @Summary Open a license application
// @Tags Licenses
// @Accept json
// @Produce json
// @Param payload body service.CreateLicenseApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /licenses [post]
func (h *LicenseHandler) Create(c *gin.Context) {
	var req service.CreateLicenseApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	license, err := h.licenses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, license)
}

// AdvanceStage godoc
// @Summary Advance a license application to its next stage
// @Tags Licenses
// @Accept json
// @Produce json
// @Param id path string true "License application ID"
// @Param payload body service.AdvanceLicenseStageRequest true "Stage payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /licenses/{id}/stage [patch]
func (h *LicenseHandler) AdvanceStage(c *gin.Context) {
	var req service.AdvanceLicenseStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	license, err := h.licenses.AdvanceStage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, license, nil)
}
