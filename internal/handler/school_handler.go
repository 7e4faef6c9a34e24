package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivedesk/drivedesk-api/internal/dto"
	"github.com/drivedesk/drivedesk-api/internal/service"
	appErrors "github.com/drivedesk/drivedesk-api/pkg/errors"
	"github.com/drivedesk/drivedesk-api/pkg/response"
)

// SchoolHandler exposes the school profile endpoints.
type SchoolHandler struct {
	school *service.SchoolService
}

// NewSchoolHandler constructs SchoolHandler.
func NewSchoolHandler(school *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{school: school}
}

// Get godoc
// @Summary Get school profile
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	profile, err := h.school.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Slots godoc
// @Summary Slot grid derived from the school operating hours
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school/slots [get]
func (h *SchoolHandler) Slots(c *gin.Context) {
	slots, err := h.school.Slots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"slots": slots}, nil)
}

// Update godoc
// @Summary Update school profile
// @Description Operating hours, lunch break and weekly holiday
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSchoolProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /school [put]
func (h *SchoolHandler) Update(c *gin.Context) {
	var req dto.UpdateSchoolProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.school.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
