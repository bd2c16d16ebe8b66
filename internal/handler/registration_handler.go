package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/youth-camp-api/internal/middleware"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
	"github.com/noah-isme/youth-camp-api/pkg/response"
)

type registrationService interface {
	Register(ctx context.Context, form service.RegistrationForm) (*models.Registration, error)
	Get(ctx context.Context, id string) (*models.Registration, error)
	Browse(ctx context.Context, sel models.EditionSelection, criteria models.RegistrationCriteria, page, pageSize int) (*service.RegistrationPage, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error)
	Stats(ctx context.Context, sel models.EditionSelection) (*models.RegistrationStats, error)
}

type registrationExporter interface {
	RegistrationsCSV(ctx context.Context, sel models.EditionSelection, criteria models.RegistrationCriteria) (*service.ExportFile, error)
}

// RegistrationHandler serves the public form and the admin registration table.
type RegistrationHandler struct {
	service  registrationService
	exporter registrationExporter
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(svc registrationService, exporter registrationExporter) *RegistrationHandler {
	return &RegistrationHandler{service: svc, exporter: exporter}
}

type validateStepRequest struct {
	Step int `json:"step" binding:"required,oneof=1 2"`
	service.RegistrationForm
}

type statusUpdateRequest struct {
	Status models.RegistrationStatus `json:"status" binding:"required"`
}

// Submit godoc
// @Summary Submit registration
// @Description Submit a completed registration form into the active edition
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegistrationForm true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var form service.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindError(c, err, "invalid registration payload")
		return
	}
	reg, err := h.service.Register(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"id": reg.ID})
}

// ValidateStep godoc
// @Summary Validate one form step
// @Tags Registrations
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /registrations/validate [post]
func (h *RegistrationHandler) ValidateStep(c *gin.Context) {
	var req validateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "step must be 1 or 2")
		return
	}
	fields := service.ValidateStep(req.RegistrationForm.Normalized(), service.WizardStep(req.Step))
	response.JSON(c, http.StatusOK, gin.H{"valid": len(fields) == 0, "errors": fields}, nil)
}

// Get godoc
// @Summary Registration confirmation
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	reg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// List godoc
// @Summary List registrations
// @Description Filtered, paginated registrations of the selected edition with facet options
// @Tags Admin Registrations
// @Produce json
// @Param edition query string false "Edition id or all"
// @Param search query string false "Name, phone or church search"
// @Param status query string false "pending, approved, rejected or all"
// @Param grade query string false "Grade filter"
// @Param church query string false "Church filter"
// @Param location query string false "Location filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	page, size := pageFromQuery(c)
	result, err := h.service.Browse(c.Request.Context(), middleware.EditionSelection(c), criteriaFromQuery(c), page, size)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, result.Pagination, middleware.ExtractMeta(c))
}

// UpdateStatus godoc
// @Summary Change registration status
// @Description Approving issues a participant id; any other status clears it
// @Tags Admin Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/registrations/{id}/status [patch]
func (h *RegistrationHandler) UpdateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "status is required")
		return
	}
	reg, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Stats godoc
// @Summary Dashboard counters
// @Tags Admin Registrations
// @Produce json
// @Param edition query string false "Edition id or all"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/stats [get]
func (h *RegistrationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.EditionSelection(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export registrations as CSV
// @Tags Admin Registrations
// @Produce text/csv
// @Param edition query string false "Edition id or all"
// @Success 200 {file} file
// @Router /admin/registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	file, err := h.exporter.RegistrationsCSV(c.Request.Context(), middleware.EditionSelection(c), criteriaFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
