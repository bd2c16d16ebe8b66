package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	"github.com/noah-isme/youth-camp-api/pkg/response"
)

type editionService interface {
	List(ctx context.Context) ([]models.Edition, error)
	Active(ctx context.Context) (*models.Edition, error)
	Create(ctx context.Context, req service.EditionRequest) (*models.Edition, error)
	Update(ctx context.Context, id int64, req service.EditionRequest) (*models.Edition, error)
	Activate(ctx context.Context, id int64) (*models.Edition, error)
	Deactivate(ctx context.Context, id int64) (*models.Edition, error)
	Delete(ctx context.Context, id int64) error
	DeleteWithRegistrations(ctx context.Context, id int64) (int64, error)
}

// EditionHandler exposes camp edition endpoints.
type EditionHandler struct {
	service editionService
}

// NewEditionHandler constructs an edition handler.
func NewEditionHandler(svc editionService) *EditionHandler {
	return &EditionHandler{service: svc}
}

// List godoc
// @Summary List editions
// @Tags Editions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/editions [get]
func (h *EditionHandler) List(c *gin.Context) {
	editions, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, editions, nil)
}

// GetActive godoc
// @Summary Get active edition
// @Tags Editions
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /editions/active [get]
func (h *EditionHandler) GetActive(c *gin.Context) {
	edition, err := h.service.Active(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edition, nil)
}

// Create godoc
// @Summary Create edition
// @Tags Editions
// @Accept json
// @Produce json
// @Param payload body service.EditionRequest true "Edition payload"
// @Success 201 {object} response.Envelope
// @Router /admin/editions [post]
func (h *EditionHandler) Create(c *gin.Context) {
	var req service.EditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	edition, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, edition)
}

// Update godoc
// @Summary Update edition
// @Tags Editions
// @Accept json
// @Produce json
// @Param id path int true "Edition ID"
// @Param payload body service.EditionRequest true "Edition payload"
// @Success 200 {object} response.Envelope
// @Router /admin/editions/{id} [put]
func (h *EditionHandler) Update(c *gin.Context) {
	id, ok := editionIDParam(c)
	if !ok {
		return
	}
	var req service.EditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid payload")
		return
	}
	edition, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edition, nil)
}

// Activate godoc
// @Summary Activate edition
// @Description Makes this the only active edition
// @Tags Editions
// @Produce json
// @Param id path int true "Edition ID"
// @Success 200 {object} response.Envelope
// @Router /admin/editions/{id}/activate [post]
func (h *EditionHandler) Activate(c *gin.Context) {
	id, ok := editionIDParam(c)
	if !ok {
		return
	}
	edition, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edition, nil)
}

// Deactivate godoc
// @Summary Deactivate edition
// @Tags Editions
// @Produce json
// @Param id path int true "Edition ID"
// @Success 200 {object} response.Envelope
// @Router /admin/editions/{id}/deactivate [post]
func (h *EditionHandler) Deactivate(c *gin.Context) {
	id, ok := editionIDParam(c)
	if !ok {
		return
	}
	edition, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, edition, nil)
}

// Delete godoc
// @Summary Delete edition
// @Description Refused while registrations reference the edition unless cascade=true
// @Tags Editions
// @Produce json
// @Param id path int true "Edition ID"
// @Param cascade query bool false "Also delete the edition's registrations"
// @Success 200 {object} response.Envelope
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/editions/{id} [delete]
func (h *EditionHandler) Delete(c *gin.Context) {
	id, ok := editionIDParam(c)
	if !ok {
		return
	}
	if cascade, _ := strconv.ParseBool(c.Query("cascade")); cascade {
		removed, err := h.service.DeleteWithRegistrations(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"deleted_registrations": removed}, nil)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}
