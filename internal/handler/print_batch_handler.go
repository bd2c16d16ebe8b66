package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/youth-camp-api/internal/middleware"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	"github.com/noah-isme/youth-camp-api/pkg/response"
)

type printService interface {
	Enqueue(ctx context.Context, sel models.EditionSelection, criteria models.RegistrationCriteria, requestedBy string) (*models.PrintBatch, error)
	Status(ctx context.Context, id string) (*models.PrintBatch, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportFile, error)
}

// PrintBatchHandler exposes asynchronous ID card rendering.
type PrintBatchHandler struct {
	service printService
}

// NewPrintBatchHandler constructs the handler.
func NewPrintBatchHandler(svc printService) *PrintBatchHandler {
	return &PrintBatchHandler{service: svc}
}

// Create godoc
// @Summary Queue ID card batch
// @Description Renders ID cards for registrations matching the filters (approved by default)
// @Tags Print Batches
// @Accept json
// @Produce json
// @Param edition query string false "Edition id or all"
// @Param payload body models.RegistrationCriteria false "Filters"
// @Success 202 {object} response.Envelope
// @Router /admin/print-batches [post]
func (h *PrintBatchHandler) Create(c *gin.Context) {
	var criteria models.RegistrationCriteria
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&criteria); err != nil {
			bindError(c, err, "invalid filters")
			return
		}
	}
	requestedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		requestedBy = claims.Email
	}
	batch, err := h.service.Enqueue(c.Request.Context(), middleware.EditionSelection(c), criteria, requestedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, batch, nil)
}

// Status godoc
// @Summary Print batch status
// @Tags Print Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/print-batches/{id} [get]
func (h *PrintBatchHandler) Status(c *gin.Context) {
	batch, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Download godoc
// @Summary Download rendered ID cards
// @Tags Print Batches
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /print-batches/download/{token} [get]
func (h *PrintBatchHandler) Download(c *gin.Context) {
	file, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
