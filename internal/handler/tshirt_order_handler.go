package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/youth-camp-api/internal/middleware"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
	"github.com/noah-isme/youth-camp-api/pkg/response"
)

const defaultMaxUploadBytes = 5 << 20

type tshirtOrderService interface {
	LookupRegistration(ctx context.Context, phone string) (*models.Registration, error)
	Create(ctx context.Context, req service.CreateOrderRequest) (*models.TShirtOrder, error)
	List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error)
	Verify(ctx context.Context, id string) (*models.TShirtOrder, error)
	Cancel(ctx context.Context, id string) (*models.TShirtOrder, error)
}

type statementReconciler interface {
	ReconcileCSV(ctx context.Context, statement io.Reader, sel models.EditionSelection) (*service.ReconciliationResult, error)
}

type orderExporter interface {
	VerifiedOrdersCSV(ctx context.Context, sel models.EditionSelection) (*service.ExportFile, error)
}

// TShirtOrderHandler serves the public order flow and admin payment review.
type TShirtOrderHandler struct {
	orders         tshirtOrderService
	reconciler     statementReconciler
	exporter       orderExporter
	maxUploadBytes int64
}

// NewTShirtOrderHandler constructs the handler. maxUploadBytes caps statement uploads.
func NewTShirtOrderHandler(orders tshirtOrderService, reconciler statementReconciler, exporter orderExporter, maxUploadBytes int64) *TShirtOrderHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &TShirtOrderHandler{orders: orders, reconciler: reconciler, exporter: exporter, maxUploadBytes: maxUploadBytes}
}

type lookupRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// Lookup godoc
// @Summary Find registration by phone
// @Description Finds the caller's registration in the active edition before ordering
// @Tags T-shirt Orders
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tshirt-orders/lookup [post]
func (h *TShirtOrderHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "phone is required")
		return
	}
	reg, err := h.orders.LookupRegistration(c.Request.Context(), req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": reg.ID, "name": reg.Name, "phone": reg.Phone}, nil)
}

// Create godoc
// @Summary Place T-shirt order
// @Tags T-shirt Orders
// @Accept json
// @Produce json
// @Param payload body service.CreateOrderRequest true "Order payload"
// @Success 201 {object} response.Envelope
// @Router /tshirt-orders [post]
func (h *TShirtOrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "invalid order payload")
		return
	}
	order, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, order)
}

// List godoc
// @Summary List T-shirt orders
// @Tags Admin T-shirt Orders
// @Produce json
// @Param edition query string false "Edition id or all"
// @Param status query string false "pending, verified or cancelled"
// @Param search query string false "Reference, name or phone"
// @Success 200 {object} response.Envelope
// @Router /admin/tshirt-orders [get]
func (h *TShirtOrderHandler) List(c *gin.Context) {
	filter := models.TShirtOrderFilter{
		EditionID: middleware.EditionSelection(c).EditionID(),
		Search:    c.Query("search"),
	}
	if status := strings.ToLower(c.Query("status")); status != "" && status != "all" {
		filter.Status = models.TShirtOrderStatus(status)
	}
	orders, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, nil, middleware.ExtractMeta(c))
}

// Verify godoc
// @Summary Verify a pending order
// @Tags Admin T-shirt Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/tshirt-orders/{id}/verify [post]
func (h *TShirtOrderHandler) Verify(c *gin.Context) {
	order, err := h.orders.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Cancel godoc
// @Summary Cancel a pending order
// @Tags Admin T-shirt Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/tshirt-orders/{id}/cancel [post]
func (h *TShirtOrderHandler) Cancel(c *gin.Context) {
	order, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Reconcile godoc
// @Summary Reconcile payment statement
// @Description Matches an uploaded CSV statement against pending orders
// @Tags Admin T-shirt Orders
// @Accept multipart/form-data
// @Produce json
// @Param edition query string false "Edition id or all"
// @Param file formData file true "Statement CSV"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/tshirt-orders/reconcile [post]
func (h *TShirtOrderHandler) Reconcile(c *gin.Context) {
	if h.reconciler == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "reconciliation not configured"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.New("PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge, "statement file is too large"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	result, err := h.reconciler.ReconcileCSV(c.Request.Context(), src, middleware.EditionSelection(c))
	if err != nil {
		respondError(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["summary"] = result.Summary()
	response.JSON(c, http.StatusOK, result, nil, meta)
}

// Export godoc
// @Summary Export verified orders as CSV
// @Tags Admin T-shirt Orders
// @Produce text/csv
// @Param edition query string false "Edition id or all"
// @Success 200 {file} file
// @Router /admin/tshirt-orders/export [get]
func (h *TShirtOrderHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	file, err := h.exporter.VerifiedOrdersCSV(c.Request.Context(), middleware.EditionSelection(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
