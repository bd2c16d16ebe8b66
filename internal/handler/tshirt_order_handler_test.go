package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/youth-camp-api/internal/middleware"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

type orderServiceMock struct {
	filter    models.TShirtOrderFilter
	statement string
	sel       models.EditionSelection
	verifyErr error
}

func (m *orderServiceMock) LookupRegistration(ctx context.Context, phone string) (*models.Registration, error) {
	if phone != "912345678" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no registration found for this phone number")
	}
	return &models.Registration{ID: "reg-1", Name: "Abel Bekele", Phone: "0912345678"}, nil
}

func (m *orderServiceMock) Create(ctx context.Context, req service.CreateOrderRequest) (*models.TShirtOrder, error) {
	return &models.TShirtOrder{ID: "o1", RegistrationID: req.RegistrationID, Size: req.Size, Quantity: req.Quantity, Status: models.OrderPending}, nil
}

func (m *orderServiceMock) List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error) {
	m.filter = filter
	return []models.TShirtOrder{{ID: "o1"}}, nil
}

func (m *orderServiceMock) Verify(ctx context.Context, id string) (*models.TShirtOrder, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return &models.TShirtOrder{ID: id, Status: models.OrderVerified}, nil
}

func (m *orderServiceMock) Cancel(ctx context.Context, id string) (*models.TShirtOrder, error) {
	return &models.TShirtOrder{ID: id, Status: models.OrderCancelled}, nil
}

func (m *orderServiceMock) ReconcileCSV(ctx context.Context, statement io.Reader, sel models.EditionSelection) (*service.ReconciliationResult, error) {
	b, _ := io.ReadAll(statement)
	m.statement, m.sel = string(b), sel
	if !strings.Contains(m.statement, "reference") {
		return nil, appErrors.Clone(appErrors.ErrInvalidCSV, "Invalid CSV format")
	}
	return &service.ReconciliationResult{ReconciliationReport: models.ReconciliationReport{VerifiedCount: 1, DuplicateCount: 2}}, nil
}

func (m *orderServiceMock) VerifiedOrdersCSV(ctx context.Context, sel models.EditionSelection) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "verified_tshirt_orders_2025-07-20.csv", ContentType: "text/csv; charset=utf-8", Payload: []byte("Order ID\n")}, nil
}

func multipartStatement(t *testing.T, target, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTShirtOrderHandlerPublicFlow(t *testing.T) {
	mock := &orderServiceMock{}
	h := NewTShirtOrderHandler(mock, mock, mock, 0)

	c, w := newGinContext(http.MethodPost, "/tshirt-orders/lookup", []byte(`{"phone":"912345678"}`))
	h.Lookup(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"reg-1","name":"Abel Bekele","phone":"0912345678"}`, string(decode(t, w).Data))

	c, w = newGinContext(http.MethodPost, "/tshirt-orders/lookup", []byte(`{"phone":"0000"}`))
	h.Lookup(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newGinContext(http.MethodPost, "/tshirt-orders", []byte(`{"registration_id":"reg-1","size":"M","quantity":2,"payment_reference":"FT1"}`))
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTShirtOrderHandlerAdminList(t *testing.T) {
	mock := &orderServiceMock{}
	router := gin.New()
	router.GET("/admin/tshirt-orders", middleware.EditionScope(nil), NewTShirtOrderHandler(mock, nil, nil, 0).List)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/tshirt-orders?edition=2&status=Pending&search=ft", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.filter.EditionID)
	assert.Equal(t, int64(2), *mock.filter.EditionID)
	assert.Equal(t, models.OrderPending, mock.filter.Status)
	assert.Equal(t, "ft", mock.filter.Search)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/tshirt-orders?status=all", nil))
	assert.Nil(t, mock.filter.EditionID)
	assert.Empty(t, mock.filter.Status)
}

func TestTShirtOrderHandlerTransitions(t *testing.T) {
	mock := &orderServiceMock{}
	h := NewTShirtOrderHandler(mock, nil, nil, 0)

	c, w := newGinContext(http.MethodPost, "/admin/tshirt-orders/o1/cancel", nil)
	withID(c, "o1")
	h.Cancel(c)
	assert.Equal(t, http.StatusOK, w.Code)

	mock.verifyErr = appErrors.Clone(appErrors.ErrOrderNotPending, "order is already cancelled")
	c, w = newGinContext(http.MethodPost, "/admin/tshirt-orders/o1/verify", nil)
	withID(c, "o1")
	h.Verify(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "order is already cancelled", decode(t, w).Error.Message)
}

func TestTShirtOrderHandlerReconcile(t *testing.T) {
	mock := &orderServiceMock{}
	router := gin.New()
	router.POST("/reconcile", middleware.EditionScope(nil), NewTShirtOrderHandler(mock, mock, nil, 1024).Reconcile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartStatement(t, "/reconcile?edition=3", "reference\nA\n"))
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Verified: 1, Duplicates: 2, No Match: 0", env.Meta["summary"])
	assert.Equal(t, "reference\nA\n", mock.statement)
	assert.Equal(t, models.SelectEdition(3), mock.sel)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartStatement(t, "/reconcile", "amount\n1\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CSV", decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartStatement(t, "/reconcile", "reference\n"+strings.Repeat("A\n", 2048)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reconcile", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTShirtOrderHandlerExport(t *testing.T) {
	mock := &orderServiceMock{}
	h := NewTShirtOrderHandler(mock, nil, mock, 0)

	c, w := newGinContext(http.MethodGet, "/admin/tshirt-orders/export", nil)
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "verified_tshirt_orders_2025-07-20.csv")
}
