package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

type tshirtOrderRepository interface {
	Create(ctx context.Context, order *models.TShirtOrder) error
	FindByID(ctx context.Context, id string) (*models.TShirtOrder, error)
	List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error)
	ListPending(ctx context.Context, editionID *int64) ([]models.TShirtOrder, error)
	TransitionFromPending(ctx context.Context, id string, status models.TShirtOrderStatus) (*models.TShirtOrder, error)
}

type orderRegistrationReader interface {
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindByPhoneInEdition(ctx context.Context, phone string, editionID int64) (*models.Registration, error)
}

// CreateOrderRequest is the public T-shirt order payload.
type CreateOrderRequest struct {
	RegistrationID   string `json:"registration_id" validate:"required,uuid"`
	Size             string `json:"size" validate:"required,oneof=S M L XL"`
	Quantity         int    `json:"quantity" validate:"required,min=1,max=10"`
	PaymentReference string `json:"payment_reference" validate:"required,max=100"`
}

// TShirtOrderService handles the public order flow and manual admin review.
type TShirtOrderService struct {
	repo          tshirtOrderRepository
	registrations orderRegistrationReader
	editions      activeEditionReader
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewTShirtOrderService creates a new order service instance.
func NewTShirtOrderService(repo tshirtOrderRepository, registrations orderRegistrationReader, editions activeEditionReader, validate *validator.Validate, logger *zap.Logger) *TShirtOrderService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TShirtOrderService{repo: repo, registrations: registrations, editions: editions, validator: validate, logger: logger}
}

// LookupRegistration finds the caller's registration in the active edition by phone.
func (s *TShirtOrderService) LookupRegistration(ctx context.Context, phone string) (*models.Registration, error) {
	normalized := NormalizeLookupPhone(phone)
	if normalized == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "phone number is required")
	}

	edition, err := s.activeEdition(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := s.registrations.FindByPhoneInEdition(ctx, normalized, edition.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no registration found for this phone number in the current edition")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up registration")
	}
	return reg, nil
}

// Create places a pending order against a registration in the active edition.
func (s *TShirtOrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.TShirtOrder, error) {
	req.PaymentReference = strings.TrimSpace(req.PaymentReference)
	if err := s.validator.Struct(req); err != nil {
		return nil, NewFieldError(appErrors.Clone(appErrors.ErrValidation, "invalid order payload"), FieldErrors(err))
	}

	edition, err := s.activeEdition(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := s.registrations.FindByID(ctx, req.RegistrationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if reg.EditionID == nil || *reg.EditionID != edition.ID {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "registration is not part of the current edition")
	}

	order := &models.TShirtOrder{
		RegistrationID:   reg.ID,
		EditionID:        edition.ID,
		Size:             req.Size,
		Quantity:         req.Quantity,
		PaymentReference: req.PaymentReference,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to place order")
	}
	order.RegistrantName = reg.Name
	order.RegistrantPhone = reg.Phone
	return order, nil
}

// List returns orders matching filter.
func (s *TShirtOrderService) List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders")
	}
	return orders, nil
}

// ListPending returns the orders still awaiting payment confirmation.
func (s *TShirtOrderService) ListPending(ctx context.Context, sel models.EditionSelection) ([]models.TShirtOrder, error) {
	orders, err := s.repo.ListPending(ctx, sel.EditionID())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending orders")
	}
	return orders, nil
}

// Verify confirms payment for a pending order.
func (s *TShirtOrderService) Verify(ctx context.Context, id string) (*models.TShirtOrder, error) {
	return s.transition(ctx, id, models.OrderVerified)
}

// Cancel cancels a pending order.
func (s *TShirtOrderService) Cancel(ctx context.Context, id string) (*models.TShirtOrder, error) {
	return s.transition(ctx, id, models.OrderCancelled)
}

func (s *TShirtOrderService) transition(ctx context.Context, id string, to models.TShirtOrderStatus) (*models.TShirtOrder, error) {
	order, err := s.repo.TransitionFromPending(ctx, id, to)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update order")
	}

	current, lookupErr := s.repo.FindByID(ctx, id)
	if lookupErr != nil {
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
		}
		return nil, appErrors.Wrap(lookupErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	return nil, appErrors.Clone(appErrors.ErrOrderNotPending, fmt.Sprintf("order is already %s", current.Status))
}

func (s *TShirtOrderService) activeEdition(ctx context.Context) (*models.Edition, error) {
	edition, err := s.editions.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoActiveEdition, "no active edition found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active edition")
	}
	return edition, nil
}
