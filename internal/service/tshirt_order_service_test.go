package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

type fakeOrderRepo struct {
	orders      []models.TShirtOrder
	seq         int
	failTransit map[string]error
	listErr     error
	transitions []string
}

func (f *fakeOrderRepo) add(o models.TShirtOrder) {
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	f.orders = append(f.orders, o)
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.TShirtOrder) error {
	f.seq++
	order.ID = "order-" + strconv.Itoa(f.seq)
	order.Status = models.OrderPending
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*models.TShirtOrder, error) {
	for _, o := range f.orders {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrderRepo) List(ctx context.Context, filter models.TShirtOrderFilter) ([]models.TShirtOrder, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.TShirtOrder
	for _, o := range f.orders {
		if filter.EditionID != nil && o.EditionID != *filter.EditionID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) ListPending(ctx context.Context, editionID *int64) ([]models.TShirtOrder, error) {
	return f.List(ctx, models.TShirtOrderFilter{EditionID: editionID, Status: models.OrderPending})
}

func (f *fakeOrderRepo) TransitionFromPending(ctx context.Context, id string, status models.TShirtOrderStatus) (*models.TShirtOrder, error) {
	if err := f.failTransit[id]; err != nil {
		return nil, err
	}
	for i := range f.orders {
		if f.orders[i].ID == id && f.orders[i].Status == models.OrderPending {
			f.orders[i].Status = status
			f.transitions = append(f.transitions, id+":"+string(status))
			cp := f.orders[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrderRepo) status(id string) models.TShirtOrderStatus {
	for _, o := range f.orders {
		if o.ID == id {
			return o.Status
		}
	}
	return ""
}

const registrationUUID = "3f2b8a4e-1c1d-4b7a-9a57-6f1d2e3c4b5a"

func newOrderFixture() (*TShirtOrderService, *fakeOrderRepo, *fakeRegistrationStore) {
	repo := &fakeOrderRepo{}
	editionID := int64(1)
	regs := &fakeRegistrationStore{regs: []models.Registration{
		{ID: registrationUUID, Name: "Abel Bekele", Phone: "0912345678", EditionID: &editionID, Status: models.RegistrationApproved},
	}}
	editions := &fakeActiveEdition{edition: &models.Edition{ID: 1, IsActive: true}}
	return NewTShirtOrderService(repo, regs, editions, nil, nil), repo, regs
}

func TestTShirtOrderLookupRegistration(t *testing.T) {
	svc, _, _ := newOrderFixture()
	ctx := context.Background()

	reg, err := svc.LookupRegistration(ctx, "912 345 678")
	require.NoError(t, err)
	assert.Equal(t, registrationUUID, reg.ID)

	reg, err = svc.LookupRegistration(ctx, "0912-345-678")
	require.NoError(t, err)
	assert.Equal(t, "Abel Bekele", reg.Name)

	_, err = svc.LookupRegistration(ctx, "0999999999")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	_, err = svc.LookupRegistration(ctx, "  ")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestTShirtOrderCreate(t *testing.T) {
	svc, repo, regs := newOrderFixture()
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{RegistrationID: registrationUUID, Size: "M", Quantity: 2, PaymentReference: " FT2501 "})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "FT2501", order.PaymentReference)
	assert.Equal(t, int64(1), order.EditionID)
	assert.Equal(t, "Abel Bekele", order.RegistrantName)
	assert.Len(t, repo.orders, 1)

	_, err = svc.Create(ctx, CreateOrderRequest{RegistrationID: "nope", Size: "XXL", Quantity: 11})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Contains(t, fieldErr.Fields, "registration_id")
	assert.Contains(t, fieldErr.Fields, "size")
	assert.Contains(t, fieldErr.Fields, "quantity")
	assert.Contains(t, fieldErr.Fields, "payment_reference")

	old := int64(7)
	regs.regs[0].EditionID = &old
	_, err = svc.Create(ctx, CreateOrderRequest{RegistrationID: registrationUUID, Size: "S", Quantity: 1, PaymentReference: "X"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed))
}

func TestTShirtOrderCreateWithoutActiveEdition(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewTShirtOrderService(repo, &fakeRegistrationStore{}, &fakeActiveEdition{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateOrderRequest{RegistrationID: registrationUUID, Size: "S", Quantity: 1, PaymentReference: "X"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNoActiveEdition))
	assert.Empty(t, repo.orders)
}

func TestTShirtOrderTransitions(t *testing.T) {
	svc, repo, _ := newOrderFixture()
	ctx := context.Background()
	repo.add(models.TShirtOrder{ID: "o1", EditionID: 1, PaymentReference: "A"})
	repo.add(models.TShirtOrder{ID: "o2", EditionID: 1, PaymentReference: "B"})

	order, err := svc.Verify(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderVerified, order.Status)

	_, err = svc.Cancel(ctx, "o1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrOrderNotPending))
	assert.Equal(t, "order is already verified", appErrors.FromError(err).Message)

	order, err = svc.Cancel(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)

	_, err = svc.Verify(ctx, "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	repo.add(models.TShirtOrder{ID: "o3", EditionID: 1})
	repo.failTransit = map[string]error{"o3": errors.New("deadlock")}
	_, err = svc.Verify(ctx, "o3")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal))
}

func TestTShirtOrderListPendingScopesEdition(t *testing.T) {
	svc, repo, _ := newOrderFixture()
	repo.add(models.TShirtOrder{ID: "o1", EditionID: 1})
	repo.add(models.TShirtOrder{ID: "o2", EditionID: 2})
	repo.add(models.TShirtOrder{ID: "o3", EditionID: 1, Status: models.OrderVerified})

	pending, err := svc.ListPending(context.Background(), models.SelectEdition(1))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "o1", pending[0].ID)

	pending, err = svc.ListPending(context.Background(), models.AllEditions)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
