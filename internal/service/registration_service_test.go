package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

type fakeRegistrationStore struct {
	regs      []models.Registration
	seq       int
	listErr   error
	updateErr error
	assignErr error
	listCalls int
}

func (f *fakeRegistrationStore) Create(ctx context.Context, reg *models.Registration) error {
	f.seq++
	reg.ID = "reg-" + strconv.Itoa(f.seq)
	reg.Status = models.RegistrationPending
	reg.ParticipantID = nil
	reg.CreatedAt = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	reg.UpdatedAt = reg.CreatedAt
	f.regs = append(f.regs, *reg)
	return nil
}

func (f *fakeRegistrationStore) find(id string) int {
	for i := range f.regs {
		if f.regs[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeRegistrationStore) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	i := f.find(id)
	if i < 0 {
		return nil, sql.ErrNoRows
	}
	reg := f.regs[i]
	return &reg, nil
}

func (f *fakeRegistrationStore) List(ctx context.Context, editionID *int64) ([]models.Registration, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Registration, 0, len(f.regs))
	for _, reg := range f.regs {
		if editionID == nil || (reg.EditionID != nil && *reg.EditionID == *editionID) {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeRegistrationStore) FindByPhoneInEdition(ctx context.Context, phone string, editionID int64) (*models.Registration, error) {
	for _, reg := range f.regs {
		if reg.Phone == phone && reg.EditionID != nil && *reg.EditionID == editionID {
			r := reg
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRegistrationStore) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	i := f.find(id)
	if i < 0 {
		return nil, sql.ErrNoRows
	}
	f.regs[i].Status = status
	f.regs[i].ParticipantID = nil
	reg := f.regs[i]
	return &reg, nil
}

func (f *fakeRegistrationStore) AssignParticipantID(ctx context.Context, id, participantID string) (*models.Registration, error) {
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	i := f.find(id)
	if i < 0 || f.regs[i].Status != models.RegistrationApproved {
		return nil, sql.ErrNoRows
	}
	pid := participantID
	f.regs[i].ParticipantID = &pid
	reg := f.regs[i]
	return &reg, nil
}

func (f *fakeRegistrationStore) Stats(ctx context.Context, editionID *int64) (*models.RegistrationStats, error) {
	regs, err := f.List(ctx, editionID)
	if err != nil {
		return nil, err
	}
	stats := &models.RegistrationStats{Total: len(regs)}
	for _, reg := range regs {
		switch reg.Status {
		case models.RegistrationApproved:
			stats.Approved++
		case models.RegistrationPending:
			stats.Pending++
		case models.RegistrationRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (f *fakeRegistrationStore) CountByEdition(ctx context.Context, editionID int64) (int, error) {
	regs, err := f.List(ctx, &editionID)
	return len(regs), err
}

// fakeIssuer numbers ids per Ethiopian year the way the database sequence does.
type fakeIssuer struct {
	counts map[int]int
	err    error
}

func (f *fakeIssuer) Next(ctx context.Context, year int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.counts == nil {
		f.counts = make(map[int]int)
	}
	f.counts[year]++
	return fmt.Sprintf("BT%03d/%d", f.counts[year], year), nil
}

type fakeActiveEdition struct {
	edition *models.Edition
	err     error
}

func (f *fakeActiveEdition) FindActive(ctx context.Context) (*models.Edition, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.edition == nil {
		return nil, sql.ErrNoRows
	}
	e := *f.edition
	return &e, nil
}

func newRegistrationFixture() (*RegistrationService, *fakeRegistrationStore, *fakeIssuer) {
	store := &fakeRegistrationStore{}
	issuer := &fakeIssuer{}
	editions := &fakeActiveEdition{edition: &models.Edition{ID: 1, Year: 2025, Name: "2025 Summer Round", EventLocation: models.LocationHawassa, IsActive: true}}
	svc := NewRegistrationService(store, issuer, editions, nil, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC) }
	return svc, store, issuer
}

func validForm() RegistrationForm {
	return RegistrationForm{
		FirstName:   "Abel",
		FathersName: "Bekele",
		Phone:       "091 234 5678",
		Age:         "16",
		Grade:       "grade-9",
		Gender:      models.GenderMale,
		Church:      "Test Church",
	}
}

var participantIDPattern = regexp.MustCompile(`^BT\d{3}/\d{4}$`)

func TestRegistrationLifecycleEndToEnd(t *testing.T) {
	svc, _, _ := newRegistrationFixture()
	ctx := context.Background()

	reg, err := svc.Register(ctx, validForm())
	require.NoError(t, err)
	require.NotEmpty(t, reg.ID)

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Abel Bekele", got.Name)
	assert.Equal(t, "0912345678", got.Phone)
	assert.Equal(t, models.RegistrationPending, got.Status)
	assert.Nil(t, got.ParticipantID)
	require.NotNil(t, got.EditionID)
	assert.Equal(t, int64(1), *got.EditionID)
	assert.Equal(t, models.LocationHawassa, got.ParticipantLocation)

	_, err = svc.UpdateStatus(ctx, reg.ID, models.RegistrationApproved)
	require.NoError(t, err)

	got, err = svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationApproved, got.Status)
	require.NotNil(t, got.ParticipantID)
	assert.Regexp(t, participantIDPattern, *got.ParticipantID)
	assert.Equal(t, "BT001/2017", *got.ParticipantID)
}

func TestRegistrationStatusInvariant(t *testing.T) {
	svc, store, _ := newRegistrationFixture()
	ctx := context.Background()
	reg, err := svc.Register(ctx, validForm())
	require.NoError(t, err)

	sequence := []models.RegistrationStatus{
		models.RegistrationApproved,
		models.RegistrationRejected,
		models.RegistrationApproved,
		models.RegistrationPending,
		models.RegistrationApproved,
		models.RegistrationApproved,
	}
	for _, status := range sequence {
		updated, err := svc.UpdateStatus(ctx, reg.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
		assert.Equal(t, status == models.RegistrationApproved, updated.ParticipantID != nil, "status %s", status)

		stored := store.regs[store.find(reg.ID)]
		assert.Equal(t, status == models.RegistrationApproved, stored.ParticipantID != nil)
	}

	final, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "BT004/2017", *final.ParticipantID)
}

func TestRegistrationApprovalSurvivesIssuerFailure(t *testing.T) {
	svc, _, issuer := newRegistrationFixture()
	ctx := context.Background()
	reg, err := svc.Register(ctx, validForm())
	require.NoError(t, err)

	issuer.err = errors.New("sequence unavailable")
	updated, err := svc.UpdateStatus(ctx, reg.ID, models.RegistrationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationApproved, updated.Status)
	assert.Nil(t, updated.ParticipantID)
}

func TestRegistrationApprovalSurvivesAssignFailure(t *testing.T) {
	svc, store, _ := newRegistrationFixture()
	ctx := context.Background()
	reg, err := svc.Register(ctx, validForm())
	require.NoError(t, err)

	store.assignErr = errors.New("write conflict")
	updated, err := svc.UpdateStatus(ctx, reg.ID, models.RegistrationApproved)
	require.NoError(t, err)
	assert.Nil(t, updated.ParticipantID)
}

func TestRegistrationUpdateStatusErrors(t *testing.T) {
	svc, store, _ := newRegistrationFixture()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, "missing", models.RegistrationApproved)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	_, err = svc.UpdateStatus(ctx, "missing", "archived")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	reg, err := svc.Register(ctx, validForm())
	require.NoError(t, err)
	store.updateErr = errors.New("connection reset")
	_, err = svc.UpdateStatus(ctx, reg.ID, models.RegistrationApproved)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "There was an error updating the registration status.", appErr.Message)
	assert.Equal(t, models.RegistrationPending, store.regs[0].Status)
}

func TestRegistrationRegisterValidation(t *testing.T) {
	svc, store, _ := newRegistrationFixture()

	form := validForm()
	form.Age = "13"
	form.Phone = "1912345678"
	form.FirstName = "Abel2"
	_, err := svc.Register(context.Background(), form)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "Age must be between 14 and 19", fieldErr.Fields[FieldAge])
	assert.Equal(t, "Phone number must start with 09", fieldErr.Fields[FieldPhone])
	assert.Contains(t, fieldErr.Fields, FieldFirstName)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	assert.Empty(t, store.regs)
}

func TestRegistrationRegisterRequiresActiveEdition(t *testing.T) {
	store := &fakeRegistrationStore{}
	svc := NewRegistrationService(store, &fakeIssuer{}, &fakeActiveEdition{}, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), validForm())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNoActiveEdition))
	assert.Empty(t, store.regs)
}

func TestRegistrationRegisterKeepsChosenLocation(t *testing.T) {
	svc, _, _ := newRegistrationFixture()
	form := validForm()
	form.ParticipantLocation = models.LocationAddisAbaba

	reg, err := svc.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, models.LocationAddisAbaba, reg.ParticipantLocation)
}

func TestRegistrationBrowse(t *testing.T) {
	svc, store, _ := newRegistrationFixture()
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := svc.Register(ctx, validForm())
		require.NoError(t, err)
	}
	other := int64(2)
	store.regs[0].EditionID = &other

	page, err := svc.Browse(ctx, models.SelectEdition(1), models.RegistrationCriteria{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 24, page.Pagination.TotalCount)
	assert.Equal(t, 20, page.Pagination.PageSize)
	assert.Len(t, page.Items, 4)

	page, err = svc.Browse(ctx, models.AllEditions, models.RegistrationCriteria{Status: "approved"}, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Pagination.TotalCount)
	assert.Empty(t, page.Items)
	assert.Equal(t, models.CanonicalLocations, page.Facets.Locations[:2])
}

func TestRegistrationStats(t *testing.T) {
	svc, _, _ := newRegistrationFixture()
	ctx := context.Background()
	first, err := svc.Register(ctx, validForm())
	require.NoError(t, err)
	_, err = svc.Register(ctx, validForm())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, models.RegistrationApproved)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, models.AllEditions)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationStats{Total: 2, Approved: 1, Pending: 1}, *stats)
}
