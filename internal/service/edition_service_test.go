package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

type fakeEditionRepo struct {
	editions      map[int64]*models.Edition
	nextID        int64
	deactivateErr error
	setActiveErr  error
	deleteErr     error
	dependents    map[int64]int64
	calls         []string
}

func newFakeEditionRepo(editions ...models.Edition) *fakeEditionRepo {
	repo := &fakeEditionRepo{editions: make(map[int64]*models.Edition), dependents: make(map[int64]int64)}
	for i := range editions {
		e := editions[i]
		repo.editions[e.ID] = &e
		if e.ID > repo.nextID {
			repo.nextID = e.ID
		}
	}
	return repo
}

func (f *fakeEditionRepo) sorted() []models.Edition {
	out := make([]models.Edition, 0, len(f.editions))
	for _, e := range f.editions {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (f *fakeEditionRepo) List(ctx context.Context) ([]models.Edition, error) {
	return f.sorted(), nil
}

func (f *fakeEditionRepo) FindByID(ctx context.Context, id int64) (*models.Edition, error) {
	e, ok := f.editions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEditionRepo) FindActive(ctx context.Context) (*models.Edition, error) {
	for _, e := range f.sorted() {
		if e.IsActive {
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEditionRepo) FindLatest(ctx context.Context) (*models.Edition, error) {
	all := f.sorted()
	if len(all) == 0 {
		return nil, sql.ErrNoRows
	}
	return &all[0], nil
}

func (f *fakeEditionRepo) ExistsByYear(ctx context.Context, year int, excludeID int64) (bool, error) {
	for id, e := range f.editions {
		if e.Year == year && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEditionRepo) Create(ctx context.Context, edition *models.Edition) error {
	f.nextID++
	edition.ID = f.nextID
	edition.CreatedAt = time.Now().UTC()
	cp := *edition
	f.editions[edition.ID] = &cp
	return nil
}

func (f *fakeEditionRepo) Update(ctx context.Context, edition *models.Edition) error {
	if _, ok := f.editions[edition.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *edition
	f.editions[edition.ID] = &cp
	return nil
}

func (f *fakeEditionRepo) DeactivateAllExcept(ctx context.Context, id int64) error {
	f.calls = append(f.calls, "deactivate")
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	for eid, e := range f.editions {
		if eid != id {
			e.IsActive = false
		}
	}
	return nil
}

func (f *fakeEditionRepo) SetActive(ctx context.Context, id int64, active bool) error {
	f.calls = append(f.calls, "set_active")
	if f.setActiveErr != nil {
		return f.setActiveErr
	}
	e, ok := f.editions[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.IsActive = active
	return nil
}

func (f *fakeEditionRepo) Delete(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.editions[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.editions, id)
	return nil
}

func (f *fakeEditionRepo) DeleteDependents(ctx context.Context, id int64) (int64, error) {
	n := f.dependents[id]
	delete(f.dependents, id)
	return n, nil
}

type fakeRegistrationCounter struct {
	counts map[int64]int
}

func (f fakeRegistrationCounter) CountByEdition(ctx context.Context, editionID int64) (int, error) {
	return f.counts[editionID], nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seededEditions() *fakeEditionRepo {
	return newFakeEditionRepo(
		models.Edition{ID: 1, Year: 2023, Name: "2023 Round", StartDate: day("2023-07-01"), EventLocation: models.LocationHawassa},
		models.Edition{ID: 2, Year: 2024, Name: "2024 Round", StartDate: day("2024-07-01"), EventLocation: models.LocationAddisAbaba, IsActive: true},
		models.Edition{ID: 3, Year: 2025, Name: "2025 Round", StartDate: day("2025-07-01"), EventLocation: models.LocationHawassa},
	)
}

func activeIDs(repo *fakeEditionRepo) []int64 {
	var out []int64
	for _, e := range repo.sorted() {
		if e.IsActive {
			out = append(out, e.ID)
		}
	}
	return out
}

func TestEditionActivateLeavesExactlyOneActive(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	edition, err := svc.Activate(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, edition.IsActive)
	assert.Equal(t, []int64{3}, activeIDs(repo))
	assert.Equal(t, []string{"deactivate", "set_active"}, repo.calls)

	_, err = svc.Activate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, activeIDs(repo))
}

func TestEditionActivateStopsWhenDeactivateFails(t *testing.T) {
	repo := seededEditions()
	repo.deactivateErr = errors.New("timeout")
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	_, err := svc.Activate(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, []string{"deactivate"}, repo.calls)
	assert.Equal(t, []int64{2}, activeIDs(repo))
}

func TestEditionActivateSecondPhaseFailureLeavesNoneActive(t *testing.T) {
	repo := seededEditions()
	repo.setActiveErr = errors.New("timeout")
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	_, err := svc.Activate(context.Background(), 3)
	require.Error(t, err)
	assert.Empty(t, activeIDs(repo))

	_, err = svc.Activate(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestEditionDeactivate(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	edition, err := svc.Deactivate(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, edition.IsActive)
	assert.Empty(t, activeIDs(repo))

	_, err = svc.Active(context.Background())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNoActiveEdition))
}

func TestEditionDefaultSelection(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	sel, err := svc.DefaultSelection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SelectEdition(2), sel)

	repo.editions[2].IsActive = false
	sel, err = svc.DefaultSelection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SelectEdition(3), sel)

	sel, err = NewEditionService(newFakeEditionRepo(), fakeRegistrationCounter{}, nil, nil, nil).DefaultSelection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AllEditions, sel)
}

func TestEditionCreateIsAlwaysInactive(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	edition, err := svc.Create(context.Background(), EditionRequest{
		Year: 2026, Name: "2026 Summer Round", StartDate: "2026-07-10", EndDate: "2026-07-20", EventLocation: models.LocationAddisAbaba,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), edition.ID)
	assert.False(t, edition.IsActive)
	assert.Equal(t, []int64{2}, activeIDs(repo))
}

func TestEditionCreateValidation(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, EditionRequest{Year: 2026, Name: "x", StartDate: "10/07/2026", EndDate: "2026-07-20", EventLocation: "Gondar"})
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Contains(t, fieldErr.Fields, "start_date")
	assert.Contains(t, fieldErr.Fields, "event_location")

	_, err = svc.Create(ctx, EditionRequest{Year: 2026, Name: "x", StartDate: "2026-07-20", EndDate: "2026-07-10", EventLocation: models.LocationHawassa})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, EditionRequest{Year: 2025, Name: "dup", StartDate: "2025-08-01", EndDate: "2025-08-05", EventLocation: models.LocationHawassa})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestEditionUpdate(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	edition, err := svc.Update(context.Background(), 2, EditionRequest{
		Year: 2024, Name: "2024 Renamed", StartDate: "2024-07-02", EndDate: "2024-07-12", EventLocation: models.LocationHawassa,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024 Renamed", edition.Name)
	assert.True(t, edition.IsActive)

	_, err = svc.Update(context.Background(), 2, EditionRequest{
		Year: 2025, Name: "clash", StartDate: "2024-07-02", EndDate: "2024-07-12", EventLocation: models.LocationHawassa,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestEditionDeleteGuard(t *testing.T) {
	repo := seededEditions()
	svc := NewEditionService(repo, fakeRegistrationCounter{counts: map[int64]int{1: 3}}, nil, nil, nil)
	ctx := context.Background()

	err := svc.Delete(ctx, 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEditionHasRegistrations))
	assert.Contains(t, repo.editions, int64(1))

	require.NoError(t, svc.Delete(ctx, 3))
	assert.NotContains(t, repo.editions, int64(3))

	err = svc.Delete(ctx, 42)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestEditionDeleteMapsForeignKeyViolation(t *testing.T) {
	repo := seededEditions()
	repo.deleteErr = &pq.Error{Code: "23503", Message: "violates foreign key constraint"}
	svc := NewEditionService(repo, fakeRegistrationCounter{}, nil, nil, nil)

	err := svc.Delete(context.Background(), 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrEditionHasRegistrations))
}

func TestEditionDeleteWithRegistrations(t *testing.T) {
	repo := seededEditions()
	repo.dependents[1] = 3
	svc := NewEditionService(repo, fakeRegistrationCounter{counts: map[int64]int{1: 3}}, nil, nil, nil)

	removed, err := svc.DeleteWithRegistrations(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NotContains(t, repo.editions, int64(1))

	_, err = svc.DeleteWithRegistrations(context.Background(), 1)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
