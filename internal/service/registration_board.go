package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

type boardBackend interface {
	List(ctx context.Context, sel models.EditionSelection) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error)
}

type defaultSelector interface {
	DefaultSelection(ctx context.Context) (models.EditionSelection, error)
}

// RegistrationBoard is the admin view's working copy of the registration list
// for one edition selection. Status changes are applied locally from the
// server's answer and then confirmed by a full reload; until that reload
// succeeds the board reports itself stale.
//
// A board has a single owner and is not safe for concurrent use.
type RegistrationBoard struct {
	backend   boardBackend
	logger    *zap.Logger
	selection models.EditionSelection
	regs      []models.Registration
	page      int
	stale     bool
	memo      FilterMemo
}

// NewRegistrationBoard returns an empty board scoped to AllEditions.
func NewRegistrationBoard(backend boardBackend, logger *zap.Logger) *RegistrationBoard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationBoard{backend: backend, logger: logger, selection: models.AllEditions, page: 1}
}

// Load picks the default edition and fetches its registrations.
func (b *RegistrationBoard) Load(ctx context.Context, editions defaultSelector) error {
	sel, err := editions.DefaultSelection(ctx)
	if err != nil {
		return err
	}
	return b.SelectEdition(ctx, sel)
}

// SelectEdition fetches sel's registrations, then rescopes the board and
// resets to page 1. On failure the board keeps its previous edition and list.
func (b *RegistrationBoard) SelectEdition(ctx context.Context, sel models.EditionSelection) error {
	regs, err := b.backend.List(ctx, sel)
	if err != nil {
		return err
	}
	b.selection = sel
	b.page = 1
	b.regs = regs
	b.stale = false
	return nil
}

// Refresh reloads the registrations for the current selection. On failure
// the current list is kept.
func (b *RegistrationBoard) Refresh(ctx context.Context) error {
	regs, err := b.backend.List(ctx, b.selection)
	if err != nil {
		return err
	}
	b.regs = regs
	b.stale = false
	return nil
}

// UpdateStatus changes a registration's status. A failed update leaves the
// board untouched. A failed follow-up reload is logged, not returned.
func (b *RegistrationBoard) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	updated, err := b.backend.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	b.apply(*updated)
	b.stale = true

	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("registration reload after status change failed", zap.String("registration_id", id), zap.Error(err))
	}
	return updated, nil
}

// apply swaps in a new slice so memoized filters see the change.
func (b *RegistrationBoard) apply(reg models.Registration) {
	next := make([]models.Registration, len(b.regs))
	copy(next, b.regs)
	for i := range next {
		if next[i].ID == reg.ID {
			next[i] = reg
		}
	}
	b.regs = next
}

func (b *RegistrationBoard) Selection() models.EditionSelection { return b.selection }
func (b *RegistrationBoard) Registrations() []models.Registration { return b.regs }
func (b *RegistrationBoard) Stale() bool                          { return b.stale }
func (b *RegistrationBoard) Page() int                            { return b.page }

// SetPage moves to page n (minimum 1).
func (b *RegistrationBoard) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	b.page = n
}

// Filtered applies criteria to the current list, reusing the last result
// when neither changed.
func (b *RegistrationBoard) Filtered(criteria models.RegistrationCriteria) []models.Registration {
	return b.memo.Filter(b.regs, criteria)
}

// Facets derives filter options from the current list.
func (b *RegistrationBoard) Facets() models.RegistrationFacets {
	return Facets(b.regs)
}
