package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/pkg/cache"
	"github.com/noah-isme/youth-camp-api/pkg/database"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

const dateLayout = "2006-01-02"

var activeEditionKey = cache.Key("edition", "active")

type editionRepository interface {
	List(ctx context.Context) ([]models.Edition, error)
	FindByID(ctx context.Context, id int64) (*models.Edition, error)
	FindActive(ctx context.Context) (*models.Edition, error)
	FindLatest(ctx context.Context) (*models.Edition, error)
	ExistsByYear(ctx context.Context, year int, excludeID int64) (bool, error)
	Create(ctx context.Context, edition *models.Edition) error
	Update(ctx context.Context, edition *models.Edition) error
	DeactivateAllExcept(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	DeleteDependents(ctx context.Context, id int64) (int64, error)
}

type editionRegistrationCounter interface {
	CountByEdition(ctx context.Context, editionID int64) (int, error)
}

// EditionRequest is the create/update payload. Dates are YYYY-MM-DD.
type EditionRequest struct {
	Year          int    `json:"year" validate:"required,gte=2000,lte=2100"`
	Name          string `json:"name" validate:"required,max=120"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	EventLocation string `json:"event_location" validate:"required,oneof=Hawassa 'Addis Ababa'"`
}

// EditionService manages camp editions and which one is active.
type EditionService struct {
	repo          editionRepository
	registrations editionRegistrationCounter
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewEditionService creates a new edition service instance.
func NewEditionService(repo editionRepository, registrations editionRegistrationCounter, cacheSvc *CacheService, validate *validator.Validate, logger *zap.Logger) *EditionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditionService{repo: repo, registrations: registrations, cache: cacheSvc, validator: validate, logger: logger}
}

// List returns all editions, most recent first.
func (s *EditionService) List(ctx context.Context) ([]models.Edition, error) {
	editions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list editions")
	}
	return editions, nil
}

// Get returns an edition by id.
func (s *EditionService) Get(ctx context.Context, id int64) (*models.Edition, error) {
	edition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return edition, nil
}

// Active returns the active edition or NO_ACTIVE_EDITION.
func (s *EditionService) Active(ctx context.Context) (*models.Edition, error) {
	var cached models.Edition
	if s.cache.Get(ctx, activeEditionKey, &cached) {
		return &cached, nil
	}

	edition, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveEdition
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active edition")
	}
	s.cache.Set(ctx, activeEditionKey, edition, 0)
	return edition, nil
}

// DefaultSelection picks the active edition, else the one starting most
// recently, else AllEditions when there are none.
func (s *EditionService) DefaultSelection(ctx context.Context) (models.EditionSelection, error) {
	active, err := s.repo.FindActive(ctx)
	switch {
	case err == nil:
		return models.SelectEdition(active.ID), nil
	case !errors.Is(err, sql.ErrNoRows):
		return models.AllEditions, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active edition")
	}

	latest, err := s.repo.FindLatest(ctx)
	switch {
	case err == nil:
		return models.SelectEdition(latest.ID), nil
	case errors.Is(err, sql.ErrNoRows):
		return models.AllEditions, nil
	}
	return models.AllEditions, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load editions")
}

// Create adds an inactive edition. Only one edition may exist per year.
func (s *EditionService) Create(ctx context.Context, req EditionRequest) (*models.Edition, error) {
	edition, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureYearFree(ctx, req.Year, 0); err != nil {
		return nil, err
	}

	edition.IsActive = false
	if err := s.repo.Create(ctx, edition); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an edition for %d already exists", req.Year))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create edition")
	}
	return edition, nil
}

// Update changes an edition's descriptive fields. Activation is untouched.
func (s *EditionService) Update(ctx context.Context, id int64, req EditionRequest) (*models.Edition, error) {
	patch, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	edition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if err := s.ensureYearFree(ctx, req.Year, id); err != nil {
		return nil, err
	}

	edition.Year = patch.Year
	edition.Name = patch.Name
	edition.StartDate = patch.StartDate
	edition.EndDate = patch.EndDate
	edition.EventLocation = patch.EventLocation
	if err := s.repo.Update(ctx, edition); err != nil {
		return nil, s.lookupError(err)
	}
	s.cache.Invalidate(ctx, activeEditionKey)
	return edition, nil
}

// Activate makes id the only active edition in two steps: every other
// edition is deactivated first, and id is activated only if that succeeded.
// A failure in the second step leaves no edition active.
func (s *EditionService) Activate(ctx context.Context, id int64) (*models.Edition, error) {
	edition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}

	if err := s.repo.DeactivateAllExcept(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate other editions")
	}
	s.cache.Invalidate(ctx, activeEditionKey)

	if err := s.repo.SetActive(ctx, id, true); err != nil {
		s.logger.Error("edition activation incomplete", zap.Int64("edition_id", id), zap.Error(err))
		return nil, s.lookupError(err)
	}

	edition.IsActive = true
	return edition, nil
}

// Deactivate clears the active flag on id.
func (s *EditionService) Deactivate(ctx context.Context, id int64) (*models.Edition, error) {
	edition, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return nil, s.lookupError(err)
	}
	s.cache.Invalidate(ctx, activeEditionKey)
	edition.IsActive = false
	return edition, nil
}

// Delete removes an edition that has no registrations. When registrations
// exist the error is EDITION_HAS_REGISTRATIONS and the caller may choose
// DeleteWithRegistrations instead.
func (s *EditionService) Delete(ctx context.Context, id int64) error {
	count, err := s.registrations.CountByEdition(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count edition registrations")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrEditionHasRegistrations, fmt.Sprintf("edition has %d registrations; delete them first", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrEditionHasRegistrations, "edition is still referenced by registrations; delete them first")
		}
		return s.lookupError(err)
	}
	s.cache.Invalidate(ctx, activeEditionKey)
	s.cache.Invalidate(ctx, statsCachePattern)
	return nil
}

// DeleteWithRegistrations removes the edition's orders and registrations,
// then the edition itself. It returns the number of registrations removed.
func (s *EditionService) DeleteWithRegistrations(ctx context.Context, id int64) (int64, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return 0, s.lookupError(err)
	}

	removed, err := s.repo.DeleteDependents(ctx, id)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete edition registrations")
	}
	s.logger.Info("edition registrations deleted", zap.Int64("edition_id", id), zap.Int64("registrations", removed))

	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return removed, appErrors.Clone(appErrors.ErrEditionHasRegistrations, "edition gained new registrations during deletion; try again")
		}
		return removed, s.lookupError(err)
	}
	s.cache.Invalidate(ctx, activeEditionKey)
	s.cache.Invalidate(ctx, statsCachePattern)
	return removed, nil
}

func (s *EditionService) fromRequest(req EditionRequest) (*models.Edition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewFieldError(appErrors.Clone(appErrors.ErrValidation, "invalid edition payload"), FieldErrors(err))
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return &models.Edition{
		Year:          req.Year,
		Name:          req.Name,
		StartDate:     start,
		EndDate:       end,
		EventLocation: req.EventLocation,
	}, nil
}

func (s *EditionService) ensureYearFree(ctx context.Context, year int, excludeID int64) error {
	exists, err := s.repo.ExistsByYear(ctx, year, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check edition year")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an edition for %d already exists", year))
	}
	return nil
}

func (s *EditionService) lookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "edition not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "edition operation failed")
}
