package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/pkg/cache"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
)

type registrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	List(ctx context.Context, editionID *int64) ([]models.Registration, error)
	UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error)
	AssignParticipantID(ctx context.Context, id, participantID string) (*models.Registration, error)
	Stats(ctx context.Context, editionID *int64) (*models.RegistrationStats, error)
}

type activeEditionReader interface {
	FindActive(ctx context.Context) (*models.Edition, error)
}

// ParticipantIDIssuer hands out participant ids for an Ethiopian calendar year.
type ParticipantIDIssuer interface {
	Next(ctx context.Context, ethiopianYear int) (string, error)
}

var statsCachePattern = cache.Key("stats", "*")

// RegistrationPage is one page of the filtered admin registration table.
type RegistrationPage struct {
	Items      []models.Registration     `json:"items"`
	Facets     models.RegistrationFacets `json:"facets"`
	Pagination *models.Pagination        `json:"-"`
}

// RegistrationService owns the registration lifecycle.
type RegistrationService struct {
	repo      registrationRepository
	issuer    ParticipantIDIssuer
	editions  activeEditionReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService wires the service. cache and metrics may be nil.
func NewRegistrationService(repo registrationRepository, issuer ParticipantIDIssuer, editions activeEditionReader, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		repo:      repo,
		issuer:    issuer,
		editions:  editions,
		cache:     cacheSvc,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Register validates a completed form and stores it as a pending registration
// in the active edition.
func (s *RegistrationService) Register(ctx context.Context, form RegistrationForm) (*models.Registration, error) {
	form = form.Normalized()
	fields := ValidateStep(form, StepPersonal)
	for k, v := range ValidateStep(form, StepChurch) {
		fields[k] = v
	}
	if len(fields) == 0 {
		if err := s.validator.Struct(form); err != nil {
			fields = FieldErrors(err)
		}
	}
	if len(fields) > 0 {
		return nil, NewFieldError(appErrors.Clone(appErrors.ErrValidation, "registration form is incomplete"), fields)
	}

	edition, err := s.editions.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoActiveEdition, "registration is closed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active edition")
	}

	location := form.ParticipantLocation
	if location == "" {
		location = edition.EventLocation
	}
	editionID := edition.ID
	reg := &models.Registration{
		Name:                strings.TrimSpace(form.FirstName) + " " + strings.TrimSpace(form.FathersName),
		Phone:               form.Phone,
		Age:                 form.Age,
		Grade:               form.Grade,
		Gender:              form.Gender,
		Church:              form.Church,
		ParticipantLocation: location,
		EditionID:           &editionID,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}

	s.cache.Invalidate(ctx, statsCachePattern)
	return reg, nil
}

// Get returns a registration by id.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// List returns every registration in the selection, newest first.
func (s *RegistrationService) List(ctx context.Context, sel models.EditionSelection) ([]models.Registration, error) {
	regs, err := s.repo.List(ctx, sel.EditionID())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	return regs, nil
}

// Browse filters the selection in memory and returns one page plus facets.
func (s *RegistrationService) Browse(ctx context.Context, sel models.EditionSelection, criteria models.RegistrationCriteria, page, pageSize int) (*RegistrationPage, error) {
	regs, err := s.List(ctx, sel)
	if err != nil {
		return nil, err
	}
	filtered := FilterRegistrations(regs, criteria)

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return &RegistrationPage{
		Items:      filtered[start:end],
		Facets:     Facets(regs),
		Pagination: &models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(filtered)},
	}, nil
}

// UpdateStatus moves a registration to status. Approvals then request a
// participant id; if that second step fails the status change still stands
// and the registration is returned without an id.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}

	reg, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "There was an error updating the registration status.")
	}
	s.metrics.RecordStatusChange(status)
	s.cache.Invalidate(ctx, statsCachePattern)

	if status == models.RegistrationApproved {
		reg = s.issueParticipantID(ctx, reg)
	}
	return reg, nil
}

func (s *RegistrationService) issueParticipantID(ctx context.Context, reg *models.Registration) *models.Registration {
	year := EthiopianYear(s.now())
	pid, err := s.issuer.Next(ctx, year)
	if err != nil {
		s.metrics.RecordParticipantIDFailure()
		s.logger.Warn("participant id generation failed", zap.String("registration_id", reg.ID), zap.Int("year", year), zap.Error(err))
		return reg
	}

	updated, err := s.repo.AssignParticipantID(ctx, reg.ID, pid)
	if err != nil {
		s.metrics.RecordParticipantIDFailure()
		s.logger.Warn("participant id assignment failed", zap.String("registration_id", reg.ID), zap.String("participant_id", pid), zap.Error(err))
		return reg
	}
	return updated
}

// Stats returns the dashboard counters for the selection.
func (s *RegistrationService) Stats(ctx context.Context, sel models.EditionSelection) (*models.RegistrationStats, error) {
	key := cache.Key("stats", sel.String())
	var cached models.RegistrationStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.repo.Stats(ctx, sel.EditionID())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration stats")
	}
	s.cache.Set(ctx, key, stats, 0)
	return stats, nil
}
