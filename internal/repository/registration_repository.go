package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

const registrationColumns = "id, name, phone, age, grade, gender, church, participant_location, status, participant_id, edition_id, created_at, updated_at"

// RegistrationRepository handles persistence for camper registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository instantiates a registration repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a new pending registration.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	reg.Status = models.RegistrationPending
	reg.ParticipantID = nil

	const query = `INSERT INTO registrations (id, name, phone, age, grade, gender, church, participant_location, status, participant_id, edition_id, created_at, updated_at) VALUES (:id, :name, :phone, :age, :grade, :gender, :church, :participant_location, :status, :participant_id, :edition_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByID loads a registration; sql.ErrNoRows is returned unwrapped.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE id = $1"
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// List returns registrations newest first, optionally scoped to one edition.
func (r *RegistrationRepository) List(ctx context.Context, editionID *int64) ([]models.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations"
	var args []interface{}
	if editionID != nil {
		query += " WHERE edition_id = $1"
		args = append(args, *editionID)
	}
	query += " ORDER BY created_at DESC"

	regs := make([]models.Registration, 0)
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// FindByPhoneInEdition returns the newest registration with phone in the edition.
func (r *RegistrationRepository) FindByPhoneInEdition(ctx context.Context, phone string, editionID int64) (*models.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE phone = $1 AND edition_id = $2 ORDER BY created_at DESC LIMIT 1"
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, phone, editionID); err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateStatus sets the status and clears any participant id, returning the
// stored row. Issuing a new id for approvals is a separate step.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus) (*models.Registration, error) {
	query := "UPDATE registrations SET status = $2, participant_id = NULL, updated_at = $3 WHERE id = $1 RETURNING " + registrationColumns
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id, status, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &reg, nil
}

// AssignParticipantID stores an issued participant id on an approved registration.
func (r *RegistrationRepository) AssignParticipantID(ctx context.Context, id, participantID string) (*models.Registration, error) {
	query := "UPDATE registrations SET participant_id = $2, updated_at = $3 WHERE id = $1 AND status = 'approved' RETURNING " + registrationColumns
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id, participantID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("assign participant id: %w", err)
	}
	return &reg, nil
}

// Stats counts registrations per status, optionally within one edition.
func (r *RegistrationRepository) Stats(ctx context.Context, editionID *int64) (*models.RegistrationStats, error) {
	query := `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM registrations`
	var args []interface{}
	if editionID != nil {
		query += " WHERE edition_id = $1"
		args = append(args, *editionID)
	}

	var stats models.RegistrationStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("registration stats: %w", err)
	}
	return &stats, nil
}

// CountByEdition returns how many registrations reference the edition.
func (r *RegistrationRepository) CountByEdition(ctx context.Context, editionID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM registrations WHERE edition_id = $1`, editionID); err != nil {
		return 0, fmt.Errorf("count edition registrations: %w", err)
	}
	return count, nil
}
