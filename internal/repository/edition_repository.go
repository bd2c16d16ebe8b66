package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/youth-camp-api/internal/models"
)

const editionColumns = "id, year, name, start_date, end_date, event_location, is_active, created_at"

// EditionRepository handles persistence for camp editions.
type EditionRepository struct {
	db *sqlx.DB
}

// NewEditionRepository instantiates an edition repository.
func NewEditionRepository(db *sqlx.DB) *EditionRepository {
	return &EditionRepository{db: db}
}

// List returns all editions, most recent start date first.
func (r *EditionRepository) List(ctx context.Context) ([]models.Edition, error) {
	editions := make([]models.Edition, 0)
	query := "SELECT " + editionColumns + " FROM editions ORDER BY start_date DESC, id DESC"
	if err := r.db.SelectContext(ctx, &editions, query); err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}
	return editions, nil
}

// FindByID loads an edition; sql.ErrNoRows is returned unwrapped.
func (r *EditionRepository) FindByID(ctx context.Context, id int64) (*models.Edition, error) {
	var edition models.Edition
	if err := r.db.GetContext(ctx, &edition, "SELECT "+editionColumns+" FROM editions WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &edition, nil
}

// FindActive returns the active edition or sql.ErrNoRows.
func (r *EditionRepository) FindActive(ctx context.Context) (*models.Edition, error) {
	var edition models.Edition
	if err := r.db.GetContext(ctx, &edition, "SELECT "+editionColumns+" FROM editions WHERE is_active = TRUE ORDER BY id LIMIT 1"); err != nil {
		return nil, err
	}
	return &edition, nil
}

// FindLatest returns the edition with the most recent start date or sql.ErrNoRows.
func (r *EditionRepository) FindLatest(ctx context.Context) (*models.Edition, error) {
	var edition models.Edition
	if err := r.db.GetContext(ctx, &edition, "SELECT "+editionColumns+" FROM editions ORDER BY start_date DESC, id DESC LIMIT 1"); err != nil {
		return nil, err
	}
	return &edition, nil
}

// ExistsByYear reports whether another edition already uses year.
func (r *EditionRepository) ExistsByYear(ctx context.Context, year int, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM editions WHERE year = $1"
	args := []interface{}{year}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check edition year: %w", err)
	}
	return true, nil
}

// Create inserts an edition and fills in its generated id and timestamp.
func (r *EditionRepository) Create(ctx context.Context, edition *models.Edition) error {
	const query = `INSERT INTO editions (year, name, start_date, end_date, event_location, is_active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, edition.Year, edition.Name, edition.StartDate, edition.EndDate, edition.EventLocation, edition.IsActive)
	if err := row.Scan(&edition.ID, &edition.CreatedAt); err != nil {
		return fmt.Errorf("create edition: %w", err)
	}
	return nil
}

// Update modifies the descriptive fields of an edition. Activation is separate.
func (r *EditionRepository) Update(ctx context.Context, edition *models.Edition) error {
	const query = `UPDATE editions SET year = :year, name = :name, start_date = :start_date, end_date = :end_date, event_location = :event_location WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, edition)
	if err != nil {
		return fmt.Errorf("update edition: %w", err)
	}
	return expectAffected(res)
}

// DeactivateAllExcept clears is_active on every edition other than id.
func (r *EditionRepository) DeactivateAllExcept(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE editions SET is_active = FALSE WHERE is_active = TRUE AND id <> $1`, id); err != nil {
		return fmt.Errorf("deactivate other editions: %w", err)
	}
	return nil
}

// SetActive toggles a single edition.
func (r *EditionRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE editions SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set edition active: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an edition. Foreign-key violations are returned wrapped.
func (r *EditionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM editions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete edition: %w", err)
	}
	return expectAffected(res)
}

// DeleteDependents removes the T-shirt orders and registrations of an edition
// in one transaction and returns how many registrations were removed.
func (r *EditionRepository) DeleteDependents(ctx context.Context, id int64) (removed int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete dependents tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tshirt_orders WHERE edition_id = $1`, id); err != nil {
		return 0, fmt.Errorf("delete edition orders: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE edition_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete edition registrations: %w", err)
	}
	if removed, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("count deleted registrations: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete dependents tx: %w", err)
	}
	return removed, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
