package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ParticipantIDRepository asks the database for the next participant id.
// The sequence lives in generate_participant_id so concurrent approvals
// cannot hand out the same number.
type ParticipantIDRepository struct {
	db *sqlx.DB
}

func NewParticipantIDRepository(db *sqlx.DB) *ParticipantIDRepository {
	return &ParticipantIDRepository{db: db}
}

// Next returns an id of the form BT{seq:03d}/{year} for the Ethiopian year.
func (r *ParticipantIDRepository) Next(ctx context.Context, ethiopianYear int) (string, error) {
	var id string
	if err := r.db.GetContext(ctx, &id, `SELECT generate_participant_id($1)`, fmt.Sprint(ethiopianYear)); err != nil {
		return "", fmt.Errorf("generate participant id: %w", err)
	}
	return id, nil
}
