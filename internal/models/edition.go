package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Edition is one year's run of the camp. At most one edition is active.
type Edition struct {
	ID            int64     `db:"id" json:"id"`
	Year          int       `db:"year" json:"year"`
	Name          string    `db:"name" json:"name"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	EventLocation string    `db:"event_location" json:"event_location"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// EditionSelection scopes registration queries to one edition or to all of
// them. The zero value selects all editions.
type EditionSelection struct {
	ID int64
}

// AllEditions removes the edition constraint.
var AllEditions = EditionSelection{}

// SelectEdition scopes to a single edition. Non-positive ids select all editions.
func SelectEdition(id int64) EditionSelection {
	if id <= 0 {
		return AllEditions
	}
	return EditionSelection{ID: id}
}

// IsAll reports whether the selection places no edition constraint.
func (s EditionSelection) IsAll() bool {
	return s.ID <= 0
}

// EditionID returns the scoped id, or nil for AllEditions.
func (s EditionSelection) EditionID() *int64 {
	if s.IsAll() {
		return nil
	}
	id := s.ID
	return &id
}

func (s EditionSelection) String() string {
	if s.IsAll() {
		return "all"
	}
	return strconv.FormatInt(s.ID, 10)
}

// ParseEditionSelection accepts "", "all" or a positive edition id.
func ParseEditionSelection(raw string) (EditionSelection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return AllEditions, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return EditionSelection{}, fmt.Errorf("invalid edition %q", raw)
	}
	return SelectEdition(id), nil
}
