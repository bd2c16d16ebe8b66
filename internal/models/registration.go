package models

import "time"

// RegistrationStatus tracks where a registration sits in admin review.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// Gender values accepted by the registration form.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Camp locations.
const (
	LocationHawassa    = "Hawassa"
	LocationAddisAbaba = "Addis Ababa"
)

// CanonicalGrades lists every schooling level the camp accepts, youngest first.
var CanonicalGrades = []string{"grade-7", "grade-8", "grade-9", "grade-10", "grade-11", "grade-12"}

// CanonicalLocations are always offered as location facets, in this order.
var CanonicalLocations = []string{LocationHawassa, LocationAddisAbaba}

// IsCanonicalGrade reports whether grade is in CanonicalGrades.
func IsCanonicalGrade(grade string) bool {
	for _, g := range CanonicalGrades {
		if g == grade {
			return true
		}
	}
	return false
}

// Registration is one camper's application.
// ParticipantID is set only while Status is approved.
type Registration struct {
	ID                  string             `db:"id" json:"id"`
	Name                string             `db:"name" json:"name"`
	Phone               string             `db:"phone" json:"phone"`
	Age                 string             `db:"age" json:"age"`
	Grade               string             `db:"grade" json:"grade"`
	Gender              string             `db:"gender" json:"gender"`
	Church              string             `db:"church" json:"church"`
	ParticipantLocation string             `db:"participant_location" json:"participant_location"`
	Status              RegistrationStatus `db:"status" json:"status"`
	ParticipantID       *string            `db:"participant_id" json:"participant_id"`
	EditionID           *int64             `db:"edition_id" json:"edition_id"`
	CreatedAt           time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at" json:"updated_at"`
}

// RegistrationCriteria narrows an in-memory registration list. Empty strings
// and "all" place no constraint.
type RegistrationCriteria struct {
	Search   string `form:"search" json:"search"`
	Status   string `form:"status" json:"status"`
	Grade    string `form:"grade" json:"grade"`
	Church   string `form:"church" json:"church"`
	Location string `form:"location" json:"location"`
}

// RegistrationFacets are the option lists the admin table offers as filters.
type RegistrationFacets struct {
	Grades    []string `json:"grades"`
	Locations []string `json:"locations"`
	Churches  []string `json:"churches"`
}

// RegistrationStats powers the dashboard counters.
type RegistrationStats struct {
	Total    int `db:"total" json:"total"`
	Approved int `db:"approved" json:"approved"`
	Pending  int `db:"pending" json:"pending"`
	Rejected int `db:"rejected" json:"rejected"`
}
