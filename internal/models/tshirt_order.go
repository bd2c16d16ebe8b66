package models

import "time"

// TShirtOrderStatus; pending is the only state that may change.
type TShirtOrderStatus string

const (
	OrderPending   TShirtOrderStatus = "pending"
	OrderVerified  TShirtOrderStatus = "verified"
	OrderCancelled TShirtOrderStatus = "cancelled"
)

// TShirtSizes offered in the order form.
var TShirtSizes = []string{"S", "M", "L", "XL"}

// TShirtOrder is a camper's paid T-shirt request. PaymentReference is not unique.
type TShirtOrder struct {
	ID               string            `db:"id" json:"id"`
	RegistrationID   string            `db:"registration_id" json:"registration_id"`
	EditionID        int64             `db:"edition_id" json:"edition_id"`
	Size             string            `db:"size" json:"size"`
	Quantity         int               `db:"quantity" json:"quantity"`
	PaymentReference string            `db:"payment_reference" json:"payment_reference"`
	Status           TShirtOrderStatus `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`

	// Joined from registrations for admin listings.
	RegistrantName  string `db:"registrant_name" json:"registrant_name,omitempty"`
	RegistrantPhone string `db:"registrant_phone" json:"registrant_phone,omitempty"`
}

// TShirtOrderFilter drives the admin order list.
type TShirtOrderFilter struct {
	EditionID *int64
	Status    TShirtOrderStatus
	Search    string
}

// PaymentReference is one row of an uploaded bank or mobile-money statement.
type PaymentReference struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Phone     string  `json:"phone"`
	Date      string  `json:"date"`
}

// ReconciliationReport aggregates the outcome of one reconciliation run.
type ReconciliationReport struct {
	VerifiedCount  int `json:"verified_count"`
	DuplicateCount int `json:"duplicate_count"`
	NoMatchCount   int `json:"no_match_count"`
}
