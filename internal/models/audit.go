package models

import "time"

// Audited back-office actions.
const (
	AuditActionLogin                    = "LOGIN"
	AuditActionRegistrationStatusUpdate = "REGISTRATION_STATUS_UPDATE"
	AuditActionEditionCreate            = "EDITION_CREATE"
	AuditActionEditionUpdate            = "EDITION_UPDATE"
	AuditActionEditionActivate          = "EDITION_ACTIVATE"
	AuditActionEditionDeactivate        = "EDITION_DEACTIVATE"
	AuditActionEditionDelete            = "EDITION_DELETE"
	AuditActionOrderVerify              = "ORDER_VERIFY"
	AuditActionOrderCancel              = "ORDER_CANCEL"
	AuditActionOrderReconcile           = "ORDER_RECONCILE"
	AuditActionPrintBatchCreate         = "PRINT_BATCH_CREATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
