package models

import "time"

// PrintBatchStatus of an ID card rendering job.
type PrintBatchStatus string

const (
	PrintBatchQueued     PrintBatchStatus = "queued"
	PrintBatchProcessing PrintBatchStatus = "processing"
	PrintBatchReady      PrintBatchStatus = "ready"
	PrintBatchFailed     PrintBatchStatus = "failed"
)

// PrintBatch tracks an asynchronous participant ID card PDF.
type PrintBatch struct {
	ID          string               `json:"id"`
	Edition     string               `json:"edition"`
	Criteria    RegistrationCriteria `json:"criteria"`
	Status      PrintBatchStatus     `json:"status"`
	CardCount   int                  `json:"card_count"`
	Error       string               `json:"error,omitempty"`
	DownloadURL string               `json:"download_url,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	RequestedBy string               `json:"requested_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}
