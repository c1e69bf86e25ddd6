package model

import "time"

// Catalog sync run states.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusError     = "error"
)

// SyncProgress is the persisted resumption state of the catalog sync job.
// An interrupted run resumes at CurrentSet instead of restarting.
type SyncProgress struct {
	CurrentSet     string    `json:"current_set"`
	SetsCompleted  int       `json:"sets_completed"`
	TotalProcessed int       `json:"total_processed"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
