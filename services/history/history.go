package history

import (
	"context"
	"time"

	"sjmori/vacancywatcher/internal/checker"
)

// Run status values persisted with each cycle summary
const (
	RunSuccess = "success"
	RunError   = "error"
)

// CheckRun summarizes one completed check cycle. Error carries the
// cycle-level failure message for RunError rows; pair-level failures only
// bump the Errors count.
type CheckRun struct {
	ID           int64     `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Status       string    `json:"status"`
	PairsChecked int       `json:"pairs_checked"`
	RecordsFound int       `json:"records_found"`
	Errors       int       `json:"errors"`
	Error        string    `json:"error,omitempty"`
}

// Store persists check runs and the availability records they produced
type Store interface {
	// RecordRun persists a completed check cycle summary
	RecordRun(ctx context.Context, run CheckRun) error

	// RecordAvailability persists a batch of availability records
	RecordAvailability(ctx context.Context, records []checker.AvailabilityRecord) error

	// RecentRuns returns the most recent check cycles, newest first
	RecentRuns(ctx context.Context, limit int) ([]CheckRun, error)

	// RecentAvailability returns the most recent availability records, newest first
	RecentAvailability(ctx context.Context, limit int) ([]checker.AvailabilityRecord, error)

	// Close closes the underlying connection
	Close() error
}
