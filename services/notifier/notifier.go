package notifier

import (
	"context"

	"sjmori/vacancywatcher/internal/checker"
)

// Notifier represents a service for delivering vacancy alerts
type Notifier interface {
	// Notify delivers an alert for the given availability record
	// Records suppressed by a recent identical alert are silently skipped
	Notify(ctx context.Context, record checker.AvailabilityRecord) error

	// NotifyBatch delivers alerts for a batch of records
	NotifyBatch(ctx context.Context, records []checker.AvailabilityRecord) error
}
