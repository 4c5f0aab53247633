package status

import (
	"sync"
	"time"

	"sjmori/vacancywatcher/internal/checker"
)

// Tracker keeps in-memory operational state for the status API.
// All methods are safe for concurrent use.
type Tracker struct {
	mu sync.RWMutex

	startedAt     time.Time
	cyclesRun     int
	lastCycleAt   time.Time
	lastDuration  time.Duration
	lastPairCount int
	lastErrors    int
	totalPairs    int
	totalErrors   int
	totalRecords  int
	lastRecords   []checker.AvailabilityRecord
	lastError     string
}

// NewTracker creates a tracker with the uptime clock started now
func NewTracker() *Tracker {
	return &Tracker{startedAt: time.Now()}
}

// CycleFinished records the outcome of one completed check cycle
func (t *Tracker) CycleFinished(duration time.Duration, pairs, errors int, records []checker.AvailabilityRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cyclesRun++
	t.lastCycleAt = time.Now()
	t.lastDuration = duration
	t.lastPairCount = pairs
	t.lastErrors = errors
	t.totalPairs += pairs
	t.totalErrors += errors
	t.totalRecords += len(records)
	t.lastRecords = records
	t.lastError = ""
}

// CycleFailed records a cycle that could not run at all
func (t *Tracker) CycleFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cyclesRun++
	t.lastCycleAt = time.Now()
	t.lastError = err.Error()
}

// Snapshot is the JSON shape served by the status API
type Snapshot struct {
	Uptime        string                       `json:"uptime"`
	CyclesRun     int                          `json:"cycles_run"`
	LastCycleAt   *time.Time                   `json:"last_cycle_at,omitempty"`
	LastDuration  string                       `json:"last_duration,omitempty"`
	LastPairCount int                          `json:"last_pair_count"`
	LastErrors    int                          `json:"last_errors"`
	ErrorRate     float64                      `json:"error_rate"`
	TotalRecords  int                          `json:"total_records"`
	LastError     string                       `json:"last_error,omitempty"`
	LastRecords   []checker.AvailabilityRecord `json:"last_records"`
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{
		Uptime:        time.Since(t.startedAt).Round(time.Second).String(),
		CyclesRun:     t.cyclesRun,
		LastPairCount: t.lastPairCount,
		LastErrors:    t.lastErrors,
		TotalRecords:  t.totalRecords,
		LastError:     t.lastError,
		LastRecords:   append([]checker.AvailabilityRecord(nil), t.lastRecords...),
	}
	if t.totalPairs > 0 {
		snap.ErrorRate = float64(t.totalErrors) / float64(t.totalPairs)
	}
	if !t.lastCycleAt.IsZero() {
		at := t.lastCycleAt
		snap.LastCycleAt = &at
		snap.LastDuration = t.lastDuration.Round(time.Millisecond).String()
	}
	if snap.LastRecords == nil {
		snap.LastRecords = []checker.AvailabilityRecord{}
	}
	return snap
}
