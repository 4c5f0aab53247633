package worker

import (
	"context"
	goerrors "errors"
	"sort"
	"sync"

	"sjmori/vacancywatcher/helpers"
	"sjmori/vacancywatcher/internal/checker"
	cerr "sjmori/vacancywatcher/pkg/errors"
)

// PairChecker checks one (accommodation, booking URL, target date) pair
type PairChecker interface {
	CheckPair(ctx context.Context, acc checker.AccommodationRef, bookingURL string, target checker.TargetDate) ([]checker.AvailabilityRecord, error)
}

// Pair is one unit of check work
type Pair struct {
	Acc        checker.AccommodationRef
	BookingURL string
	Date       checker.TargetDate
}

// CycleResult summarizes one orchestrated check pass
type CycleResult struct {
	Records      []checker.AvailabilityRecord
	PairsChecked int
	Errors       int
}

// Orchestrator fans check pairs out over a bounded pool of goroutines.
// A failing pair is logged and excluded; it never aborts the cycle.
type Orchestrator struct {
	checker       PairChecker
	maxConcurrent int
	logger        helpers.LoggerInterface
}

// NewOrchestrator creates an orchestrator with the given concurrency bound
func NewOrchestrator(pairChecker PairChecker, maxConcurrent int, logger helpers.LoggerInterface) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		checker:       pairChecker,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Run checks all pairs in parallel and merges the results. Duplicate
// records from overlapping package windows are dropped; the merged set is
// ordered newest first.
func (o *Orchestrator) Run(ctx context.Context, pairs []Pair) CycleResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []checker.AvailabilityRecord
		errs    int
	)

	sem := make(chan struct{}, o.maxConcurrent)

	for _, pair := range pairs {
		wg.Add(1)
		go func(p Pair) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				errs++
				mu.Unlock()
				return
			}

			found, err := o.checker.CheckPair(ctx, p.Acc, p.BookingURL, p.Date)
			if err != nil && isRetryable(err) && ctx.Err() == nil {
				// Rendering and navigation hiccups are usually transient;
				// one more attempt often saves the pair for this cycle.
				o.logger.LogInfo("Retrying %s for %s after transient failure", p.BookingURL, p.Date.ISO())
				found, err = o.checker.CheckPair(ctx, p.Acc, p.BookingURL, p.Date)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.LogError(p.Acc.Name, err)
				errs++
				return
			}
			records = append(records, found...)
		}(pair)
	}
	wg.Wait()

	return CycleResult{
		Records:      dedupe(records),
		PairsChecked: len(pairs),
		Errors:       errs,
	}
}

// isRetryable reports whether a pair failure is worth one more attempt
func isRetryable(err error) bool {
	var ce *cerr.CheckError
	return goerrors.As(err, &ce) && ce.IsRetryable()
}

// dedupe drops duplicate (accommodation, date, room) records and orders the
// rest newest first
func dedupe(records []checker.AvailabilityRecord) []checker.AvailabilityRecord {
	seen := make(map[string]bool, len(records))
	out := make([]checker.AvailabilityRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DiscoveredAt.After(out[j].DiscoveredAt)
	})
	return out
}
