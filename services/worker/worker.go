package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjmori/vacancywatcher/config"
	"sjmori/vacancywatcher/helpers"
	"sjmori/vacancywatcher/internal/checker"
	"sjmori/vacancywatcher/internal/renderer"
	"sjmori/vacancywatcher/services/history"
	"sjmori/vacancywatcher/services/notifier"
	"sjmori/vacancywatcher/services/publisher"
	"sjmori/vacancywatcher/services/status"
)

// SessionFactory opens a fresh rendering session for one check cycle
type SessionFactory func(ctx context.Context) (renderer.Session, error)

// Worker drives the periodic check cycle: discover accommodations, fan out
// the (accommodation, date) pairs, then deliver, publish, and persist the
// results. Cycles run one at a time; a cycle that overruns the interval
// simply delays the next one.
type Worker struct {
	cfg        config.Config
	rules      checker.Rules
	targets    []checker.TargetDate
	newSession SessionFactory
	discoverer *checker.Discoverer
	notifier   notifier.Notifier
	publisher  publisher.Publisher
	store      history.Store
	tracker    *status.Tracker
	logger     helpers.LoggerInterface
}

// NewWorker creates a worker. discoverer, pub, and store may be nil when the
// corresponding integration is not configured.
func NewWorker(
	cfg config.Config,
	rules checker.Rules,
	targets []checker.TargetDate,
	newSession SessionFactory,
	discoverer *checker.Discoverer,
	alerts notifier.Notifier,
	pub publisher.Publisher,
	store history.Store,
	tracker *status.Tracker,
	logger helpers.LoggerInterface,
) *Worker {
	return &Worker{
		cfg:        cfg,
		rules:      rules,
		targets:    targets,
		newSession: newSession,
		discoverer: discoverer,
		notifier:   alerts,
		publisher:  pub,
		store:      store,
		tracker:    tracker,
		logger:     logger,
	}
}

// Start runs check cycles until the context is cancelled. The first cycle
// starts immediately.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.CheckInterval)
	defer ticker.Stop()

	w.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle performs one full check pass
func (w *Worker) runCycle(ctx context.Context) {
	start := time.Now()

	session, err := w.newSession(ctx)
	if err != nil {
		// A failed browser launch costs this cycle, not the process
		w.logger.LogError("worker", err)
		w.tracker.CycleFailed(err)
		w.recordRun(ctx, start, history.RunError, err.Error(), 0, 0, 1)
		return
	}
	defer session.Close()

	pairs := w.buildPairs(ctx)
	if len(pairs) == 0 {
		w.logger.LogInfo("No check pairs this cycle")
		w.tracker.CycleFinished(time.Since(start), 0, 0, nil)
		w.recordRun(ctx, start, history.RunSuccess, "", 0, 0, 0)
		return
	}

	chk := checker.New(w.rules, session, w.cfg.NavMaxAttempts, w.cfg.SettleTimeout)
	orch := NewOrchestrator(chk, w.cfg.MaxConcurrent, w.logger)
	result := orch.Run(ctx, pairs)

	if err := w.notifier.NotifyBatch(ctx, result.Records); err != nil {
		w.logger.LogError("worker", err)
	}
	w.publish(result.Records)
	w.persist(ctx, result)

	elapsed := time.Since(start)
	w.tracker.CycleFinished(elapsed, result.PairsChecked, result.Errors, result.Records)
	w.recordRun(ctx, start, history.RunSuccess, "", result.PairsChecked, len(result.Records), result.Errors)

	if w.cfg.Environment != "production" {
		w.logger.LogInfo("Cycle finished: %d pairs, %d records, %d errors in %s",
			result.PairsChecked, len(result.Records), result.Errors, elapsed)
	}
}

// buildPairs crosses the configured sources with the target dates.
// Accommodations come from the listing crawl when configured, plus any
// explicit booking deep links.
func (w *Worker) buildPairs(ctx context.Context) []Pair {
	type source struct {
		acc checker.AccommodationRef
		url string
	}
	var sources []source

	if w.discoverer != nil {
		refs, err := w.discoverer.Accommodations(ctx)
		if err != nil {
			w.logger.LogError("discoverer", err)
		}
		for _, ref := range refs {
			bookingURL, err := w.discoverer.ResolveBookingURL(ctx, ref)
			if err != nil {
				w.logger.LogError("discoverer", err)
				continue
			}
			if bookingURL == "" {
				w.logger.LogInfo("%s has no online booking system; skipping", ref.Name)
				continue
			}
			ref.BookingURLs = []string{bookingURL}
			sources = append(sources, source{acc: ref, url: bookingURL})
		}
	}

	for _, bookingURL := range w.cfg.BookingURLs {
		sources = append(sources, source{
			acc: checker.AccommodationRef{BookingURLs: []string{bookingURL}},
			url: bookingURL,
		})
	}

	var pairs []Pair
	for _, src := range sources {
		for _, target := range w.targets {
			pairs = append(pairs, Pair{Acc: src.acc, BookingURL: src.url, Date: target})
		}
	}
	return pairs
}

// publish sends each record to the stream and trims afterwards
func (w *Worker) publish(records []checker.AvailabilityRecord) {
	if w.publisher == nil {
		return
	}

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			w.logger.LogError("publisher", err)
			continue
		}
		if err := w.publisher.Publish(w.rules.Provider, data); err != nil {
			w.logger.LogError("publisher", err)
		}
	}

	if err := w.publisher.TrimStreams(); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
}

// persist writes the cycle's availability records to the history store
func (w *Worker) persist(ctx context.Context, result CycleResult) {
	if w.store == nil {
		return
	}
	if err := w.store.RecordAvailability(ctx, result.Records); err != nil {
		w.logger.LogError("history", err)
	}
}

// recordRun writes the cycle summary row
func (w *Worker) recordRun(ctx context.Context, start time.Time, runStatus, errMsg string, pairs, records, errs int) {
	if w.store == nil {
		return
	}
	run := history.CheckRun{
		StartedAt:    start,
		FinishedAt:   time.Now(),
		Status:       runStatus,
		PairsChecked: pairs,
		RecordsFound: records,
		Errors:       errs,
		Error:        errMsg,
	}
	if err := w.store.RecordRun(ctx, run); err != nil {
		w.logger.LogError("history", err)
	}
}
