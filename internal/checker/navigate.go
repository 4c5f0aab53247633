package checker

import (
	"context"
	"time"

	"sjmori/vacancywatcher/internal/renderer"
	"sjmori/vacancywatcher/logger"
)

// NavState is the navigator's terminal or in-progress state
type NavState string

const (
	// StateSearching means the target date is not yet visible
	StateSearching NavState = "searching"
	// StateFound means the target date's token is in the rendered content
	StateFound NavState = "found"
	// StateExhausted means pagination ran out before the date appeared
	StateExhausted NavState = "exhausted"
)

// NavResult reports where the navigator stopped. Content always carries
// the final render, even on exhaustion, so callers can fall back to a
// best-effort extraction against whatever calendar is visible.
type NavResult struct {
	State    NavState
	Attempts int
	Content  string
}

// Navigator pages a booking calendar forward until the target date scrolls
// into view or the attempt bound is hit. Booking engines re-render the
// grid in place on every click and offer no completion event, so each
// click is followed by bounded content-change polling rather than a fixed
// sleep.
type Navigator struct {
	page          renderer.Page
	nextLabel     string
	maxAttempts   int
	settleTimeout time.Duration
	pollInterval  time.Duration
}

// NewNavigator creates a navigator over an already-navigated page
func NewNavigator(page renderer.Page, nextLabel string, maxAttempts int, settleTimeout time.Duration) *Navigator {
	return &Navigator{
		page:          page,
		nextLabel:     nextLabel,
		maxAttempts:   maxAttempts,
		settleTimeout: settleTimeout,
		pollInterval:  200 * time.Millisecond,
	}
}

// SeekDate drives the SEARCHING loop for one target date. It never treats
// exhaustion as an error; only renderer failures propagate.
func (n *Navigator) SeekDate(ctx context.Context, target TargetDate) (NavResult, error) {
	log := logger.ForWorker().WithField("target_date", target.ISO())
	attempts := 0

	for {
		content, err := n.page.Content(ctx)
		if err != nil {
			return NavResult{State: StateExhausted, Attempts: attempts}, err
		}

		if ContainsDateToken(content, target) {
			log.Debug().Int("attempts", attempts).Msg("Target date visible")
			return NavResult{State: StateFound, Attempts: attempts, Content: content}, nil
		}

		if attempts >= n.maxAttempts {
			log.Warn().Int("attempts", attempts).Msg("Pagination attempts exhausted")
			return NavResult{State: StateExhausted, Attempts: attempts, Content: content}, nil
		}

		clicked, err := n.page.ClickNext(ctx, n.nextLabel)
		if err != nil {
			return NavResult{State: StateExhausted, Attempts: attempts, Content: content}, err
		}
		if !clicked {
			log.Warn().Int("attempts", attempts).Msg("No actionable pagination control")
			return NavResult{State: StateExhausted, Attempts: attempts, Content: content}, nil
		}
		attempts++

		if err := n.waitSettle(ctx, content); err != nil {
			return NavResult{State: StateExhausted, Attempts: attempts, Content: content}, err
		}
	}
}

// waitSettle polls for the render to change after a pagination click,
// bounded by the settle timeout. When the content never changes within the
// bound (same week re-rendered, or a very slow site) the loop simply moves
// on and re-checks whatever is visible.
func (n *Navigator) waitSettle(ctx context.Context, previous string) error {
	deadline := time.Now().Add(n.settleTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.pollInterval):
		}
		content, err := n.page.Content(ctx)
		if err != nil {
			return err
		}
		if content != previous {
			return nil
		}
	}
	return nil
}
