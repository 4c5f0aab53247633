// Package checker implements the availability-matching and
// calendar-navigation engine: locating a target date across paginated,
// script-rendered booking calendars and extracting structured availability
// records for it.
package checker

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjmori/vacancywatcher/internal/renderer"
	"sjmori/vacancywatcher/logger"
	"sjmori/vacancywatcher/pkg/errors"
)

// Checker runs the per-(accommodation, date) pipeline:
// navigate → match packages → locate column → parse symbols → records.
type Checker struct {
	rules         Rules
	session       renderer.Session
	maxAttempts   int
	settleTimeout time.Duration
	now           func() time.Time
}

// New creates a checker bound to one rendering session
func New(rules Rules, session renderer.Session, maxAttempts int, settleTimeout time.Duration) *Checker {
	return &Checker{
		rules:         rules,
		session:       session,
		maxAttempts:   maxAttempts,
		settleTimeout: settleTimeout,
		now:           time.Now,
	}
}

// CheckPair checks one booking URL for one target date. Navigation
// exhaustion degrades to a best-effort extraction against the visible
// calendar; viewless packages are skipped with a log line. Only renderer
// and page-level failures surface as errors.
func (c *Checker) CheckPair(ctx context.Context, acc AccommodationRef, bookingURL string, target TargetDate) ([]AvailabilityRecord, error) {
	log := logger.ForChecker(acc.Name).WithField("target_date", target.ISO())

	page, err := c.session.NewPage(ctx)
	if err != nil {
		return nil, errors.NewRendering("checker", "failed to open page", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, bookingURL); err != nil {
		return nil, err
	}

	nav := NewNavigator(page, c.rules.NextLabel, c.maxAttempts, c.settleTimeout)
	res, err := nav.SeekDate(ctx, target)
	if err != nil {
		return nil, err
	}
	if res.State == StateExhausted {
		log.Warn().Int("attempts", res.Attempts).Msg("Target date never became visible; using best-effort view")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Content))
	if err != nil {
		return nil, errors.NewParsing("checker", "failed to parse rendered page", err)
	}

	name := acc.Name
	if name == "" {
		name = extractAccommodationName(doc)
	}

	packages := MatchPackages(doc, c.rules, target)
	log.Debug().Int("packages", len(packages)).Msg("Matched packages")

	var records []AvailabilityRecord
	for _, pkg := range packages {
		if pkg.View == nil {
			log.Warn().Str("package", pkg.Label).Msg("Package has no resolvable calendar view; skipping")
			continue
		}
		records = append(records, ExtractRecords(name, pkg, target, bookingURL, c.now())...)
	}

	log.Debug().Int("records", len(records)).Msg("Check complete")
	return records, nil
}

// extractAccommodationName pulls a display name out of the booking page
// when the accommodation came from a bare deep link
func extractAccommodationName(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return strings.Join(strings.Fields(h1), " ")
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if idx := strings.Index(title, "|"); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	if title == "" {
		return "Unknown Accommodation"
	}
	return title
}
