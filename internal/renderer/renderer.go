// Package renderer abstracts the headless-browser capability the checker
// needs: render a page, read its current content, and activate labeled
// pagination controls. The checker only sees these interfaces, so its
// algorithms can be exercised against a scripted fake instead of a real
// browser.
package renderer

import "context"

// Page is one independent browser tab. Concurrent checks each hold their
// own Page and share nothing in-page.
type Page interface {
	// Navigate loads the given URL and waits for the document to be ready
	Navigate(ctx context.Context, url string) error

	// Content returns the current rendered HTML of the page
	Content(ctx context.Context) (string, error)

	// ClickNext activates the first visible control whose text contains
	// label. It returns false when no such control is actionable.
	ClickNext(ctx context.Context, label string) (bool, error)

	// Close releases the tab
	Close() error
}

// Session owns one browser instance for the duration of a check cycle.
// It is never shared across overlapping cycles.
type Session interface {
	// NewPage opens an independent tab
	NewPage(ctx context.Context) (Page, error)

	// Close tears the browser down
	Close() error
}
