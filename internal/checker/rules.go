package checker

import "regexp"

// Rules is the declarative per-site rule table driving the text heuristics.
// Adapting the checker to another booking engine is a data change here, not
// new control flow.
type Rules struct {
	// Provider names the booking engine these rules target
	Provider string

	// PackageMarker identifies package section labels on the booking page
	PackageMarker string

	// RoomKeywords mark a table row (or table) as describing a room type
	RoomKeywords []string

	// SymbolKeywords mark a table as a calendar grid
	SymbolKeywords []string

	// RowMarker is the literal separating room metadata from the calendar
	// cells inside a row's flattened text
	RowMarker string

	// RoomTypePattern extracts the room-type label from a row's text
	RoomTypePattern *regexp.Regexp

	// NextLabel is the visible text of the forward-pagination control
	NextLabel string

	// BookingHosts are hosts recognized as reservation systems when
	// resolving deep links from a property page
	BookingHosts []string

	// AncestorDepth bounds the upward phase of the calendar-table search
	AncestorDepth int

	// SiblingScan bounds the forward phase of the calendar-table search
	SiblingScan int
}

// ShirakawaRules returns the rule table for the Shirakawa-go reservation
// engine (489pro), the site the checker was originally built against.
func ShirakawaRules() Rules {
	return Rules{
		Provider:        "shirakawa",
		PackageMarker:   "Traditional Gassho",
		RoomKeywords:    []string{"tatami mats", "japanese"},
		SymbolKeywords:  []string{"○", "×", "-", "vacancy", "fully booked"},
		RowMarker:       "calendar",
		RoomTypePattern: regexp.MustCompile(`(?i)(\d+\s*Japanese\s*Tatami\s*mats)`),
		NextLabel:       "Next",
		BookingHosts:    []string{"489pro.com"},
		AncestorDepth:   5,
		SiblingScan:     20,
	}
}
