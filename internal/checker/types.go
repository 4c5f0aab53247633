package checker

import (
	"fmt"
	"time"
)

// Status is the decoded per-day availability state of one room
type Status string

const (
	StatusAvailable Status = "available"
	StatusSoldOut   Status = "sold_out"
	StatusNoSetup   Status = "no_setup"
	StatusUnknown   Status = "unknown"
)

// TargetDate is a configured calendar date being watched for openings.
// Comparison is always on the full date; the rendered M/D token is only a
// display format.
type TargetDate struct {
	t time.Time
}

// ParseTargetDate parses an ISO date (YYYY-MM-DD)
func ParseTargetDate(s string) (TargetDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TargetDate{}, fmt.Errorf("invalid target date %q: %w", s, err)
	}
	return TargetDate{t: t}, nil
}

// MustTargetDate is a test helper that panics on a bad date literal
func MustTargetDate(s string) TargetDate {
	d, err := ParseTargetDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ISO returns the date in YYYY-MM-DD form
func (d TargetDate) ISO() string {
	return d.t.Format("2006-01-02")
}

// Token returns the M/D shorthand used by booking calendar headers,
// without leading zeros (e.g. "8/1")
func (d TargetDate) Token() string {
	return fmt.Sprintf("%d/%d", int(d.t.Month()), d.t.Day())
}

// Time returns the underlying time value
func (d TargetDate) Time() time.Time {
	return d.t
}

// Within reports whether the date falls in [start, end], inclusive
func (d TargetDate) Within(start, end time.Time) bool {
	return !d.t.Before(start) && !d.t.After(end)
}

// AccommodationRef identifies a property to check: a display name, its
// public page, and any reservation deep links discovered for it
type AccommodationRef struct {
	Name        string
	ID          string
	Category    string
	PageURL     string
	BookingURLs []string
}

// RoomRow is one room-type row of a rendered calendar grid: its label and
// the dense symbol fragment that follows the row marker
type RoomRow struct {
	RoomType string
	Fragment string
}

// CalendarView is the currently rendered date-by-room grid for one package.
// It is rebuilt from scratch after every pagination; column indexes found
// against one view must never be reused against another.
type CalendarView struct {
	Header string
	Rows   []RoomRow
}

// PackageSection is a room/rate package discovered on a booking page,
// with its label, validity range, and associated calendar view (nil when
// no calendar table could be resolved near the label)
type PackageSection struct {
	Label string
	Start time.Time
	End   time.Time
	View  *CalendarView
}

// AvailabilityRecord is the unit of output: one open room on one date
type AvailabilityRecord struct {
	Accommodation string    `json:"accommodation"`
	RoomType      string    `json:"room_type"`
	Date          string    `json:"date"`
	Status        Status    `json:"status"`
	Price         string    `json:"price,omitempty"`
	BookingURL    string    `json:"booking_url"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}

// Key returns the deduplication key for a record. Overlapping package
// windows can surface the same slot twice within one cycle.
func (r AvailabilityRecord) Key() string {
	return r.Accommodation + "|" + r.Date + "|" + r.RoomType
}
