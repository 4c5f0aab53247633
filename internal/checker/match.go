package checker

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// rangePattern matches the two-date validity range embedded in package
// labels, e.g. "2025/7/1 - 2025/9/30"
var rangePattern = regexp.MustCompile(`(\d{4}/\d{1,2}/\d{1,2})\s*-\s*(\d{4}/\d{1,2}/\d{1,2})`)

// MatchPackages scans a rendered booking page for package sections whose
// label carries the rule table's package marker and a parseable validity
// range covering the target date (inclusive, full calendar-date
// comparison). Each matching package gets its calendar table resolved via
// a bounded ancestors-then-siblings search; packages with no resolvable
// table are still returned, with a nil View, so the caller can log and
// skip them without failing the whole check.
func MatchPackages(doc *goquery.Document, rules Rules, target TargetDate) []PackageSection {
	var packages []PackageSection
	seen := make(map[string]bool)

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if !strings.Contains(text, rules.PackageMarker) {
			return
		}
		m := rangePattern.FindStringSubmatch(text)
		if m == nil {
			return
		}
		// Containers enclosing a deeper candidate also match on text;
		// keep only the innermost element carrying the label.
		if hasMatchingDescendant(s, rules) {
			return
		}

		start, err1 := time.Parse("2006/1/2", m[1])
		end, err2 := time.Parse("2006/1/2", m[2])
		if err1 != nil || err2 != nil {
			return
		}
		if !target.Within(start, end) {
			return
		}

		label := cleanLabel(text, rules)
		dedupeKey := label + "|" + m[1] + "|" + m[2]
		if seen[dedupeKey] {
			return
		}
		seen[dedupeKey] = true

		pkg := PackageSection{Label: label, Start: start, End: end}
		if table := findCalendarTable(s, rules); table != nil {
			pkg.View = BuildCalendarView(table, rules)
		}
		packages = append(packages, pkg)
	})

	return packages
}

// hasMatchingDescendant reports whether any child element of s would also
// qualify as a package label
func hasMatchingDescendant(s *goquery.Selection, rules Rules) bool {
	found := false
	s.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		text := c.Text()
		if strings.Contains(text, rules.PackageMarker) && rangePattern.MatchString(text) {
			found = true
			return false
		}
		return true
	})
	return found
}

// cleanLabel trims a label down to the package title line. The validity
// range stays in the label; it distinguishes seasonal variants of the same
// package family.
func cleanLabel(text string, rules Rules) string {
	if idx := strings.Index(text, rules.PackageMarker); idx >= 0 {
		text = text[idx:]
	}
	if loc := rangePattern.FindStringIndex(text); loc != nil {
		end := loc[1]
		if end < len(text) && text[end] == ')' {
			end++
		}
		text = text[:end]
	}
	label := strings.Join(strings.Fields(text), " ")
	// Truncate on runes; package labels carry Japanese text
	if runes := []rune(label); len(runes) > 120 {
		label = string(runes[:120])
	}
	return strings.TrimSpace(label)
}

// findCalendarTable resolves the calendar table associated with a package
// label. Booking-engine markup nests the calendar either inside the same
// container as the label or shortly after it in document order, so the
// search is two-phase and bounded: ancestors first, then forward siblings.
// An unbounded search would risk attaching the wrong calendar when several
// packages share a page.
func findCalendarTable(label *goquery.Selection, rules Rules) *goquery.Selection {
	parent := label.Parent()
	for depth := 0; depth < rules.AncestorDepth && parent.Length() > 0; depth++ {
		var found *goquery.Selection
		parent.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
			if isCalendarTable(t, rules) {
				found = t
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
		parent = parent.Parent()
	}

	sibling := label.Next()
	for i := 0; i < rules.SiblingScan && sibling.Length() > 0; i++ {
		if goquery.NodeName(sibling) == "table" && isCalendarTable(sibling, rules) {
			return sibling
		}
		var found *goquery.Selection
		sibling.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
			if isCalendarTable(t, rules) {
				found = t
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
		sibling = sibling.Next()
	}

	return nil
}

// isCalendarTable reports whether a table looks like a date-by-room grid:
// it must mention at least one room-type keyword and at least one
// availability-symbol keyword
func isCalendarTable(table *goquery.Selection, rules Rules) bool {
	text := strings.ToLower(table.Text())
	hasRoom := false
	for _, kw := range rules.RoomKeywords {
		if strings.Contains(text, kw) {
			hasRoom = true
			break
		}
	}
	if !hasRoom {
		return false
	}
	for _, kw := range rules.SymbolKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// BuildCalendarView flattens a calendar table into the header blob and the
// room rows the extractor consumes. The view captures one render only; a
// re-paged table must be rebuilt because column positions shift.
func BuildCalendarView(table *goquery.Selection, rules Rules) *CalendarView {
	view := &CalendarView{}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		text := rowText(row)
		lower := strings.ToLower(text)

		if view.Header == "" && dateTokenPattern.MatchString(text) && !containsAny(lower, rules.RoomKeywords) {
			view.Header = strings.Join(strings.Fields(text), " ")
			return
		}

		if !containsAny(lower, rules.RoomKeywords) {
			return
		}
		marker := strings.Index(lower, rules.RowMarker)
		if marker < 0 {
			return
		}

		roomType := ""
		if m := rules.RoomTypePattern.FindString(text); m != "" {
			roomType = strings.Join(strings.Fields(m), " ")
		}
		view.Rows = append(view.Rows, RoomRow{
			RoomType: roomType,
			Fragment: text[marker+len(rules.RowMarker):],
		})
	})

	return view
}

// rowText joins a row's cell texts with a space so that date tokens in
// adjacent cells never merge into one another
func rowText(row *goquery.Selection) string {
	cells := row.Find("th, td")
	if cells.Length() == 0 {
		return row.Text()
	}
	parts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(c.Text()))
	})
	return strings.Join(parts, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
