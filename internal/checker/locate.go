package checker

import "regexp"

// dateTokenPattern matches M/D shorthand tokens as rendered by booking
// calendar headers (no leading zeros)
var dateTokenPattern = regexp.MustCompile(`\d{1,2}/\d{1,2}`)

// LocateDateColumn returns the zero-based position of the first M/D token
// in blob equal to the target date's token, or -1 when the date is not in
// the rendered window. Calendars render a rolling 7-10 day window whose
// width varies by site and package, so the position is always recomputed
// from the current render instead of assuming fixed offsets.
func LocateDateColumn(blob string, target TargetDate) int {
	token := target.Token()
	for i, m := range dateTokenPattern.FindAllString(blob, -1) {
		// First occurrence wins; a duplicated header token would be a
		// rendering anomaly, and taking the leftmost keeps the column
		// aligned with the leftmost data cell.
		if m == token {
			return i
		}
	}
	return -1
}

// ContainsDateToken reports whether the target date's M/D token appears in
// the content as a standalone token. A plain substring check would match
// "8/1" inside "8/10", so token boundaries are honored.
func ContainsDateToken(content string, target TargetDate) bool {
	for _, m := range dateTokenPattern.FindAllString(content, -1) {
		if m == target.Token() {
			return true
		}
	}
	return false
}
