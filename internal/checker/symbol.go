package checker

import (
	"regexp"
	"strings"
)

// Symbol is one decoded calendar cell
type Symbol struct {
	Status Status
	// Price carries the raw price text ("JPY17,050") for available cells
	// that advertise one; empty otherwise
	Price string
}

// symbolPattern matches one encoded cell: a sold-out cross, an available
// circle optionally followed by a currency code and digit groups, or a
// no-setup dash. The fragment is dense, so no separators are assumed
// between tokens.
var symbolPattern = regexp.MustCompile(`×|○(?:[A-Z]{3}[0-9,]*)?|-`)

var priceDigits = regexp.MustCompile(`[A-Z]{3}[0-9][0-9,]*`)

// ParseSymbols scans a dense availability fragment left to right and
// returns the decoded symbols in encounter order. A fragment with no
// recognizable tokens yields an empty sequence, not an error: callers
// treat that as "no data for this row".
func ParseSymbols(fragment string) []Symbol {
	matches := symbolPattern.FindAllString(fragment, -1)
	symbols := make([]Symbol, 0, len(matches))
	for _, m := range matches {
		switch {
		case m == "×":
			symbols = append(symbols, Symbol{Status: StatusSoldOut})
		case m == "-":
			symbols = append(symbols, Symbol{Status: StatusNoSetup})
		case strings.HasPrefix(m, "○"):
			// A currency code with no digits still counts as available,
			// just without a price.
			symbols = append(symbols, Symbol{
				Status: StatusAvailable,
				Price:  priceDigits.FindString(m),
			})
		}
	}
	return symbols
}

// Canonical renders a symbol back to its canonical text form
func (s Symbol) Canonical() string {
	switch s.Status {
	case StatusSoldOut:
		return "×"
	case StatusNoSetup:
		return "-"
	case StatusAvailable:
		return "○" + s.Price
	default:
		return ""
	}
}

// CanonicalSequence renders a parsed sequence back to canonical text
func CanonicalSequence(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(s.Canonical())
	}
	return b.String()
}
