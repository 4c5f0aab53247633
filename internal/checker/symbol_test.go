package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSymbolsDenseFragment(t *testing.T) {
	symbols := ParseSymbols("××○JPY17,050××××")

	assert.Len(t, symbols, 7)
	assert.Equal(t, StatusSoldOut, symbols[0].Status)
	assert.Equal(t, StatusSoldOut, symbols[1].Status)
	assert.Equal(t, StatusAvailable, symbols[2].Status)
	assert.Equal(t, "JPY17,050", symbols[2].Price)
	for i := 3; i < 7; i++ {
		assert.Equal(t, StatusSoldOut, symbols[i].Status)
	}
}

func TestParseSymbolsMixed(t *testing.T) {
	symbols := ParseSymbols("○JPY8,800-×○")

	assert.Len(t, symbols, 4)
	assert.Equal(t, StatusAvailable, symbols[0].Status)
	assert.Equal(t, "JPY8,800", symbols[0].Price)
	assert.Equal(t, StatusNoSetup, symbols[1].Status)
	assert.Equal(t, StatusSoldOut, symbols[2].Status)
	assert.Equal(t, StatusAvailable, symbols[3].Status)
	assert.Equal(t, "", symbols[3].Price)
}

func TestParseSymbolsBareCircle(t *testing.T) {
	symbols := ParseSymbols("○")

	assert.Len(t, symbols, 1)
	assert.Equal(t, StatusAvailable, symbols[0].Status)
	assert.Empty(t, symbols[0].Price)
}

func TestParseSymbolsCurrencyWithoutDigits(t *testing.T) {
	// A circle followed by a bare currency code still means available
	symbols := ParseSymbols("○JPY×")

	assert.Len(t, symbols, 2)
	assert.Equal(t, StatusAvailable, symbols[0].Status)
	assert.Empty(t, symbols[0].Price)
	assert.Equal(t, StatusSoldOut, symbols[1].Status)
}

func TestParseSymbolsIgnoresSurroundingText(t *testing.T) {
	symbols := ParseSymbols("  ××○JPY12,100 ")

	assert.Len(t, symbols, 3)
	assert.Equal(t, StatusAvailable, symbols[2].Status)
}

func TestParseSymbolsEmptyFragment(t *testing.T) {
	assert.Empty(t, ParseSymbols(""))
	assert.Empty(t, ParseSymbols("no markers here"))
}

func TestCanonicalSequenceRoundTrip(t *testing.T) {
	fragments := []string{
		"××○JPY17,050××××",
		"○JPY8,800-×○",
		"-------",
		"○○○",
		"×-○JPY1,234,500×",
	}

	for _, fragment := range fragments {
		parsed := ParseSymbols(fragment)
		again := ParseSymbols(CanonicalSequence(parsed))
		assert.Equal(t, parsed, again, "re-parsing the canonical form must be stable for %q", fragment)
	}
}
