package checker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func gasshoPackage(header string, rows ...RoomRow) PackageSection {
	return PackageSection{
		Label: "Traditional Gassho 1 night stay (2025/7/1 - 2025/9/30)",
		Start: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
		View:  &CalendarView{Header: header, Rows: rows},
	}
}

func TestExtractRecordsAvailableCell(t *testing.T) {
	pkg := gasshoPackage(
		"7/30 7/31 8/1 8/2 8/3 8/4 8/5",
		RoomRow{RoomType: "8 Japanese Tatami mats", Fragment: "××○JPY17,050××××"},
	)
	now := time.Now()

	records := ExtractRecords("Magoemon", pkg, MustTargetDate("2025-08-01"), "https://booking.example", now)

	assert.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Magoemon", r.Accommodation)
	assert.Equal(t, "8 Japanese Tatami mats (Traditional Gassho 1 night stay (2025/7/1 - 2025/9/30))", r.RoomType)
	assert.Equal(t, "2025-08-01", r.Date)
	assert.Equal(t, StatusAvailable, r.Status)
	assert.Equal(t, "JPY17,050", r.Price)
	assert.Equal(t, "https://booking.example", r.BookingURL)
	assert.Equal(t, now, r.DiscoveredAt)
}

func TestExtractRecordsSoldOutAndNoSetupYieldNothing(t *testing.T) {
	pkg := gasshoPackage(
		"8/1 8/2 8/3",
		RoomRow{RoomType: "8 Japanese Tatami mats", Fragment: "×-×"},
	)

	records := ExtractRecords("Magoemon", pkg, MustTargetDate("2025-08-02"), "https://booking.example", time.Now())
	assert.Empty(t, records)
}

func TestExtractRecordsMultipleRooms(t *testing.T) {
	pkg := gasshoPackage(
		"8/1 8/2",
		RoomRow{RoomType: "8 Japanese Tatami mats", Fragment: "○JPY17,050×"},
		RoomRow{RoomType: "10 Japanese Tatami mats", Fragment: "○JPY19,800○JPY19,800"},
		RoomRow{RoomType: "6 Japanese Tatami mats", Fragment: "××"},
	)

	records := ExtractRecords("Magoemon", pkg, MustTargetDate("2025-08-01"), "https://booking.example", time.Now())

	assert.Len(t, records, 2)
	assert.Contains(t, records[0].RoomType, "8 Japanese Tatami mats")
	assert.Contains(t, records[1].RoomType, "10 Japanese Tatami mats")
}

func TestExtractRecordsDateOutsideWindow(t *testing.T) {
	pkg := gasshoPackage(
		"8/1 8/2 8/3",
		RoomRow{RoomType: "8 Japanese Tatami mats", Fragment: "○○○"},
	)

	records := ExtractRecords("Magoemon", pkg, MustTargetDate("2025-08-09"), "https://booking.example", time.Now())
	assert.Empty(t, records)
}

func TestExtractRecordsShortRowSkipped(t *testing.T) {
	// The row parses to fewer symbols than the header has columns; it is
	// skipped rather than misaligned
	pkg := gasshoPackage(
		"8/1 8/2 8/3 8/4",
		RoomRow{RoomType: "8 Japanese Tatami mats", Fragment: "○×"},
		RoomRow{RoomType: "10 Japanese Tatami mats", Fragment: "×××○JPY19,800"},
	)

	records := ExtractRecords("Magoemon", pkg, MustTargetDate("2025-08-04"), "https://booking.example", time.Now())

	assert.Len(t, records, 1)
	assert.Contains(t, records[0].RoomType, "10 Japanese Tatami mats")
	assert.Equal(t, "JPY19,800", records[0].Price)
}

func TestExtractRecordsNilView(t *testing.T) {
	pkg := gasshoPackage("8/1", RoomRow{})
	pkg.View = nil

	assert.Nil(t, ExtractRecords("Magoemon", pkg, MustTargetDate("2025-08-01"), "", time.Now()))
}

func TestExtractRecordsIdempotent(t *testing.T) {
	pkg := gasshoPackage(
		"8/1 8/2",
		RoomRow{RoomType: "8 Japanese Tatami mats", Fragment: "○JPY17,050×"},
	)
	now := time.Now()
	target := MustTargetDate("2025-08-01")

	first := ExtractRecords("Magoemon", pkg, target, "https://booking.example", now)
	second := ExtractRecords("Magoemon", pkg, target, "https://booking.example", now)

	assert.Equal(t, first, second)
}
