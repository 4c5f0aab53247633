package checker

import (
	"time"

	"sjmori/vacancywatcher/logger"
)

// ExtractRecords reads one package's calendar view at the target date and
// returns a record per open room. Only positive availability is surfaced;
// sold-out and no-setup cells simply yield nothing, because the system's
// purpose is alerting on openings. Extraction has no side effects and is
// idempotent against a static view.
//
// The column index is located against this view's header and applied to
// every room row of the same view. Rows whose parsed symbol sequence is
// too short to cover the column are skipped, not errors.
func ExtractRecords(accommodation string, pkg PackageSection, target TargetDate, bookingURL string, now time.Time) []AvailabilityRecord {
	if pkg.View == nil {
		return nil
	}

	column := LocateDateColumn(pkg.View.Header, target)
	if column < 0 {
		return nil
	}

	var records []AvailabilityRecord
	for _, row := range pkg.View.Rows {
		symbols := ParseSymbols(row.Fragment)
		if column >= len(symbols) {
			logger.ForChecker(accommodation).Debug().
				Str("room_type", row.RoomType).
				Int("column", column).
				Int("symbols", len(symbols)).
				Msg("Row too short for target column")
			continue
		}
		sym := symbols[column]
		if sym.Status != StatusAvailable {
			continue
		}
		records = append(records, AvailabilityRecord{
			Accommodation: accommodation,
			RoomType:      roomLabel(row.RoomType, pkg.Label),
			Date:          target.ISO(),
			Status:        StatusAvailable,
			Price:         sym.Price,
			BookingURL:    bookingURL,
			DiscoveredAt:  now,
		})
	}
	return records
}

// roomLabel combines the row's room type with its package label so that
// seasonal variants of the same room stay distinguishable
func roomLabel(roomType, packageLabel string) string {
	switch {
	case roomType == "":
		return packageLabel
	case packageLabel == "":
		return roomType
	default:
		return roomType + " (" + packageLabel + ")"
	}
}
