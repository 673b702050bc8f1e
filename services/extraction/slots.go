package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"courtpilot/models"
)

// timeRangePattern matches the grid's occupied-cell label, e.g.
// "2:00 PM – 3:00 PM". The site renders either an en dash or a plain hyphen
// between the endpoints.
var timeRangePattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[AP]M)\s*[–-]\s*(\d{1,2}:\d{2}\s*[AP]M)`)

// NormalizeTimeText collapses the unicode spacing the grid renders inside
// time labels (narrow no-break and no-break spaces) into regular spaces so
// the range pattern applies uniformly.
func NormalizeTimeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", " ")
	return s
}

// parseClock12 converts "2:00 PM" to minutes from midnight.
func parseClock12(s string) (int, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)

	meridiem := ""
	switch {
	case strings.HasSuffix(upper, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(upper, "PM"):
		meridiem = "PM"
	default:
		return 0, fmt.Errorf("missing AM/PM in %q", s)
	}

	clock := strings.TrimSpace(upper[:len(upper)-2])
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}

	if meridiem == "PM" && hour != 12 {
		hour += 12
	}
	if meridiem == "AM" && hour == 12 {
		hour = 0
	}
	return hour*60 + minute, nil
}

// ParseTimeRange extracts the first start–end pair from a cell's text.
// The text is normalized before matching. Ranges that do not move forward
// (end at or before start, i.e. wrapping past midnight) are rejected.
func ParseTimeRange(text string) (start, end int, err error) {
	normalized := NormalizeTimeText(text)
	m := timeRangePattern.FindStringSubmatch(normalized)
	if m == nil {
		return 0, 0, NewParseError(fmt.Sprintf("no time range in %q", strings.TrimSpace(text)))
	}
	start, err = parseClock12(m[1])
	if err != nil {
		return 0, 0, NewParseError(err.Error())
	}
	end, err = parseClock12(m[2])
	if err != nil {
		return 0, 0, NewParseError(err.Error())
	}
	if end <= start {
		return 0, 0, NewParseError(fmt.Sprintf("range %q does not move forward", strings.TrimSpace(text)))
	}
	return start, end, nil
}

// visitorMarker reports whether a cell is rendered as visitor-restricted:
// the portal swaps the member icon for a ban icon and labels the cell for
// visitors.
func visitorMarker(cell models.GridCell) bool {
	if strings.Contains(cell.Class, "fa-ban") {
		return true
	}
	return strings.Contains(strings.ToLower(cell.Text), "visitor")
}

// CellFailure records one element whose text could not be parsed. Failures
// are reported alongside the successful slots; they never abort the batch.
type CellFailure struct {
	CellIndex int
	Text      string
	Err       error
}

// ExtractSlots turns assigned grid cells into occupied booking slots for the
// page's active date. Each cell contributes at most one slot; cells without
// an inferred court (possible only on an invalid assignment) or without a
// parseable time range are recorded as failures and skipped.
func ExtractSlots(cells []models.GridCell, assignment CourtAssignment, date string) ([]models.BookingSlot, []CellFailure) {
	slots := make([]models.BookingSlot, 0, len(cells))
	var failures []CellFailure

	for i, cell := range cells {
		court, ok := assignment.Courts[i]
		if !ok {
			failures = append(failures, CellFailure{
				CellIndex: i,
				Text:      cell.Text,
				Err:       NewExtractionError("cell missing court assignment"),
			})
			continue
		}

		start, end, err := ParseTimeRange(cell.Text)
		if err != nil {
			failures = append(failures, CellFailure{CellIndex: i, Text: cell.Text, Err: err})
			continue
		}

		status := models.SlotBooked
		if visitorMarker(cell) {
			status = models.SlotVisitorRestricted
		}

		slots = append(slots, models.BookingSlot{
			Court:      court,
			Date:       date,
			Start:      start,
			End:        end,
			Status:     status,
			SourceText: strings.TrimSpace(cell.Text),
		})
	}

	return slots, failures
}
