package booking

import (
	"sort"
	"testing"
	"time"

	"courtpilot/models"
	"courtpilot/services/extraction"
)

const testDate = "2026-08-26"

func testGrid() extraction.GridParams {
	return extraction.GridParams{
		Courts:       8,
		OpeningMin:   480,
		ClosingMin:   1260,
		IncrementMin: 30,
		Location:     time.UTC,
		Now: func() time.Time {
			return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
		},
	}
}

// testModel builds the full grid for the test date with the given occupied
// ranges overlaid.
func testModel(t *testing.T, occupied ...models.BookingSlot) *models.AvailabilityModel {
	t.Helper()
	model, err := extraction.BuildModel(testGrid(), testDate, occupied)
	if err != nil {
		t.Fatalf("BuildModel() error: %v", err)
	}
	return model
}

func booked(court, start, end int) models.BookingSlot {
	return models.BookingSlot{
		Court:  court,
		Date:   testDate,
		Start:  start,
		End:    end,
		Status: models.SlotBooked,
	}
}

// fullyBookedExcept books every court solid and frees only the given spans.
func fullyBookedExcept(t *testing.T, free ...models.BookingSlot) *models.AvailabilityModel {
	t.Helper()
	var occupied []models.BookingSlot
	for c := 1; c <= 8; c++ {
		var gaps [][2]int
		for _, f := range free {
			if f.Court == c {
				gaps = append(gaps, [2]int{f.Start, f.End})
			}
		}
		sort.Slice(gaps, func(i, j int) bool { return gaps[i][0] < gaps[j][0] })
		cursor := 480
		for _, g := range gaps {
			if cursor < g[0] {
				occupied = append(occupied, booked(c, cursor, g[0]))
			}
			cursor = g[1]
		}
		if cursor < 1260 {
			occupied = append(occupied, booked(c, cursor, 1260))
		}
	}
	return testModel(t, occupied...)
}

func free(court, start, end int) models.BookingSlot {
	return models.BookingSlot{Court: court, Start: start, End: end}
}

func intPtr(v int) *int { return &v }

func window(start, end int) *models.TimeWindow {
	return &models.TimeWindow{Start: start, End: end}
}

func TestMatchExactPrefersEarliestStart(t *testing.T) {
	m := NewMatcher(5, 60)
	out := m.Match(testModel(t), models.BookingRequest{})

	if len(out.Exact) == 0 {
		t.Fatal("empty grid should match an unconstrained request")
	}
	first := out.Exact[0]
	if first.Court != 1 || first.Start != 480 || first.End != 540 {
		t.Errorf("first match = court %d %d-%d, want court 1 480-540",
			first.Court, first.Start, first.End)
	}
	if len(out.Alternatives) != 0 {
		t.Errorf("exact outcome should carry no alternatives, got %d", len(out.Alternatives))
	}
}

func TestMatchExactCourtAndTime(t *testing.T) {
	m := NewMatcher(5, 60)
	req := models.BookingRequest{Court: intPtr(3), Window: window(840, 841)}
	out := m.Match(testModel(t), req)

	if len(out.Exact) != 1 {
		t.Fatalf("got %d exact matches, want 1", len(out.Exact))
	}
	got := out.Exact[0]
	if got.Court != 3 || got.Start != 840 || got.End != 900 {
		t.Errorf("match = court %d %d-%d, want court 3 840-900", got.Court, got.Start, got.End)
	}
}

func TestMatchRelaxesCourtThenWindow(t *testing.T) {
	// Court 2 is taken at 2 PM but free at 3 PM; court 5 is free at 2 PM.
	// Asking for court 2 at 2 PM should surface the same-time court first,
	// then the same-court later slot.
	model := fullyBookedExcept(t,
		free(5, 840, 900),
		free(2, 900, 960),
	)
	m := NewMatcher(5, 60)
	req := models.BookingRequest{Court: intPtr(2), Window: window(840, 841)}
	out := m.Match(model, req)

	if len(out.Exact) != 0 {
		t.Fatalf("expected no exact match, got %d", len(out.Exact))
	}
	if len(out.Alternatives) != 2 {
		t.Fatalf("got %d alternatives, want 2: %+v", len(out.Alternatives), out.Alternatives)
	}
	if a := out.Alternatives[0]; a.Court != 5 || a.Start != 840 {
		t.Errorf("first alternative = court %d @%d, want court 5 @840", a.Court, a.Start)
	}
	if a := out.Alternatives[1]; a.Court != 2 || a.Start != 900 {
		t.Errorf("second alternative = court %d @%d, want court 2 @900", a.Court, a.Start)
	}
}

func TestMatchWindowWideningBounded(t *testing.T) {
	m := NewMatcher(5, 60)
	req := models.BookingRequest{Window: window(840, 841)}

	// 10 AM is four hours from the 2 PM ask, beyond the widening bound.
	farModel := fullyBookedExcept(t, free(4, 600, 660))
	out := m.Match(farModel, req)
	if len(out.Exact) != 0 || len(out.Alternatives) != 0 {
		t.Errorf("slot beyond widening reach should not surface, got %+v", out.Alternatives)
	}

	// Noon is two hours out, inside the bound.
	nearModel := fullyBookedExcept(t, free(4, 720, 780))
	out = m.Match(nearModel, req)
	if len(out.Alternatives) != 1 {
		t.Fatalf("got %d alternatives, want 1", len(out.Alternatives))
	}
	if a := out.Alternatives[0]; a.Court != 4 || a.Start != 720 || a.End != 780 {
		t.Errorf("alternative = court %d %d-%d, want court 4 720-780", a.Court, a.Start, a.End)
	}
}

func TestMatchCapsAlternatives(t *testing.T) {
	m := NewMatcher(5, 60)
	// A court the venue does not have: nothing exact, everything relaxes.
	req := models.BookingRequest{Court: intPtr(9)}
	out := m.Match(testModel(t), req)

	if len(out.Exact) != 0 {
		t.Fatalf("court 9 should not match exactly, got %d", len(out.Exact))
	}
	if len(out.Alternatives) != 5 {
		t.Fatalf("got %d alternatives, want cap of 5", len(out.Alternatives))
	}
	if a := out.Alternatives[0]; a.Court != 1 || a.Start != 480 {
		t.Errorf("first alternative = court %d @%d, want court 1 @480", a.Court, a.Start)
	}
}

func TestMatchRanksTiesByCourt(t *testing.T) {
	// Both free spans sit 30 minutes from the 2 PM ask, one on each side.
	model := fullyBookedExcept(t,
		free(3, 810, 870),
		free(1, 870, 930),
	)
	m := NewMatcher(5, 60)
	out := m.Match(model, models.BookingRequest{Window: window(840, 841)})

	if len(out.Alternatives) != 2 {
		t.Fatalf("got %d alternatives, want 2: %+v", len(out.Alternatives), out.Alternatives)
	}
	if a := out.Alternatives[0]; a.Court != 1 || a.Start != 870 {
		t.Errorf("first alternative = court %d @%d, want court 1 @870", a.Court, a.Start)
	}
	if a := out.Alternatives[1]; a.Court != 3 || a.Start != 810 {
		t.Errorf("second alternative = court %d @%d, want court 3 @810", a.Court, a.Start)
	}
}

func TestMatchDurationSpansIncrements(t *testing.T) {
	model := fullyBookedExcept(t, free(1, 840, 960))
	m := NewMatcher(5, 60)
	req := models.BookingRequest{Court: intPtr(1), DurationMin: intPtr(120)}
	out := m.Match(model, req)

	if len(out.Exact) != 1 {
		t.Fatalf("got %d exact matches, want 1: %+v", len(out.Exact), out.Exact)
	}
	got := out.Exact[0]
	if got.Start != 840 || got.End != 960 {
		t.Errorf("match = %d-%d, want 840-960", got.Start, got.End)
	}
}

func TestMatchNothingBookable(t *testing.T) {
	m := NewMatcher(5, 60)
	out := m.Match(fullyBookedExcept(t), models.BookingRequest{})

	if len(out.Exact) != 0 || len(out.Alternatives) != 0 {
		t.Errorf("fully booked grid should match nothing, got exact=%d alts=%d",
			len(out.Exact), len(out.Alternatives))
	}
}

func TestMatchSkipsVisitorRestricted(t *testing.T) {
	restricted := models.BookingSlot{
		Court:  1,
		Date:   testDate,
		Start:  480,
		End:    1260,
		Status: models.SlotVisitorRestricted,
	}
	m := NewMatcher(5, 60)
	out := m.Match(testModel(t, restricted), models.BookingRequest{Court: intPtr(1)})

	if len(out.Exact) != 0 {
		t.Fatalf("restricted court should not match, got %d exact", len(out.Exact))
	}
	if len(out.Alternatives) == 0 {
		t.Fatal("other courts should surface as alternatives")
	}
	if a := out.Alternatives[0]; a.Court != 2 || a.Start != 480 {
		t.Errorf("first alternative = court %d @%d, want court 2 @480", a.Court, a.Start)
	}
}
