package booking

import (
	"sort"

	"courtpilot/models"
)

// Relaxation ladder bounds. When a request cannot be satisfied as asked, the
// court constraint is dropped first, then the time window grows in
// widenStepMin steps up to widenMaxMin in each direction. The requested date
// is never relaxed; a different day is a different request.
const (
	widenStepMin = 30
	widenMaxMin  = 180
)

// Matcher finds bookable spans in an availability model that satisfy a
// structured request, and proposes ranked alternatives when nothing does.
type Matcher struct {
	MaxAlternatives    int
	DefaultDurationMin int
}

func NewMatcher(maxAlternatives, defaultDurationMin int) *Matcher {
	if maxAlternatives <= 0 {
		maxAlternatives = 5
	}
	if defaultDurationMin <= 0 {
		defaultDurationMin = 60
	}
	return &Matcher{
		MaxAlternatives:    maxAlternatives,
		DefaultDurationMin: defaultDurationMin,
	}
}

// MatchOutcome carries either the exact matches (all constraints honored,
// earliest start first) or the ranked alternatives found by relaxing them.
// Both empty means nothing bookable exists near the request.
type MatchOutcome struct {
	Exact        []models.BookingSlot
	Alternatives []models.BookingSlot
}

// Match scans the model for spans satisfying the request. Every constraint
// the request omits is unconstrained; a zero request matches the whole grid.
func (m *Matcher) Match(model *models.AvailabilityModel, req models.BookingRequest) MatchOutcome {
	duration := m.DefaultDurationMin
	if req.DurationMin != nil && *req.DurationMin > 0 {
		duration = *req.DurationMin
	}

	exact := m.findSpans(model, m.courtScan(model, req.Court), duration, req.Window)
	if len(exact) > 0 {
		sort.Slice(exact, func(i, j int) bool {
			if exact[i].Start != exact[j].Start {
				return exact[i].Start < exact[j].Start
			}
			return exact[i].Court < exact[j].Court
		})
		return MatchOutcome{Exact: exact}
	}

	type candidate struct {
		slot  models.BookingSlot
		stage int
	}
	var cands []candidate
	seen := make(map[[2]int]bool)
	collect := func(stage int, slots []models.BookingSlot) {
		for _, s := range slots {
			key := [2]int{s.Court, s.Start}
			if seen[key] {
				continue
			}
			seen[key] = true
			cands = append(cands, candidate{slot: s, stage: stage})
		}
	}

	allCourts := m.courtScan(model, nil)

	// Stage 1: drop the court constraint, keep the window.
	if req.Court != nil {
		collect(1, m.findSpans(model, allCourts, duration, req.Window))
	}

	// Stage 2+: widen the window step by step, any court.
	if req.Window != nil {
		for step := 1; step*widenStepMin <= widenMaxMin; step++ {
			w := models.TimeWindow{
				Start: req.Window.Start - step*widenStepMin,
				End:   req.Window.End + step*widenStepMin,
			}
			collect(1+step, m.findSpans(model, allCourts, duration, &w))
		}
	}

	// Rank by distance from the requested window's midpoint; ties resolve to
	// the earlier relaxation stage, then lower court, then earlier start.
	anchor, hasAnchor := 0, false
	if req.Window != nil {
		anchor = req.Window.Midpoint()
		hasAnchor = true
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if hasAnchor {
			di := absInt(cands[i].slot.Start - anchor)
			dj := absInt(cands[j].slot.Start - anchor)
			if di != dj {
				return di < dj
			}
		}
		if cands[i].stage != cands[j].stage {
			return cands[i].stage < cands[j].stage
		}
		if cands[i].slot.Court != cands[j].slot.Court {
			return cands[i].slot.Court < cands[j].slot.Court
		}
		return cands[i].slot.Start < cands[j].slot.Start
	})
	if len(cands) > m.MaxAlternatives {
		cands = cands[:m.MaxAlternatives]
	}

	alts := make([]models.BookingSlot, len(cands))
	for i, c := range cands {
		alts[i] = c.slot
	}
	return MatchOutcome{Alternatives: alts}
}

// findSpans enumerates available spans of the given duration, court-major
// and start ascending. A window constrains the span's start minute.
func (m *Matcher) findSpans(model *models.AvailabilityModel, courts []int, duration int, window *models.TimeWindow) []models.BookingSlot {
	var spans []models.BookingSlot
	for _, court := range courts {
		for start := model.FirstStart; start+duration <= model.Closing; start += model.IncrementMin {
			if window != nil && !window.Contains(start) {
				continue
			}
			if !model.SpanAvailable(court, start, duration) {
				continue
			}
			spans = append(spans, models.BookingSlot{
				Court:  court,
				Date:   model.Date,
				Start:  start,
				End:    start + duration,
				Status: models.SlotAvailable,
			})
		}
	}
	return spans
}

// courtScan resolves the court constraint to the court ids to search. A court
// outside the venue matches nothing; relaxation then covers the real ones.
func (m *Matcher) courtScan(model *models.AvailabilityModel, court *int) []int {
	if court != nil {
		if *court < 1 || *court > model.Courts {
			return nil
		}
		return []int{*court}
	}
	courts := make([]int, model.Courts)
	for i := range courts {
		courts[i] = i + 1
	}
	return courts
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
