package extraction

import (
	"fmt"
	"time"

	"courtpilot/models"
)

// GridParams fixes the venue geometry used to generate candidate slots.
// Now is injectable so same-day cutoff behavior is testable.
type GridParams struct {
	Courts       int
	OpeningMin   int // minutes from midnight, e.g. 480 for 8:00 AM
	ClosingMin   int // minutes from midnight, e.g. 1260 for 9:00 PM
	IncrementMin int
	Location     *time.Location
	Now          func() time.Time
}

func (p GridParams) validate() error {
	if p.Courts < 1 {
		return fmt.Errorf("court count %d out of range", p.Courts)
	}
	if p.IncrementMin <= 0 {
		return fmt.Errorf("increment %d out of range", p.IncrementMin)
	}
	if p.ClosingMin <= p.OpeningMin {
		return fmt.Errorf("closing %d not after opening %d", p.ClosingMin, p.OpeningMin)
	}
	if (p.ClosingMin-p.OpeningMin)%p.IncrementMin != 0 {
		return fmt.Errorf("operating hours %d-%d not divisible by increment %d",
			p.OpeningMin, p.ClosingMin, p.IncrementMin)
	}
	return nil
}

// firstStart returns the first candidate start minute for the queried date.
// Same-day queries exclude increments starting strictly before the current
// time; an increment starting exactly now is kept. Future dates get the full
// grid, past dates get none.
func (p GridParams) firstStart(date string) (int, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	day, err := models.ParseDate(date, loc)
	if err != nil {
		return 0, fmt.Errorf("bad date %q: %w", date, err)
	}

	nowFn := p.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	now := nowFn().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch {
	case day.After(today):
		return p.OpeningMin, nil
	case day.Before(today):
		return p.ClosingMin, nil
	}

	nowMin := now.Hour()*60 + now.Minute()
	if nowMin <= p.OpeningMin {
		return p.OpeningMin, nil
	}
	offset := nowMin - p.OpeningMin
	steps := offset / p.IncrementMin
	if offset%p.IncrementMin != 0 {
		steps++
	}
	first := p.OpeningMin + steps*p.IncrementMin
	if first > p.ClosingMin {
		first = p.ClosingMin
	}
	return first, nil
}

// BuildModel produces the complete per-court timeline for one date: the full
// candidate grid of Available increments, overlaid with the extracted
// occupied slots via the half-open overlap test. When two extracted slots
// claim the same candidate, the later one in slice order wins; slice order is
// extraction order, which makes the tie-break deterministic.
func BuildModel(params GridParams, date string, occupied []models.BookingSlot) (*models.AvailabilityModel, error) {
	if err := params.validate(); err != nil {
		return nil, NewExtractionError(err.Error())
	}
	first, err := params.firstStart(date)
	if err != nil {
		return nil, NewExtractionError(err.Error())
	}

	perCourt := (params.ClosingMin - first) / params.IncrementMin
	slots := make([]models.BookingSlot, 0, perCourt*params.Courts)
	for court := 1; court <= params.Courts; court++ {
		for t := first; t < params.ClosingMin; t += params.IncrementMin {
			slots = append(slots, models.BookingSlot{
				Court:  court,
				Date:   date,
				Start:  t,
				End:    t + params.IncrementMin,
				Status: models.SlotAvailable,
			})
		}
	}

	model := &models.AvailabilityModel{
		Date:         date,
		Courts:       params.Courts,
		FirstStart:   first,
		Closing:      params.ClosingMin,
		IncrementMin: params.IncrementMin,
		Slots:        slots,
	}

	for _, occ := range occupied {
		if occ.Court < 1 || occ.Court > params.Courts {
			continue
		}
		status := occ.Status
		if status == models.SlotAvailable || status == "" {
			status = models.SlotBooked
		}
		for i := range model.Slots {
			cand := &model.Slots[i]
			if cand.Court != occ.Court {
				continue
			}
			if models.RangesOverlap(cand.Start, cand.End, occ.Start, occ.End) {
				cand.Status = status
				cand.SourceText = occ.SourceText
			}
		}
	}

	return model, nil
}
