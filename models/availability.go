package models

// AvailabilityModel is the complete per-court timeline for one queried date.
// For every court, the slot ranges partition [FirstStart, Closing) into
// fixed-length increments with no gaps and no overlaps. The model is owned by
// a single workflow run and discarded with it; it is never cached across runs.
type AvailabilityModel struct {
	Date         string        `json:"date"`
	Courts       int           `json:"courts"`
	FirstStart   int           `json:"firstStart"`   // opening minute, or the first future increment for same-day queries
	Closing      int           `json:"closing"`      // closing minute
	IncrementMin int           `json:"incrementMin"` // grid step, e.g. 30
	VisitorMode  bool          `json:"visitorMode"`  // page rendered with restricted visibility
	Slots        []BookingSlot `json:"slots"`        // ordered by court asc, then start asc
}

// incrementsPerCourt returns how many grid increments each court carries.
func (m *AvailabilityModel) incrementsPerCourt() int {
	if m.IncrementMin <= 0 {
		return 0
	}
	return (m.Closing - m.FirstStart) / m.IncrementMin
}

// SlotAt returns the model increment for (court, start), or nil when the
// coordinates fall outside the grid.
func (m *AvailabilityModel) SlotAt(court, start int) *BookingSlot {
	per := m.incrementsPerCourt()
	if per == 0 || court < 1 || court > m.Courts {
		return nil
	}
	if start < m.FirstStart || start >= m.Closing || (start-m.FirstStart)%m.IncrementMin != 0 {
		return nil
	}
	idx := (court-1)*per + (start-m.FirstStart)/m.IncrementMin
	if idx < 0 || idx >= len(m.Slots) {
		return nil
	}
	return &m.Slots[idx]
}

// SpanAvailable reports whether every increment covered by
// [start, start+durationMin) on the given court is Available.
func (m *AvailabilityModel) SpanAvailable(court, start, durationMin int) bool {
	if durationMin <= 0 || start < m.FirstStart || start+durationMin > m.Closing {
		return false
	}
	for t := start; t < start+durationMin; t += m.IncrementMin {
		slot := m.SlotAt(court, t)
		if slot == nil || slot.Status != SlotAvailable {
			return false
		}
	}
	return true
}

// CountByStatus tallies increments per terminal status.
func (m *AvailabilityModel) CountByStatus() map[SlotStatus]int {
	counts := make(map[SlotStatus]int, 3)
	for _, s := range m.Slots {
		counts[s.Status]++
	}
	return counts
}
