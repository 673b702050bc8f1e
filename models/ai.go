package models

// AdvisorVerdict is the language model's suggested pick among computed
// alternatives. Advisory only: the index is bounds-checked and the slot
// re-validated against the availability model before it influences anything.
type AdvisorVerdict struct {
	SlotIndex  int     `json:"slotIndex"`  // index into the alternatives slice
	Confidence float64 `json:"confidence"` // 0..1
	Reason     string  `json:"reason"`     // short natural-language justification
}

// AdvisorContext carries follow-up conversation state between advisory turns.
type AdvisorContext struct {
	LastRunID  string `json:"lastRunId"`
	LastPrompt string `json:"lastPrompt"`
	Turns      int    `json:"turns"`
}
