// File: services/intelligence/interface.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"courtpilot/models"
)

// SlotAdvisor ranks computed alternatives against the player's own words.
// Implementations are advisory only: callers bounds-check the verdict and
// keep the computed order whenever the advisor errors out.
type SlotAdvisor interface {
	RecommendSlot(ctx context.Context, runID, rawText string, alternatives []models.BookingSlot) (*models.AdvisorVerdict, error)
}

type DefaultSlotAdvisor struct {
	gemini   *GeminiClient
	ctxStore *RedisContextStore
}

func NewDefaultSlotAdvisor(gemini *GeminiClient, ctxStore *RedisContextStore) *DefaultSlotAdvisor {
	return &DefaultSlotAdvisor{gemini: gemini, ctxStore: ctxStore}
}

func (s *DefaultSlotAdvisor) RecommendSlot(ctx context.Context, runID, rawText string, alternatives []models.BookingSlot) (*models.AdvisorVerdict, error) {
	if len(alternatives) == 0 {
		return nil, fmt.Errorf("no alternatives to rank")
	}

	// 1) Load conversation context for this run
	advCtx, err := s.ctxStore.Get(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load advisor context: %w", err)
	}

	// 2) Ask the model to pick
	raw, err := s.gemini.GenerateContent(ctx, rankingPrompt(rawText, alternatives))
	if err != nil {
		return nil, err
	}

	// 3) Parse the verdict
	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, err
	}

	// 4) Discard verdicts pointing outside the list
	if verdict.SlotIndex < 0 || verdict.SlotIndex >= len(alternatives) {
		return nil, fmt.Errorf("advisor picked slot %d of %d", verdict.SlotIndex, len(alternatives))
	}
	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}

	// 5) Save context for follow-up turns
	advCtx.LastRunID = runID
	advCtx.LastPrompt = rawText
	advCtx.Turns++
	if err := s.ctxStore.Set(ctx, runID, advCtx); err != nil {
		return nil, fmt.Errorf("save advisor context: %w", err)
	}

	return verdict, nil
}

func rankingPrompt(rawText string, alternatives []models.BookingSlot) string {
	var sb strings.Builder
	sb.WriteString("You help a badminton player choose a court reservation.\n")
	sb.WriteString(fmt.Sprintf("The player asked: %q\n", rawText))
	sb.WriteString("Their exact request is not free. These nearby slots are open:\n")
	for i, alt := range alternatives {
		sb.WriteString(fmt.Sprintf("  %d) %s\n", i, alt.Label()))
	}
	sb.WriteString("Pick the slot that best honors the player's wording.\n")
	sb.WriteString(`Reply with strict JSON only: {"slotIndex": <int>, "confidence": <0..1>, "reason": "<one short sentence>"}`)
	return sb.String()
}

// parseVerdict tolerates markdown fences and prose around the JSON object.
func parseVerdict(raw string) (*models.AdvisorVerdict, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("advisor reply had no JSON object: %q", raw)
	}
	var verdict models.AdvisorVerdict
	if err := json.Unmarshal([]byte(raw[start:end+1]), &verdict); err != nil {
		return nil, fmt.Errorf("decode advisor verdict: %w", err)
	}
	return &verdict, nil
}
