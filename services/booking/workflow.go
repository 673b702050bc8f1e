// File: services/booking/workflow.go
package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	runsRepo "courtpilot/database/repository/runs"
	"courtpilot/models"
	"courtpilot/services/browser"
	"courtpilot/services/extraction"
	ai "courtpilot/services/intelligence"
	"courtpilot/services/notification"
	"courtpilot/services/request"
	"courtpilot/services/storage"
	"courtpilot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingEngine drives a booking run end to end: parse the free-form request,
// read the portal's grid, match or relax, and optionally execute the
// reservation. One run at a time owns the page session.
type BookingEngine interface {
	StartRun(ctx context.Context, rawText, dateOverride string, execute bool, deviceToken string) (*models.BookingRun, error)
	ExecuteRun(ctx context.Context, runID string) (*models.BookingRun, error)
	GetRun(ctx context.Context, runID string) (*models.BookingRun, error)
	Availability(ctx context.Context, date string) (*models.AvailabilityModel, error)
}

// PortalCredentials is the portal sign-in pair. Empty email disables login.
type PortalCredentials struct {
	Email    string
	Password string
}

// DefaultBookingEngine implements BookingEngine. Advisor, Notifier, Artifacts
// and Archive are optional; a nil value disables that capability.
type DefaultBookingEngine struct {
	Driver      browser.PageDriver
	Parser      *request.Parser
	Matcher     *Matcher
	Runs        RunStore
	Grid        extraction.GridParams
	Credentials PortalCredentials
	Advisor     ai.SlotAdvisor
	Notifier    notification.OutcomeNotifier
	Artifacts   storage.ArtifactStore
	Archive     runsRepo.RunHistoryRepository

	// pageMu serializes page access between an executing run and synchronous
	// availability reads. Runs themselves are serialized by the queue.
	pageMu sync.Mutex
}

// StartRun registers a new run in its initial state and returns it. The
// caller enqueues the worker task that drives the run to a terminal state.
func (e *DefaultBookingEngine) StartRun(ctx context.Context, rawText, dateOverride string, execute bool, deviceToken string) (*models.BookingRun, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, NewBadRequest("request text is required")
	}
	if dateOverride != "" {
		if _, err := models.ParseDate(dateOverride, e.location()); err != nil {
			return nil, NewBadRequest(fmt.Sprintf("bad date override %q, want YYYY-MM-DD", dateOverride))
		}
	}

	run := &models.BookingRun{
		RunID:        uuid.New().String(),
		Status:       models.StateParsingRequest,
		RawText:      text,
		DateOverride: dateOverride,
		Execute:      execute,
		DeviceToken:  deviceToken,
		CreatedAt:    time.Now(),
	}
	if err := e.Runs.Save(ctx, run); err != nil {
		return nil, err
	}

	log.Printf("StartRun: registered run %s (execute=%v)", run.RunID, execute)
	return run, nil
}

// GetRun returns a run by ID, falling back to the archive once the live
// entry has expired.
func (e *DefaultBookingEngine) GetRun(ctx context.Context, runID string) (*models.BookingRun, error) {
	run, err := e.Runs.Get(ctx, runID)
	if err == nil {
		return run, nil
	}
	if IsRunNotFound(err) && e.Archive != nil {
		archived, archiveErr := e.Archive.GetByID(ctx, runID)
		if archiveErr == nil && archived != nil {
			return archived, nil
		}
	}
	return nil, err
}

// ExecuteRun walks one run through the workflow. Every run ends in a terminal
// state; run-level failures land on reservation_failed with the captured
// reason rather than returning an error. The returned error is reserved for
// problems with the run record itself.
func (e *DefaultBookingEngine) ExecuteRun(ctx context.Context, runID string) (*models.BookingRun, error) {
	run, err := e.Runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status.Terminal() {
		log.Printf("ExecuteRun: run %s already terminal (%s), skipping", run.RunID, run.Status)
		return run, nil
	}
	log.Printf("ExecuteRun: starting run %s (execute=%v)", run.RunID, run.Execute)

	// 1) Parse the free-form request.
	e.setState(ctx, run, models.StateParsingRequest)
	req := e.Parser.Parse(run.RawText)
	unconstrained := req.IsUnconstrained()
	if run.DateOverride != "" {
		req.Date = &run.DateOverride
	}
	if req.Date == nil {
		today := models.FormatDate(e.now().In(e.location()))
		req.Date = &today
	}
	run.Request = req
	date := *req.Date
	log.Printf("ExecuteRun: run %s parsed %q -> date=%s court=%v window=%v duration=%v",
		run.RunID, run.RawText, date, intOrAny(req.Court), windowOrAny(req.Window), intOrAny(req.DurationMin))

	// 2) Read the portal and build the availability model. The run owns the
	// page from here through the reservation attempt.
	e.pageMu.Lock()
	defer e.pageMu.Unlock()

	e.setState(ctx, run, models.StateFetchingAvailability)
	model, err := e.fetchModel(ctx, date)
	if err != nil {
		return e.failRun(ctx, run, err), nil
	}
	run.VisitorMode = model.VisitorMode

	// 3) Match, relaxing constraints when nothing fits exactly.
	e.setState(ctx, run, models.StateMatching)
	outcome := e.Matcher.Match(model, req)

	switch {
	case len(outcome.Exact) > 0:
		primary := outcome.Exact[0]
		secondary := outcome.Exact[1:]
		if len(secondary) > e.Matcher.MaxAlternatives {
			secondary = secondary[:e.Matcher.MaxAlternatives]
		}
		msg := fmt.Sprintf("%s is open.", primary.Label())
		if unconstrained {
			msg = fmt.Sprintf("%d open slots on %s. Earliest: %s", len(outcome.Exact), date, primary.Label())
		}
		run.Status = models.StateExactMatchFound
		run.Result = &models.BookingResult{
			Status:       models.StateExactMatchFound,
			MatchedSlot:  &primary,
			Alternatives: secondary,
			Message:      msg,
		}

	case len(outcome.Alternatives) > 0:
		alts := outcome.Alternatives
		if e.Advisor != nil {
			alts = e.adviseOrder(ctx, run, alts)
		}
		msg := fmt.Sprintf("No exact match; %d nearby slots are open. Closest: %s", len(alts), alts[0].Label())
		if len(alts) == 1 {
			msg = fmt.Sprintf("No exact match; 1 nearby slot is open: %s", alts[0].Label())
		}
		run.Status = models.StateAlternativesFound
		run.Result = &models.BookingResult{
			Status:       models.StateAlternativesFound,
			Alternatives: alts,
			Message:      msg,
		}

	default:
		msg := fmt.Sprintf("No courts available on %s for that request.", date)
		if model.VisitorMode {
			msg += " The portal was in visitor mode, so some openings may be hidden."
		}
		run.Status = models.StateNoAvailability
		run.Result = &models.BookingResult{
			Status:  models.StateNoAvailability,
			Message: msg,
		}
	}

	// 4) Execute only exact matches. Booking an alternative is a decision the
	// user makes by submitting a new, tighter run.
	if run.Status == models.StateExactMatchFound && run.Execute {
		e.setState(ctx, run, models.StateExecutingReservation)
		slot := *run.Result.MatchedSlot
		log.Printf("ExecuteRun: run %s submitting reservation for %s", run.RunID, slot.Label())

		if err := e.Driver.SubmitReservation(ctx, slot); err != nil {
			run.Status = models.StateReservationFailed
			run.FailureReason = err.Error()
			run.Result = &models.BookingResult{
				Status:      models.StateReservationFailed,
				MatchedSlot: &slot,
				Message:     fmt.Sprintf("Reservation for %s failed: %v", slot.Label(), err),
			}
		} else {
			run.Status = models.StateConfirmed
			run.Result = &models.BookingResult{
				Status:      models.StateConfirmed,
				MatchedSlot: &slot,
				Message:     fmt.Sprintf("Booked %s.", slot.Label()),
			}
		}
		e.captureArtifact(ctx, run)
	}

	e.finishRun(ctx, run)
	return run, nil
}

// Availability reads the grid for one date without running the workflow.
// An empty date means today.
func (e *DefaultBookingEngine) Availability(ctx context.Context, date string) (*models.AvailabilityModel, error) {
	if date == "" {
		date = models.FormatDate(e.now().In(e.location()))
	}
	if _, err := models.ParseDate(date, e.location()); err != nil {
		return nil, NewBadRequest(fmt.Sprintf("bad date %q, want YYYY-MM-DD", date))
	}

	e.pageMu.Lock()
	defer e.pageMu.Unlock()
	return e.fetchModel(ctx, date)
}

// fetchModel navigates to the date's grid, extracts occupied cells and builds
// the availability model. A visitor-mode page triggers one login attempt when
// credentials are configured; login failure downgrades to visitor data rather
// than failing the run.
func (e *DefaultBookingEngine) fetchModel(ctx context.Context, date string) (*models.AvailabilityModel, error) {
	if err := e.Driver.Navigate(ctx, date); err != nil {
		return nil, err
	}

	visitor, err := e.Driver.VisitorMode(ctx)
	if err != nil {
		utils.GetLogger().Warn("visitor probe failed", zap.Error(err))
	}
	if visitor && e.Credentials.Email != "" {
		log.Printf("fetchModel: visitor mode detected, signing in as %s", e.Credentials.Email)
		if err := e.Driver.Login(ctx, e.Credentials.Email, e.Credentials.Password); err != nil {
			utils.GetLogger().Warn("portal login failed, continuing in visitor mode", zap.Error(err))
		} else {
			if err := e.Driver.Navigate(ctx, date); err != nil {
				return nil, err
			}
			visitor, _ = e.Driver.VisitorMode(ctx)
		}
	}

	cells, err := e.Driver.CollectCells(ctx)
	if err != nil {
		return nil, err
	}

	occupied, err := e.extractOccupied(cells, date)
	if extraction.IsLayoutMismatch(err) {
		// The grid may not have finished rendering every column. A mismatched
		// layout gets one fresh navigation; a second mismatch fails the run
		// rather than guessing court identity.
		utils.GetLogger().Warn("column layout mismatch, retrying navigation",
			zap.String("date", date), zap.Error(err))
		if err := e.Driver.Navigate(ctx, date); err != nil {
			return nil, err
		}
		cells, err = e.Driver.CollectCells(ctx)
		if err != nil {
			return nil, err
		}
		occupied, err = e.extractOccupied(cells, date)
	}
	if err != nil {
		return nil, err
	}

	model, err := extraction.BuildModel(e.Grid, date, occupied)
	if err != nil {
		return nil, err
	}
	model.VisitorMode = visitor

	log.Printf("fetchModel: %s -> %d cells, %d occupied slots (visitor=%v)",
		date, len(cells), len(occupied), visitor)
	return model, nil
}

// extractOccupied assigns courts and parses cells into occupied slots. A day
// with zero booked cells renders no booking elements at all, so an empty
// batch is full availability, not a layout problem.
func (e *DefaultBookingEngine) extractOccupied(cells []models.GridCell, date string) ([]models.BookingSlot, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	assignment := extraction.InferColumns(cells)
	if err := assignment.Validate(e.Grid.Courts); err != nil {
		return nil, err
	}
	slots, failures := extraction.ExtractSlots(cells, assignment, date)
	for _, f := range failures {
		utils.GetLogger().Warn("grid cell skipped",
			zap.Int("cell", f.CellIndex),
			zap.String("text", f.Text),
			zap.Error(f.Err))
	}
	return slots, nil
}

// adviseOrder lets the advisor promote its pick to the front of the list.
// The verdict is advisory: advisor errors or out-of-range picks keep the
// computed order.
func (e *DefaultBookingEngine) adviseOrder(ctx context.Context, run *models.BookingRun, alts []models.BookingSlot) []models.BookingSlot {
	verdict, err := e.Advisor.RecommendSlot(ctx, run.RunID, run.RawText, alts)
	if err != nil {
		utils.GetLogger().Warn("slot advisor failed, keeping computed order",
			zap.String("runId", run.RunID), zap.Error(err))
		return alts
	}
	if verdict.SlotIndex <= 0 || verdict.SlotIndex >= len(alts) {
		return alts
	}

	reordered := make([]models.BookingSlot, 0, len(alts))
	reordered = append(reordered, alts[verdict.SlotIndex])
	reordered = append(reordered, alts[:verdict.SlotIndex]...)
	reordered = append(reordered, alts[verdict.SlotIndex+1:]...)
	log.Printf("adviseOrder: run %s advisor promoted %s (confidence %.2f): %s",
		run.RunID, reordered[0].Label(), verdict.Confidence, verdict.Reason)
	return reordered
}

// captureArtifact screenshots the page after a reservation attempt and
// uploads it. Best-effort: failures are logged, never fatal.
func (e *DefaultBookingEngine) captureArtifact(ctx context.Context, run *models.BookingRun) {
	if e.Artifacts == nil {
		return
	}
	png, err := e.Driver.CaptureScreenshot(ctx)
	if err != nil {
		utils.GetLogger().Warn("screenshot capture failed",
			zap.String("runId", run.RunID), zap.Error(err))
		return
	}
	url, err := e.Artifacts.UploadScreenshot(ctx, run.RunID, png)
	if err != nil {
		utils.GetLogger().Warn("screenshot upload failed",
			zap.String("runId", run.RunID), zap.Error(err))
		return
	}
	run.ScreenshotURL = url
}

// failRun lands a run on its failure status with the captured reason.
func (e *DefaultBookingEngine) failRun(ctx context.Context, run *models.BookingRun, cause error) *models.BookingRun {
	run.Status = models.StateReservationFailed
	run.FailureReason = cause.Error()
	run.Result = &models.BookingResult{
		Status:  models.StateReservationFailed,
		Message: fmt.Sprintf("Run failed before completion: %v", cause),
	}
	e.finishRun(ctx, run)
	return run
}

// finishRun persists the terminal run, then best-effort archives it and sends
// the outcome push.
func (e *DefaultBookingEngine) finishRun(ctx context.Context, run *models.BookingRun) {
	if err := e.Runs.Save(ctx, run); err != nil {
		utils.GetLogger().Error("failed to persist terminal run",
			zap.String("runId", run.RunID), zap.Error(err))
	}
	if e.Archive != nil {
		if err := e.Archive.Archive(ctx, *run); err != nil {
			utils.GetLogger().Warn("run archive failed",
				zap.String("runId", run.RunID), zap.Error(err))
		}
	}
	if e.Notifier != nil && run.DeviceToken != "" {
		if err := e.Notifier.NotifyOutcome(ctx, run); err != nil {
			utils.GetLogger().Warn("outcome push failed",
				zap.String("runId", run.RunID), zap.Error(err))
		}
	}
	log.Printf("ExecuteRun: run %s finished with status %s", run.RunID, run.Status)
}

// setState advances the run and writes it through so API polls observe
// progress. A write failure is logged and the workflow keeps moving; the
// terminal write in finishRun is the one that matters.
func (e *DefaultBookingEngine) setState(ctx context.Context, run *models.BookingRun, state models.WorkflowState) {
	run.Status = state
	if err := e.Runs.Save(ctx, run); err != nil {
		utils.GetLogger().Warn("state write failed",
			zap.String("runId", run.RunID), zap.String("state", string(state)), zap.Error(err))
	}
}

func (e *DefaultBookingEngine) now() time.Time {
	if e.Grid.Now != nil {
		return e.Grid.Now()
	}
	return time.Now()
}

func (e *DefaultBookingEngine) location() *time.Location {
	if e.Grid.Location != nil {
		return e.Grid.Location
	}
	return time.UTC
}

func intOrAny(v *int) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *v)
}

func windowOrAny(w *models.TimeWindow) string {
	if w == nil {
		return "any"
	}
	return fmt.Sprintf("[%s, %s)", models.FormatMinutes(w.Start), models.FormatMinutes(w.End))
}
