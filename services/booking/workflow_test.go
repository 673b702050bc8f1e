package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"courtpilot/models"
	"courtpilot/services/request"
)

// fakeDriver is an in-memory PageDriver serving canned grid cells.
type fakeDriver struct {
	cells      []models.GridCell
	retryCells []models.GridCell // swapped in on any navigation after the first
	visitor    bool

	navigateErr error
	collectErr  error
	submitErr   error
	loginErr    error

	navigations []string
	logins      int
	submissions []models.BookingSlot
	screenshots int
}

func (d *fakeDriver) Navigate(ctx context.Context, date string) error {
	d.navigations = append(d.navigations, date)
	if len(d.navigations) > 1 && d.retryCells != nil {
		d.cells = d.retryCells
	}
	return d.navigateErr
}

func (d *fakeDriver) CollectCells(ctx context.Context) ([]models.GridCell, error) {
	return d.cells, d.collectErr
}

func (d *fakeDriver) VisitorMode(ctx context.Context) (bool, error) {
	return d.visitor, nil
}

func (d *fakeDriver) Login(ctx context.Context, email, password string) error {
	d.logins++
	if d.loginErr != nil {
		return d.loginErr
	}
	d.visitor = false
	return nil
}

func (d *fakeDriver) SubmitReservation(ctx context.Context, slot models.BookingSlot) error {
	d.submissions = append(d.submissions, slot)
	return d.submitErr
}

func (d *fakeDriver) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	d.screenshots++
	return []byte("png"), nil
}

func (d *fakeDriver) Close() error { return nil }

// memoryRunStore records every status written so tests can assert the
// workflow's state sequence.
type memoryRunStore struct {
	runs    map[string]models.BookingRun
	history []models.WorkflowState
}

func newMemoryRunStore() *memoryRunStore {
	return &memoryRunStore{runs: make(map[string]models.BookingRun)}
}

func (s *memoryRunStore) Save(ctx context.Context, run *models.BookingRun) error {
	run.UpdatedAt = time.Now()
	s.runs[run.RunID] = *run
	s.history = append(s.history, run.Status)
	return nil
}

func (s *memoryRunStore) Get(ctx context.Context, runID string) (*models.BookingRun, error) {
	r, ok := s.runs[runID]
	if !ok {
		return nil, NewRunNotFound(runID)
	}
	return &r, nil
}

func (s *memoryRunStore) Delete(ctx context.Context, runID string) error {
	delete(s.runs, runID)
	return nil
}

type fakeAdvisor struct {
	verdict *models.AdvisorVerdict
	err     error
	calls   int
}

func (a *fakeAdvisor) RecommendSlot(ctx context.Context, runID, rawText string, alts []models.BookingSlot) (*models.AdvisorVerdict, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.verdict, nil
}

type fakeNotifier struct {
	notified []models.WorkflowState
}

func (n *fakeNotifier) NotifyOutcome(ctx context.Context, run *models.BookingRun) error {
	n.notified = append(n.notified, run.Status)
	return nil
}

type fakeArtifacts struct {
	uploads int
}

func (a *fakeArtifacts) UploadScreenshot(ctx context.Context, runID string, png []byte) (string, error) {
	a.uploads++
	return "https://example.test/shots/" + runID + ".png", nil
}

func (a *fakeArtifacts) DeleteScreenshot(ctx context.Context, runID string) error { return nil }

func (a *fakeArtifacts) SignedScreenshotURL(runID string, expires time.Duration) (string, error) {
	return "https://example.test/signed/" + runID, nil
}

type fakeArchive struct {
	archived []models.BookingRun
}

func (a *fakeArchive) Archive(ctx context.Context, run models.BookingRun) error {
	a.archived = append(a.archived, run)
	return nil
}

func (a *fakeArchive) GetByID(ctx context.Context, runID string) (*models.BookingRun, error) {
	for i := range a.archived {
		if a.archived[i].RunID == runID {
			return &a.archived[i], nil
		}
	}
	return nil, nil
}

func (a *fakeArchive) Recent(ctx context.Context, limit int64) ([]models.BookingRun, error) {
	return a.archived, nil
}

func (a *fakeArchive) ListByDate(ctx context.Context, date string) ([]models.BookingRun, error) {
	return nil, nil
}

func (a *fakeArchive) ListOlderThan(ctx context.Context, cutoff time.Time) ([]models.BookingRun, error) {
	return nil, nil
}

func (a *fakeArchive) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

// bookedCell renders one occupied grid cell the way the portal does: a time
// range label positioned in its court's column.
func bookedCell(court, start, end int) models.GridCell {
	return models.GridCell{
		Text:   models.FormatMinutes(start) + " – " + models.FormatMinutes(end),
		X:      100 + 120*float64(court-1),
		Y:      200 + 2*float64(start-480),
		Width:  110,
		Height: 2 * float64(end-start),
		Class:  "booking-div-content",
	}
}

// morningBaseline books 8:00-9:00 AM on every court so each column renders at
// least one element.
func morningBaseline() []models.GridCell {
	cells := make([]models.GridCell, 0, 8)
	for c := 1; c <= 8; c++ {
		cells = append(cells, bookedCell(c, 480, 540))
	}
	return cells
}

// scenarioCells books the grid solid except court 2 free 3-4 PM and court 5
// free 2-3 PM.
func scenarioCells() []models.GridCell {
	var cells []models.GridCell
	for c := 1; c <= 8; c++ {
		switch c {
		case 2:
			cells = append(cells, bookedCell(2, 480, 900), bookedCell(2, 960, 1260))
		case 5:
			cells = append(cells, bookedCell(5, 480, 840), bookedCell(5, 900, 1260))
		default:
			cells = append(cells, bookedCell(c, 480, 1260))
		}
	}
	return cells
}

func newTestEngine(driver *fakeDriver) (*DefaultBookingEngine, *memoryRunStore) {
	parser := request.NewParser(time.UTC, 480, 1260)
	parser.Now = func() time.Time {
		return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	}
	store := newMemoryRunStore()
	eng := &DefaultBookingEngine{
		Driver:  driver,
		Parser:  parser,
		Matcher: NewMatcher(5, 60),
		Runs:    store,
		Grid:    testGrid(),
	}
	return eng, store
}

func startRun(t *testing.T, eng *DefaultBookingEngine, text string, execute bool) *models.BookingRun {
	t.Helper()
	run, err := eng.StartRun(context.Background(), text, "", execute, "")
	if err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}
	return run
}

// assertStateOrder checks that want appears as a subsequence of the recorded
// status writes.
func assertStateOrder(t *testing.T, history []models.WorkflowState, want ...models.WorkflowState) {
	t.Helper()
	i := 0
	for _, s := range history {
		if i < len(want) && s == want[i] {
			i++
		}
	}
	if i != len(want) {
		t.Errorf("state sequence %v missing expected order %v", history, want)
	}
}

func TestExecuteRunConfirmsExactMatch(t *testing.T) {
	driver := &fakeDriver{cells: morningBaseline()}
	eng, store := newTestEngine(driver)
	archive := &fakeArchive{}
	eng.Archive = archive

	run := startRun(t, eng, "Book Court #3 tomorrow at 2 PM", true)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if got.Status != models.StateConfirmed {
		t.Fatalf("status = %s, want %s (%s)", got.Status, models.StateConfirmed, got.Result.Message)
	}
	if len(driver.submissions) != 1 {
		t.Fatalf("got %d submissions, want exactly 1", len(driver.submissions))
	}
	sub := driver.submissions[0]
	if sub.Court != 3 || sub.Start != 840 || sub.End != 900 || sub.Date != "2026-08-26" {
		t.Errorf("submitted %+v, want court 3 840-900 on 2026-08-26", sub)
	}
	if got.Result.MatchedSlot == nil || got.Result.MatchedSlot.Court != 3 {
		t.Errorf("matched slot = %+v, want court 3", got.Result.MatchedSlot)
	}
	if len(archive.archived) != 1 {
		t.Errorf("terminal run should be archived once, got %d", len(archive.archived))
	}
	assertStateOrder(t, store.history,
		models.StateParsingRequest,
		models.StateFetchingAvailability,
		models.StateMatching,
		models.StateExecutingReservation,
		models.StateConfirmed,
	)
}

func TestExecuteRunQueryOnlyNeverSubmits(t *testing.T) {
	driver := &fakeDriver{cells: morningBaseline()}
	eng, _ := newTestEngine(driver)

	run := startRun(t, eng, "Book Court #3 tomorrow at 2 PM", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if got.Status != models.StateExactMatchFound {
		t.Fatalf("status = %s, want %s", got.Status, models.StateExactMatchFound)
	}
	if len(driver.submissions) != 0 {
		t.Errorf("query-only run must not submit, got %d submissions", len(driver.submissions))
	}
	if got.Result.MatchedSlot == nil || got.Result.MatchedSlot.Start != 840 {
		t.Errorf("matched slot = %+v, want start 840", got.Result.MatchedSlot)
	}
}

func TestExecuteRunRanksAlternatives(t *testing.T) {
	driver := &fakeDriver{cells: scenarioCells()}
	eng, _ := newTestEngine(driver)

	// Execute mode, but alternatives are never booked without a fresh run.
	run := startRun(t, eng, "Court #2 at 2 PM", true)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if got.Status != models.StateAlternativesFound {
		t.Fatalf("status = %s, want %s (%s)", got.Status, models.StateAlternativesFound, got.Result.Message)
	}
	alts := got.Result.Alternatives
	if len(alts) != 2 {
		t.Fatalf("got %d alternatives, want 2: %+v", len(alts), alts)
	}
	if alts[0].Court != 5 || alts[0].Start != 840 {
		t.Errorf("first alternative = court %d @%d, want court 5 @840 (same time beats same court)", alts[0].Court, alts[0].Start)
	}
	if alts[1].Court != 2 || alts[1].Start != 900 {
		t.Errorf("second alternative = court %d @%d, want court 2 @900", alts[1].Court, alts[1].Start)
	}
	if len(driver.submissions) != 0 {
		t.Errorf("alternatives must not be auto-booked, got %d submissions", len(driver.submissions))
	}
}

func TestExecuteRunNoAvailability(t *testing.T) {
	var cells []models.GridCell
	for c := 1; c <= 8; c++ {
		cells = append(cells, bookedCell(c, 480, 1260))
	}
	driver := &fakeDriver{cells: cells}
	eng, _ := newTestEngine(driver)
	notifier := &fakeNotifier{}
	eng.Notifier = notifier

	run, err := eng.StartRun(context.Background(), "any court tomorrow", "", false, "device-token-1")
	if err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if got.Status != models.StateNoAvailability {
		t.Fatalf("status = %s, want %s", got.Status, models.StateNoAvailability)
	}
	if !strings.Contains(got.Result.Message, "2026-08-26") {
		t.Errorf("message should name the date: %q", got.Result.Message)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != models.StateNoAvailability {
		t.Errorf("device token set, want one outcome push, got %v", notifier.notified)
	}
}

func TestExecuteRunVisitorLoginFlow(t *testing.T) {
	driver := &fakeDriver{cells: morningBaseline(), visitor: true}
	eng, _ := newTestEngine(driver)
	eng.Credentials = PortalCredentials{Email: "agent@example.com", Password: "secret"}

	run := startRun(t, eng, "court 4 tomorrow at 10 am", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if driver.logins != 1 {
		t.Errorf("got %d logins, want 1", driver.logins)
	}
	if len(driver.navigations) != 2 {
		t.Errorf("got %d navigations, want 2 (initial + post-login)", len(driver.navigations))
	}
	if got.VisitorMode {
		t.Error("run should not be marked visitor after a successful login")
	}
	if got.Status != models.StateExactMatchFound {
		t.Errorf("status = %s, want %s", got.Status, models.StateExactMatchFound)
	}
}

func TestExecuteRunVisitorWithoutCredentials(t *testing.T) {
	driver := &fakeDriver{cells: morningBaseline(), visitor: true}
	eng, _ := newTestEngine(driver)

	run := startRun(t, eng, "court 4 tomorrow at 10 am", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if driver.logins != 0 {
		t.Errorf("no credentials configured, got %d logins", driver.logins)
	}
	if !got.VisitorMode {
		t.Error("run should be marked visitor")
	}
}

func TestExecuteRunSubmitFailureIsTerminal(t *testing.T) {
	driver := &fakeDriver{
		cells:     morningBaseline(),
		submitErr: NewReservationFailure("portal rejected reservation"),
	}
	eng, _ := newTestEngine(driver)
	artifacts := &fakeArtifacts{}
	eng.Artifacts = artifacts

	run := startRun(t, eng, "Book Court #3 tomorrow at 2 PM", true)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() should land on a terminal state, not error: %v", err)
	}

	if got.Status != models.StateReservationFailed {
		t.Fatalf("status = %s, want %s", got.Status, models.StateReservationFailed)
	}
	if len(driver.submissions) != 1 {
		t.Errorf("got %d submissions, want exactly 1 (no retries)", len(driver.submissions))
	}
	if !strings.Contains(got.FailureReason, "portal rejected") {
		t.Errorf("failure reason %q should carry the captured reason", got.FailureReason)
	}
	if artifacts.uploads != 1 {
		t.Errorf("failed reservation should still capture evidence, got %d uploads", artifacts.uploads)
	}
	if got.ScreenshotURL == "" {
		t.Error("screenshot URL should be recorded on the run")
	}
}

func TestExecuteRunLayoutMismatchFailsAfterRetry(t *testing.T) {
	// Only three columns render: court identity cannot be trusted.
	cells := []models.GridCell{
		bookedCell(1, 480, 540),
		bookedCell(2, 480, 540),
		bookedCell(3, 480, 540),
	}
	driver := &fakeDriver{cells: cells}
	eng, _ := newTestEngine(driver)

	run := startRun(t, eng, "Book Court #3 tomorrow at 2 PM", true)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() should land on a terminal state, not error: %v", err)
	}

	if got.Status != models.StateReservationFailed {
		t.Fatalf("status = %s, want %s", got.Status, models.StateReservationFailed)
	}
	if !strings.Contains(got.FailureReason, "columns") {
		t.Errorf("failure reason %q should describe the column mismatch", got.FailureReason)
	}
	if len(driver.navigations) != 2 {
		t.Errorf("got %d navigations, want 2 (initial + one retry)", len(driver.navigations))
	}
	if len(driver.submissions) != 0 {
		t.Errorf("mismatched layout must never submit, got %d", len(driver.submissions))
	}
}

func TestExecuteRunLayoutMismatchHealsOnRetry(t *testing.T) {
	cells := []models.GridCell{
		bookedCell(1, 480, 540),
		bookedCell(2, 480, 540),
	}
	driver := &fakeDriver{cells: cells, retryCells: morningBaseline()}
	eng, _ := newTestEngine(driver)

	run := startRun(t, eng, "court 4 tomorrow at 10 am", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if got.Status != models.StateExactMatchFound {
		t.Fatalf("status = %s, want %s after the retry healed the layout", got.Status, models.StateExactMatchFound)
	}
	if len(driver.navigations) != 2 {
		t.Errorf("got %d navigations, want 2", len(driver.navigations))
	}
}

func TestExecuteRunAdvisorPromotesPick(t *testing.T) {
	driver := &fakeDriver{cells: scenarioCells()}
	eng, _ := newTestEngine(driver)
	advisor := &fakeAdvisor{verdict: &models.AdvisorVerdict{SlotIndex: 1, Confidence: 0.9, Reason: "keeps the requested court"}}
	eng.Advisor = advisor

	run := startRun(t, eng, "Court #2 at 2 PM", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if advisor.calls != 1 {
		t.Fatalf("advisor called %d times, want 1", advisor.calls)
	}
	alts := got.Result.Alternatives
	if len(alts) != 2 {
		t.Fatalf("got %d alternatives, want 2", len(alts))
	}
	if alts[0].Court != 2 || alts[0].Start != 900 {
		t.Errorf("advisor pick should lead: got court %d @%d, want court 2 @900", alts[0].Court, alts[0].Start)
	}
	if alts[1].Court != 5 || alts[1].Start != 840 {
		t.Errorf("computed leader should follow: got court %d @%d, want court 5 @840", alts[1].Court, alts[1].Start)
	}
}

func TestExecuteRunAdvisorErrorKeepsOrder(t *testing.T) {
	driver := &fakeDriver{cells: scenarioCells()}
	eng, _ := newTestEngine(driver)
	eng.Advisor = &fakeAdvisor{err: errors.New("quota exceeded")}

	run := startRun(t, eng, "Court #2 at 2 PM", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	alts := got.Result.Alternatives
	if len(alts) != 2 || alts[0].Court != 5 || alts[1].Court != 2 {
		t.Errorf("advisor failure must keep the computed order, got %+v", alts)
	}
}

func TestExecuteRunAdvisorOutOfRangeDiscarded(t *testing.T) {
	driver := &fakeDriver{cells: scenarioCells()}
	eng, _ := newTestEngine(driver)
	eng.Advisor = &fakeAdvisor{verdict: &models.AdvisorVerdict{SlotIndex: 7, Confidence: 0.99}}

	run := startRun(t, eng, "Court #2 at 2 PM", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	alts := got.Result.Alternatives
	if len(alts) != 2 || alts[0].Court != 5 || alts[1].Court != 2 {
		t.Errorf("out-of-range verdict index must be discarded, got %+v", alts)
	}
}

func TestExecuteRunEmptyGridIsFullAvailability(t *testing.T) {
	driver := &fakeDriver{} // zero booked cells
	eng, _ := newTestEngine(driver)

	run := startRun(t, eng, "anything goes", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if got.Status != models.StateExactMatchFound {
		t.Fatalf("status = %s, want %s (%s)", got.Status, models.StateExactMatchFound, got.Result.Message)
	}
	// Same-day request with the grid clock at noon: past increments excluded.
	if got.Result.MatchedSlot == nil || got.Result.MatchedSlot.Court != 1 || got.Result.MatchedSlot.Start != 720 {
		t.Errorf("matched slot = %+v, want court 1 @720", got.Result.MatchedSlot)
	}
	if len(got.Result.Alternatives) != 5 {
		t.Errorf("secondary matches should be capped at 5, got %d", len(got.Result.Alternatives))
	}
	if !strings.Contains(got.Result.Message, "open slots on 2026-08-25") {
		t.Errorf("unconstrained message should summarize availability: %q", got.Result.Message)
	}
}

func TestExecuteRunNavigateErrorFailsRun(t *testing.T) {
	driver := &fakeDriver{navigateErr: errors.New("timeout waiting for schedule")}
	eng, _ := newTestEngine(driver)

	run := startRun(t, eng, "court 1 tomorrow", false)
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() should land on a terminal state, not error: %v", err)
	}

	if got.Status != models.StateReservationFailed {
		t.Fatalf("status = %s, want %s", got.Status, models.StateReservationFailed)
	}
	if !strings.Contains(got.FailureReason, "timeout waiting for schedule") {
		t.Errorf("failure reason %q should carry the navigation error", got.FailureReason)
	}
}

func TestExecuteRunSkipsTerminalRun(t *testing.T) {
	driver := &fakeDriver{}
	eng, store := newTestEngine(driver)
	done := &models.BookingRun{RunID: "done-run", Status: models.StateConfirmed}
	if err := store.Save(context.Background(), done); err != nil {
		t.Fatal(err)
	}

	got, err := eng.ExecuteRun(context.Background(), "done-run")
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}
	if got.Status != models.StateConfirmed {
		t.Errorf("status = %s, want untouched %s", got.Status, models.StateConfirmed)
	}
	if len(driver.navigations) != 0 {
		t.Errorf("terminal run must not touch the portal, got %d navigations", len(driver.navigations))
	}
}

func TestStartRunValidation(t *testing.T) {
	eng, store := newTestEngine(&fakeDriver{})
	ctx := context.Background()

	if _, err := eng.StartRun(ctx, "   ", "", false, ""); err == nil {
		t.Error("blank text should be rejected")
	}
	if _, err := eng.StartRun(ctx, "court 3", "02/25/2026", false, ""); err == nil {
		t.Error("non-ISO date override should be rejected")
	}

	run, err := eng.StartRun(ctx, "court 3 at 2 pm", "2026-08-30", true, "tok")
	if err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}
	if run.Status != models.StateParsingRequest {
		t.Errorf("initial status = %s, want %s", run.Status, models.StateParsingRequest)
	}
	if !run.Execute || run.DateOverride != "2026-08-30" || run.DeviceToken != "tok" {
		t.Errorf("run fields not carried: %+v", run)
	}
	if _, ok := store.runs[run.RunID]; !ok {
		t.Error("run should be persisted on start")
	}
}

func TestExecuteRunAppliesDateOverride(t *testing.T) {
	driver := &fakeDriver{cells: morningBaseline()}
	eng, _ := newTestEngine(driver)

	run, err := eng.StartRun(context.Background(), "Book Court #3 tomorrow at 2 PM", "2026-08-30", false, "")
	if err != nil {
		t.Fatalf("StartRun() error: %v", err)
	}
	got, err := eng.ExecuteRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("ExecuteRun() error: %v", err)
	}

	if len(driver.navigations) == 0 || driver.navigations[0] != "2026-08-30" {
		t.Errorf("navigated to %v, override should win over the parsed date", driver.navigations)
	}
	if got.Request.Date == nil || *got.Request.Date != "2026-08-30" {
		t.Errorf("request date = %v, want the override", got.Request.Date)
	}
}

func TestGetRunFallsBackToArchive(t *testing.T) {
	eng, _ := newTestEngine(&fakeDriver{})
	archive := &fakeArchive{archived: []models.BookingRun{
		{RunID: "old-run", Status: models.StateConfirmed},
	}}
	eng.Archive = archive

	got, err := eng.GetRun(context.Background(), "old-run")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.RunID != "old-run" || got.Status != models.StateConfirmed {
		t.Errorf("got %+v, want the archived run", got)
	}

	if _, err := eng.GetRun(context.Background(), "never-existed"); !IsRunNotFound(err) {
		t.Errorf("unknown run should stay not-found, got %v", err)
	}
}
