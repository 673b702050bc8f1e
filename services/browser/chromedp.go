package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"courtpilot/models"
	"courtpilot/services/extraction"
	"courtpilot/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Driver runs a single headless Chrome session against the booking portal.
// One browser, one tab: the run queue upstream serializes runs, and the rate
// limiter here spaces individual portal actions so the site never sees bursts.
type Driver struct {
	opts Options

	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelTab   context.CancelFunc

	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewDriver(opts Options) (*Driver, error) {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 30 * time.Second
	}
	if opts.InteractionDelay <= 0 {
		opts.InteractionDelay = 500 * time.Millisecond
	}
	if opts.CourtCount <= 0 {
		opts.CourtCount = 8
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1400, 1000),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &Driver{
		opts:        opts,
		cancelAlloc: cancelAlloc,
		browserCtx:  browserCtx,
		cancelTab:   cancelTab,
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:      utils.GetLogger(),
	}, nil
}

func (d *Driver) Close() error {
	d.cancelTab()
	d.cancelAlloc()
	return nil
}

// tabContext bounds a chromedp run by both the driver's browser session and
// the caller's cancellation.
func (d *Driver) tabContext(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(d.browserCtx, budget)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

func (d *Driver) Navigate(ctx context.Context, date string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	target, err := d.gridURL(date)
	if err != nil {
		return err
	}

	tctx, cancel := d.tabContext(ctx, d.opts.NavigateTimeout)
	defer cancel()

	d.logger.Info("Navigating to booking grid",
		zap.String("date", date),
		zap.String("url", target))

	var dismissed bool
	err = chromedp.Run(tctx,
		chromedp.Navigate(target),
		chromedp.ActionFunc(d.waitForSchedule),
		chromedp.Evaluate(dismissDialogScript, &dismissed),
		chromedp.Sleep(d.opts.InteractionDelay),
	)
	if err != nil {
		return fmt.Errorf("loading grid for %s: %w", date, err)
	}
	return nil
}

// waitForSchedule polls until the grid renders something. An empty day has no
// booking cells, so the schedule container itself counts as rendered.
func (d *Driver) waitForSchedule(ctx context.Context) error {
	for {
		var ready bool
		if err := chromedp.Evaluate(scheduleReadyScript, &ready).Do(ctx); err != nil {
			return err
		}
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("schedule did not render: %w", ctx.Err())
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (d *Driver) CollectCells(ctx context.Context) ([]models.GridCell, error) {
	tctx, cancel := d.tabContext(ctx, d.opts.NavigateTimeout)
	defer cancel()

	var cells []models.GridCell
	if err := chromedp.Run(tctx, chromedp.Evaluate(collectCellsScript, &cells)); err != nil {
		return nil, fmt.Errorf("collecting booking cells: %w", err)
	}
	d.logger.Debug("Collected booking cells", zap.Int("count", len(cells)))
	return cells, nil
}

func (d *Driver) VisitorMode(ctx context.Context) (bool, error) {
	tctx, cancel := d.tabContext(ctx, d.opts.NavigateTimeout)
	defer cancel()

	var text string
	if err := chromedp.Run(tctx, chromedp.Evaluate(pageTextScript, &text)); err != nil {
		return false, fmt.Errorf("reading page text: %w", err)
	}
	upper := strings.ToUpper(text)
	return strings.Contains(upper, visitorModeMarker) ||
		strings.Contains(upper, limitedVisibilityMarker), nil
}

func (d *Driver) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("portal credentials not configured")
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	tctx, cancel := d.tabContext(ctx, 2*d.opts.NavigateTimeout)
	defer cancel()

	d.logger.Info("Logging in to booking portal")

	var opened bool
	err := chromedp.Run(tctx,
		chromedp.Navigate(d.rootURL()),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(jsCall(clickByTextScript, loginLinkPatterns), &opened),
		chromedp.Sleep(d.opts.InteractionDelay),
	)
	if err != nil {
		return fmt.Errorf("opening login form: %w", err)
	}
	if !opened {
		return fmt.Errorf("login button not found on %s", d.rootURL())
	}

	userSel, err := d.probe(tctx, usernameSelectors)
	if err != nil {
		return err
	}
	passSel, err := d.probe(tctx, passwordSelectors)
	if err != nil {
		return err
	}
	if userSel == "" || passSel == "" {
		return fmt.Errorf("login form fields not found")
	}

	err = chromedp.Run(tctx,
		chromedp.SendKeys(userSel, email, chromedp.ByQuery),
		chromedp.SendKeys(passSel, password, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("filling login form: %w", err)
	}

	submitSel, err := d.probe(tctx, submitSelectors)
	if err != nil {
		return err
	}
	if submitSel != "" {
		err = chromedp.Run(tctx, chromedp.Click(submitSel, chromedp.ByQuery))
	} else {
		var clicked bool
		err = chromedp.Run(tctx, chromedp.Evaluate(jsCall(clickByTextScript, loginLinkPatterns), &clicked))
	}
	if err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	var text string
	err = chromedp.Run(tctx,
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(pageTextScript, &text),
	)
	if err != nil {
		return fmt.Errorf("verifying login: %w", err)
	}
	upper := strings.ToUpper(text)
	if strings.Contains(upper, visitorModeMarker) || strings.Contains(upper, limitedVisibilityMarker) {
		return fmt.Errorf("login did not clear visitor mode, check credentials")
	}

	d.logger.Info("Portal login complete")
	return nil
}

// probe returns the first selector from the list that matches a visible
// element on the page, or the empty string when none do.
func (d *Driver) probe(ctx context.Context, selectors []string) (string, error) {
	var sel string
	if err := chromedp.Run(ctx, chromedp.Evaluate(jsCall(probeSelectorScript, selectors), &sel)); err != nil {
		return "", fmt.Errorf("probing selectors: %w", err)
	}
	return sel, nil
}

// outcomeProbe samples the page state after a booking interaction.
type outcomeProbe struct {
	Success bool `json:"success"`
	Failure bool `json:"failure"`
	Modals  int  `json:"modals"`
	Forms   int  `json:"forms"`
}

func (d *Driver) SubmitReservation(ctx context.Context, slot models.BookingSlot) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	tctx, cancel := d.tabContext(ctx, 2*d.opts.NavigateTimeout)
	defer cancel()

	d.logger.Info("Submitting reservation", zap.String("slot", slot.Label()))

	// Free cells render as empty grid space, so the primary path clicks the
	// slot's computed position. The text match below covers portals that
	// render a clickable placeholder instead.
	x, y, locErr := d.locateSlotPoint(tctx, slot)
	if locErr == nil {
		err := chromedp.Run(tctx,
			chromedp.MouseClickXY(x, y),
			chromedp.Sleep(d.opts.InteractionDelay),
		)
		if err != nil {
			return fmt.Errorf("clicking slot cell: %w", err)
		}
	} else {
		d.logger.Warn("Positional slot lookup failed, trying text match", zap.Error(locErr))
	}

	probe, err := d.outcome(tctx)
	if err != nil {
		return err
	}
	if probe.Modals == 0 && probe.Forms == 0 {
		needle := models.FormatMinutes(slot.Start) + "–" + models.FormatMinutes(slot.End)
		var clicked bool
		err = chromedp.Run(tctx,
			chromedp.Evaluate(jsCall(clickSlotScript, needle), &clicked),
			chromedp.Sleep(d.opts.InteractionDelay),
		)
		if err != nil {
			return fmt.Errorf("clicking slot by text: %w", err)
		}
		if !clicked && locErr != nil {
			return fmt.Errorf("slot cell not found for %s", slot.Label())
		}
	}

	var confirmed bool
	err = chromedp.Run(tctx,
		chromedp.Evaluate(jsCall(clickByTextScript, confirmPatterns), &confirmed),
		chromedp.Sleep(2*d.opts.InteractionDelay),
	)
	if err != nil {
		return fmt.Errorf("confirming reservation: %w", err)
	}

	probe, err = d.outcome(tctx)
	if err != nil {
		return err
	}
	switch {
	case probe.Success:
		d.logger.Info("Reservation confirmed by portal", zap.String("slot", slot.Label()))
		return nil
	case probe.Failure:
		return fmt.Errorf("portal rejected reservation for %s", slot.Label())
	default:
		return fmt.Errorf("no confirmation shown for %s", slot.Label())
	}
}

func (d *Driver) outcome(ctx context.Context) (outcomeProbe, error) {
	var probe outcomeProbe
	if err := chromedp.Run(ctx, chromedp.Evaluate(outcomeScript, &probe)); err != nil {
		return probe, fmt.Errorf("probing booking outcome: %w", err)
	}
	return probe, nil
}

// locateSlotPoint computes a click point for a slot that has no rendered
// element of its own.
func (d *Driver) locateSlotPoint(ctx context.Context, slot models.BookingSlot) (float64, float64, error) {
	var cells []models.GridCell
	if err := chromedp.Evaluate(collectCellsScript, &cells).Do(ctx); err != nil {
		return 0, 0, err
	}
	return slotClickPoint(cells, d.opts.CourtCount, slot)
}

// slotClickPoint derives viewport coordinates for a free slot. X comes from
// the slot's court column; Y is interpolated from the booked cells' own time
// labels, which all share row alignment across columns.
func slotClickPoint(cells []models.GridCell, expectedCourts int, slot models.BookingSlot) (float64, float64, error) {
	assignment := extraction.InferColumns(cells)
	if err := assignment.Validate(expectedCourts); err != nil {
		return 0, 0, err
	}
	if slot.Court < 1 || slot.Court > len(assignment.Clusters) {
		return 0, 0, fmt.Errorf("court %d outside inferred columns", slot.Court)
	}
	cluster := assignment.Clusters[slot.Court-1]
	x := cluster.RepresentativeX + cells[cluster.Members[0]].Width/2

	type rowSample struct {
		minute int
		y      float64
	}
	var samples []rowSample
	for _, cell := range cells {
		start, _, err := extraction.ParseTimeRange(cell.Text)
		if err != nil {
			continue
		}
		samples = append(samples, rowSample{minute: start, y: cell.Y})
	}
	sort.Slice(samples, func(a, b int) bool { return samples[a].minute < samples[b].minute })
	if len(samples) < 2 || samples[0].minute == samples[len(samples)-1].minute {
		return 0, 0, fmt.Errorf("not enough timed cells to place %s", slot.Label())
	}

	first, last := samples[0], samples[len(samples)-1]
	pxPerMin := (last.y - first.y) / float64(last.minute-first.minute)
	y := first.y + pxPerMin*float64(slot.Start-first.minute) + pxPerMin*float64(slot.DurationMin())/2
	return x, y, nil
}

func (d *Driver) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	tctx, cancel := d.tabContext(ctx, d.opts.NavigateTimeout)
	defer cancel()

	var buf []byte
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}

func (d *Driver) gridURL(date string) (string, error) {
	u, err := url.Parse(d.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid portal url %q: %w", d.opts.BaseURL, err)
	}
	q := u.Query()
	q.Set("viewdate", date)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (d *Driver) rootURL() string {
	u, err := url.Parse(d.opts.BaseURL)
	if err != nil {
		return d.opts.BaseURL
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String()
}

// jsCall injects a Go value into a script template as its JSON literal.
func jsCall(script string, arg interface{}) string {
	data, err := json.Marshal(arg)
	if err != nil {
		data = []byte("null")
	}
	return fmt.Sprintf(script, data)
}
