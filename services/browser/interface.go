package browser

import (
	"context"
	"time"

	"courtpilot/models"
)

// PageDriver is the surface the booking engine needs from a rendered portal
// session. The chromedp implementation below is the production driver; tests
// substitute an in-memory fake.
type PageDriver interface {
	// Navigate loads the booking grid for one date (YYYY-MM-DD) and waits
	// for the schedule to render.
	Navigate(ctx context.Context, date string) error

	// CollectCells lifts every visible booking element off the page with its
	// text and bounding geometry. Court identity is NOT resolved here; that
	// is the column-inference pass's job.
	CollectCells(ctx context.Context) ([]models.GridCell, error)

	// VisitorMode reports whether the portal is serving the logged-out,
	// limited-visibility view.
	VisitorMode(ctx context.Context) (bool, error)

	// Login authenticates against the portal. Safe to call when already
	// logged in.
	Login(ctx context.Context, email, password string) error

	// SubmitReservation walks the portal's booking dialog for the slot:
	// select the cell, confirm, verify the outcome indicators.
	SubmitReservation(ctx context.Context, slot models.BookingSlot) error

	// CaptureScreenshot returns a PNG of the current viewport, used for
	// run artifacts.
	CaptureScreenshot(ctx context.Context) ([]byte, error)

	Close() error
}

// Options configures the chromedp driver.
type Options struct {
	BaseURL          string        // booking page, e.g. https://ocbadminton.skedda.com/booking
	Headless         bool
	NavigateTimeout  time.Duration // budget for one navigation including render wait
	InteractionDelay time.Duration // settle time after clicks and form fills
	CourtCount       int           // expected columns, used when locating a cell by position
}
