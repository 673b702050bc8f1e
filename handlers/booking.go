package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"courtpilot/services/booking"
	"courtpilot/services/extraction"
)

// BookingHandler exposes the booking engine over HTTP. Enqueue hands a
// registered run to the worker queue; it is injected so tests can run the
// handler without Redis.
type BookingHandler struct {
	Engine  booking.BookingEngine
	Enqueue func(ctx context.Context, runID string) error
	Logger  *zap.Logger
}

func NewBookingHandler(engine booking.BookingEngine, enqueue func(ctx context.Context, runID string) error, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Engine:  engine,
		Enqueue: enqueue,
		Logger:  logger,
	}
}

// StartRunRequest is the POST body for a new booking run.
type StartRunRequest struct {
	Text        string `json:"text" binding:"required"`
	Date        string `json:"date"`        // optional YYYY-MM-DD, wins over any date parsed from Text
	Execute     bool   `json:"execute"`     // false = report availability only
	DeviceToken string `json:"deviceToken"` // optional FCM token for the outcome push
}

// StartRun registers a run and queues it for the worker. The response is the
// accepted run in its initial state; clients poll GetRun for progress.
func (h *BookingHandler) StartRun(c *gin.Context) {
	var req StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	run, err := h.Engine.StartRun(c.Request.Context(), req.Text, req.Date, req.Execute, req.DeviceToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.Enqueue(c.Request.Context(), run.RunID); err != nil {
		h.Logger.Error("failed to enqueue booking run", zap.String("runId", run.RunID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue booking run", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"runId":  run.RunID,
		"status": run.Status,
	})
}

// GetRun returns a run by ID, live or archived.
func (h *BookingHandler) GetRun(c *gin.Context) {
	runID := c.Param("runID")
	run, err := h.Engine.GetRun(c.Request.Context(), runID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Availability reads the portal grid for one date without starting a run.
// An empty date means today.
func (h *BookingHandler) Availability(c *gin.Context) {
	date := c.Query("date")
	model, err := h.Engine.Availability(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model)
}

// respondError maps the engine's error taxonomy onto HTTP statuses. Grid
// extraction failures are upstream problems: the portal rendered something we
// could not read.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	switch {
	case booking.IsBadRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case booking.IsRunNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case extraction.IsLayoutMismatch(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		var ge *extraction.GridError
		if errors.As(err, &ge) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		h.Logger.Error("booking request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
