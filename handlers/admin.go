// File: courtpilot/handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	runsRepo "courtpilot/database/repository/runs"
	"courtpilot/models"
	"courtpilot/services/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes run history and artifact access for operators.
type AdminHandler struct {
	Archive   runsRepo.RunHistoryRepository
	Artifacts storage.ArtifactStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(archive runsRepo.RunHistoryRepository, artifacts storage.ArtifactStore) *AdminHandler {
	return &AdminHandler{
		Archive:   archive,
		Artifacts: artifacts,
	}
}

// RecentRunsHandler returns the newest archived runs, most recent first.
func (ah *AdminHandler) RecentRunsHandler(c *gin.Context) {
	limit := int64(50)
	if s := c.Query("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	runs, err := ah.Archive.Recent(c.Request.Context(), limit)
	if err != nil {
		zap.L().Error("Failed to fetch recent runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// RunsByDateHandler returns all archived runs whose request targeted a date.
func (ah *AdminHandler) RunsByDateHandler(c *gin.Context) {
	date := c.Param("date")
	if _, err := models.ParseDate(date, time.UTC); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad date, want YYYY-MM-DD"})
		return
	}

	runs, err := ah.Archive.ListByDate(c.Request.Context(), date)
	if err != nil {
		zap.L().Error("Failed to fetch runs by date", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}
	c.JSON(http.StatusOK, runs)
}

// RunScreenshotHandler returns a short-lived signed URL for a run's
// reservation screenshot.
func (ah *AdminHandler) RunScreenshotHandler(c *gin.Context) {
	if ah.Artifacts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "screenshot storage not configured"})
		return
	}
	runID := c.Param("runID")

	run, err := ah.Archive.GetByID(c.Request.Context(), runID)
	if err != nil {
		zap.L().Error("Failed to fetch run for screenshot", zap.String("runId", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}
	if run == nil || run.ScreenshotURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no screenshot recorded for this run"})
		return
	}

	expiry := 15 * time.Minute
	if expStr := c.Query("expires"); expStr != "" {
		if exp, err := time.ParseDuration(expStr); err == nil {
			expiry = exp
		}
	}

	url, err := ah.Artifacts.SignedScreenshotURL(runID, expiry)
	if err != nil {
		zap.L().Error("Failed to sign screenshot URL", zap.String("runId", runID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadURL": url})
}
