package cron

import (
	"context"
	"log"
	"time"

	"courtpilot/config"
	runsRepo "courtpilot/database/repository/runs"
	"courtpilot/services/storage"
)

// InitRetentionSweeper prunes archived runs past the configured retention
// window once a day. Screenshots are destroyed before their runs so a failed
// sweep never orphans Cloudinary assets.
func InitRetentionSweeper(archive runsRepo.RunHistoryRepository, artifacts storage.ArtifactStore) {
	days := config.AppConfig.RunRetentionDays
	if days <= 0 {
		log.Println("[Retention] Run retention disabled (RUN_RETENTION_DAYS <= 0)")
		return
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		sweep(archive, artifacts, days)
		for range ticker.C {
			sweep(archive, artifacts, days)
		}
	}()
}

func sweep(archive runsRepo.RunHistoryRepository, artifacts storage.ArtifactStore, days int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -days)

	if artifacts != nil {
		expired, err := archive.ListOlderThan(ctx, cutoff)
		if err != nil {
			log.Printf("[Retention] ⚠️ Failed to list expired runs: %v", err)
			return
		}
		for _, run := range expired {
			if run.ScreenshotURL == "" {
				continue
			}
			if err := artifacts.DeleteScreenshot(ctx, run.RunID); err != nil {
				log.Printf("[Retention] ⚠️ Failed to delete screenshot for run %s: %v", run.RunID, err)
			}
		}
	}

	deleted, err := archive.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[Retention] ❌ Sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Retention] 🧹 Pruned %d runs older than %d days", deleted, days)
	}
}
