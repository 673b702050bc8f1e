package storage

import (
	"context"
	"time"
)

// ArtifactStore persists run evidence (reservation screenshots) and serves
// back URLs the API can hand to callers.
type ArtifactStore interface {
	UploadScreenshot(ctx context.Context, runID string, png []byte) (string, error)
	DeleteScreenshot(ctx context.Context, runID string) error
	SignedScreenshotURL(runID string, expires time.Duration) (string, error)
}
