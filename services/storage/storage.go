package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const screenshotFolder = "courtpilot/screenshots"

// CloudinaryStore implements ArtifactStore on Cloudinary.
type CloudinaryStore struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	apiSecret string
}

// NewCloudinaryStore creates a CloudinaryStore from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("CloudinaryStore: failed to initialize client: %w", err)
	}
	return &CloudinaryStore{
		cld:       cld,
		cloudName: cloudName,
		apiSecret: apiSecret,
	}, nil
}

// UploadScreenshot stores the PNG under a run-keyed public ID and returns the
// delivery URL. Re-submitting the same run overwrites its previous screenshot.
func (s *CloudinaryStore) UploadScreenshot(ctx context.Context, runID string, png []byte) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(png), uploader.UploadParams{
		Folder:    screenshotFolder,
		PublicID:  runID,
		Overwrite: api.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to upload screenshot: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("CloudinaryStore: no URL returned for run %s", runID)
	}
	return result.SecureURL, nil
}

// DeleteScreenshot removes a run's screenshot. The retention job calls this
// once the run ages out of history.
func (s *CloudinaryStore) DeleteScreenshot(ctx context.Context, runID string) error {
	publicID := screenshotFolder + "/" + runID
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("CloudinaryStore: failed to delete screenshot: %w", err)
	}
	return nil
}

// SignedScreenshotURL generates a signed, short-lived URL for a screenshot.
// It manually computes a signature using SHA-1 over "expires_at" and
// "public_id" concatenated with the API secret.
func (s *CloudinaryStore) SignedScreenshotURL(runID string, expires time.Duration) (string, error) {
	publicID := screenshotFolder + "/" + runID
	expiresAt := time.Now().Add(expires).Unix()
	stringToSign := fmt.Sprintf("expires_at=%d&public_id=%s%s", expiresAt, publicID, s.apiSecret)
	signature := computeSHA1(stringToSign)
	secureURL := fmt.Sprintf("https://res.cloudinary.com/%s/image/authenticated/s--%s--/expires_%d/%s", s.cloudName, signature, expiresAt, publicID)
	return secureURL, nil
}

// computeSHA1 computes the SHA-1 hash of the input and returns its hex encoding.
func computeSHA1(input string) string {
	h := sha1.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}
