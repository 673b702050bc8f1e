package storage

import (
	"strings"
	"testing"
	"time"
)

func TestSignedScreenshotURL(t *testing.T) {
	s := &CloudinaryStore{cloudName: "demo", apiSecret: "shhh"}

	url, err := s.SignedScreenshotURL("run-123", time.Hour)
	if err != nil {
		t.Fatalf("SignedScreenshotURL() error: %v", err)
	}
	if !strings.HasPrefix(url, "https://res.cloudinary.com/demo/image/authenticated/s--") {
		t.Errorf("unexpected URL prefix: %s", url)
	}
	if !strings.HasSuffix(url, screenshotFolder+"/run-123") {
		t.Errorf("URL should end with the screenshot public ID: %s", url)
	}
}

func TestComputeSHA1(t *testing.T) {
	got := computeSHA1("abc")
	want := "a9993e364706816aba3e25717850c26c9cd0d89d"
	if got != want {
		t.Errorf("computeSHA1(abc) = %s, want %s", got, want)
	}
	if len(computeSHA1("anything")) != 40 {
		t.Error("SHA-1 hex digest should be 40 characters")
	}
}
