package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"courtpilot/config"
	"courtpilot/services/booking"
	"courtpilot/utils"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

const (
	MaxDurationSeconds = 60              // 1 minute maximum
	MaxFileSize        = 5 * 1024 * 1024 // 5MB (conservative buffer)
	AllowedExtension   = ".wav"
)

// VoiceHandler turns a spoken booking request into a queued run: transcribe
// the clip, then start a run with the transcript as its raw text.
type VoiceHandler struct {
	Engine  booking.BookingEngine
	Enqueue func(ctx context.Context, runID string) error
}

func NewVoiceHandler(engine booking.BookingEngine, enqueue func(ctx context.Context, runID string) error) *VoiceHandler {
	return &VoiceHandler{Engine: engine, Enqueue: enqueue}
}

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}

	var header waveHeader
	buf := bytes.NewReader(data)

	if err := binary.Read(buf, binary.LittleEndian, &header.RiffTag); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.FileSize); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.WaveTag); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.FmtTag); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.FmtSize); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.AudioFormat); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.NumChannels); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.SampleRate); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.ByteRate); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.BlockAlign); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.BitsPerSample); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.DataTag); err != nil {
		return nil, err
	}
	if err := binary.Read(buf, binary.LittleEndian, &header.DataSize); err != nil {
		return nil, err
	}

	return &header, nil
}

// clipSeconds derives the clip length from the header. Returns 0 when the
// header does not carry enough to tell.
func (h *waveHeader) clipSeconds() float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}

func convertAudio(inputPath, outputPath string) error {
	_, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %v", err)
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}

// VoiceRun accepts a spoken request as a multipart WAV upload, transcribes it
// and queues a booking run from the transcript.
func (h *VoiceHandler) VoiceRun(c *gin.Context) {
	// 1. Form parameters; the booking knobs mirror the JSON endpoint.
	language := c.DefaultPostForm("language", "en-US")
	execute, _ := strconv.ParseBool(c.DefaultPostForm("execute", "false"))
	dateOverride := c.PostForm("date")
	deviceToken := c.PostForm("deviceToken")

	// 2. Get audio file from multipart form
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "audio file is required", err.Error())
		return
	}
	defer file.Close()

	// 3. Validate file extension
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != AllowedExtension {
		utils.JSONError(c, http.StatusBadRequest, "invalid file type",
			fmt.Sprintf("expected %s, got %s", AllowedExtension, ext))
		return
	}

	// 4. Read the upload (bounded) and validate the WAV header before paying
	// for conversion or recognition.
	raw, err := io.ReadAll(io.LimitReader(file, MaxFileSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to read audio file",
			"details": err.Error(),
		})
		return
	}
	wav, err := parseWaveHeader(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid WAV file", err.Error())
		return
	}
	if secs := wav.clipSeconds(); secs > MaxDurationSeconds {
		utils.JSONError(c, http.StatusBadRequest, "audio clip too long",
			fmt.Sprintf("%.0fs exceeds the %ds limit", secs, MaxDurationSeconds))
		return
	}

	// 5. Stage the upload for conversion.
	tempInput, err := os.CreateTemp("", "audio-*.wav")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to create temp file",
			"details": err.Error(),
		})
		return
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()
	if _, err := tempInput.Write(raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to save audio file",
			"details": err.Error(),
		})
		return
	}

	// 6. Create temp file for converted audio
	tempOutput, err := os.CreateTemp("", "converted-*.wav")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to create output temp file",
			"details": err.Error(),
		})
		return
	}
	defer os.Remove(tempOutput.Name())
	defer tempOutput.Close()

	// 7. Convert audio to LINEAR16 mono at 16kHz
	if err := convertAudio(tempInput.Name(), tempOutput.Name()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "audio conversion failed",
			"details": err.Error(),
		})
		return
	}

	// 8. Read converted audio data
	audioData, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to read converted audio",
			"details": err.Error(),
		})
		return
	}

	// 9. Transcribe with Google STT
	transcript, err := transcribe(c.Request.Context(), audioData, language)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "speech recognition failed",
			"details": err.Error(),
		})
		return
	}
	if transcript == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "could not understand the audio, please try again",
		})
		return
	}

	// 10. Start the run from the transcript and hand it to the worker.
	run, err := h.Engine.StartRun(c.Request.Context(), transcript, dateOverride, execute, deviceToken)
	if err != nil {
		if booking.IsBadRequest(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "transcription": transcript})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "transcription": transcript})
		return
	}
	if err := h.Enqueue(c.Request.Context(), run.RunID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to queue booking run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"transcription": transcript,
		"runId":         run.RunID,
		"status":        run.Status,
	})
}

func transcribe(ctx context.Context, audioData []byte, language string) (string, error) {
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(config.AppConfig.GoogleServiceAccountFile))
	if err != nil {
		return "", fmt.Errorf("failed to initialize speech client: %w", err)
	}
	defer client.Close()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   16000,
			LanguageCode:      language,
			AudioChannelCount: 1, // Mono
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audioData,
			},
		},
	}

	resp, err := client.Recognize(ctx, req)
	if err != nil {
		return "", err
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			transcript.WriteString(alt.Transcript + " ")
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}
