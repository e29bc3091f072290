package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxVoiceBytes caps a single uploaded recording.
	MaxVoiceBytes = 10 << 20

	DefaultEndpoint = "https://api.openai.com/v1/audio/transcriptions"
	DefaultModel    = "whisper-1"
	DefaultTimeout  = 120 * time.Second
)

var (
	ErrUnauthorized = errors.New("transcription provider rejected credentials")
	ErrRateLimited  = errors.New("transcription provider temporarily unavailable")
	ErrUnavailable  = errors.New("transcription provider unavailable")
	ErrTooLarge     = errors.New("audio file too large")
	ErrEmptyAudio   = errors.New("audio file is empty")
)

// Config selects a Whisper-compatible endpoint (OpenAI or Groq).
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
	MaxBytes int64
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = MaxVoiceBytes
	}
	return c
}

// Audio is one uploaded recording.
type Audio struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Transcript struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Transcriber turns a recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (*Transcript, error)
}

type whisperClient struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) Transcriber {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &whisperClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *whisperClient) Transcribe(ctx context.Context, audio Audio) (*Transcript, error) {
	if len(audio.Data) == 0 {
		return nil, ErrEmptyAudio
	}
	if int64(len(audio.Data)) > c.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(audio.Data), c.cfg.MaxBytes)
	}
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnauthorized)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filepath.Base(CoalesceName(audio.Filename)))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	for k, v := range map[string]string{"model": c.cfg.Model, "response_format": "json"} {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("writing %s field: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "transcription failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", truncate(string(respBody), 200)))
		return nil, statusError(resp.StatusCode, respBody)
	}

	var out Transcript
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	out.Text = strings.TrimSpace(out.Text)
	c.logger.InfoContext(ctx, "transcription complete",
		slog.Int("bytes", len(audio.Data)),
		slog.Int("chars", len(out.Text)),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()))
	return &out, nil
}

func statusError(status int, body []byte) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := fmt.Sprintf("status %d", status)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, msg)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", ErrTooLarge, msg)
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, msg)
}

// CoalesceName returns a usable file name for an upload.
func CoalesceName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" {
		return "recording.webm"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
