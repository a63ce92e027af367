// Package speech converts recorded answers to text through an
// OpenAI-compatible transcription endpoint (Groq, OpenAI, whisper.cpp server).
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Audio is one recorded clip.
type Audio struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// Transcriber turns an audio clip into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// TranscriptionError is returned when the speech service fails or produces
// an empty transcript.
type TranscriptionError struct {
	Reason  string
	Wrapped error
}

func (e *TranscriptionError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("transcription failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("transcription failed: %s", e.Reason)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Wrapped
}

// Client posts audio to {url}/v1/audio/transcriptions.
type Client struct {
	url     string
	model   string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

var _ Transcriber = (*Client)(nil)

func NewClient(url, model, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url:     strings.TrimRight(url, "/"),
		model:   model,
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transcribe uploads the clip as multipart/form-data and returns the trimmed
// transcript.
func (c *Client) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if audio.Data == nil {
		return "", &TranscriptionError{Reason: "no audio data"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	filename := audio.Filename
	if filename == "" {
		filename = "answer.webm"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", c.model); err != nil {
		return "", &TranscriptionError{Reason: "build form", Wrapped: err}
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", &TranscriptionError{Reason: "build form", Wrapped: err}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", &TranscriptionError{Reason: "build form", Wrapped: err}
	}
	n, err := io.Copy(part, audio.Data)
	if err != nil {
		return "", &TranscriptionError{Reason: "read audio", Wrapped: err}
	}
	if n == 0 {
		return "", &TranscriptionError{Reason: "empty audio"}
	}
	if err := mw.Close(); err != nil {
		return "", &TranscriptionError{Reason: "build form", Wrapped: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", &TranscriptionError{Reason: "create request", Wrapped: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TranscriptionError{Reason: "request failed", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &TranscriptionError{
			Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TranscriptionError{Reason: "decode response", Wrapped: err}
	}
	if out.Error != nil {
		return "", &TranscriptionError{Reason: out.Error.Message}
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", &TranscriptionError{Reason: "empty transcript"}
	}
	return text, nil
}
