// Package analyzer talks to the upstream running-analytics endpoint.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
)

// FileField is the multipart field carrying the upload.
const FileField = "file"

const maxResponseBytes = 64 << 20

// ErrMalformedResponse is returned when a successful response body is not a
// valid payload.
var ErrMalformedResponse = errors.New("malformed analyzer response")

// StatusError is a non-2xx response from the analyzer.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analyzer status %d: %s", e.Status, e.Body)
}

// Detail returns the FastAPI style {"detail": "..."} message when the body
// carries one, otherwise the HTTP status text.
func (e *StatusError) Detail() string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}
	if text := http.StatusText(e.Status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", e.Status)
}

type Client struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Default().WithPrefix("analyzer"),
	}
}

// Analyze posts one file as a multipart form and decodes the analytics
// payload. The raw response body is returned alongside the payload.
func (c *Client) Analyze(ctx context.Context, filename string, r io.Reader) (*models.Payload, []byte, error) {
	log := logger.FromContext(ctx).WithPrefix("analyzer").WithField("filename", filename)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(FileField, filename)
	if err != nil {
		log.Error("failed to create form file: %v", err)
		return nil, nil, err
	}
	size, err := io.Copy(part, r)
	if err != nil {
		log.Error("failed to read upload: %v", err)
		return nil, nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, nil, err
	}

	log.Debug("posting %d bytes to %s", size, c.url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("analyzer request failed: %v", err)
		return nil, nil, err
	}
	defer resp.Body.Close()

	log.Debug("analyzer response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("analyzer request failed: status=%d, body=%s", resp.StatusCode, string(b))
		return nil, nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		log.Error("failed to read analyzer response: %v", err)
		return nil, nil, err
	}
	if len(raw) > maxResponseBytes {
		return nil, nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformedResponse, maxResponseBytes)
	}

	payload, err := models.DecodePayload(raw)
	if err != nil {
		log.Error("failed to decode analyzer response: %v", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	log.Info("analyzed %s (%d bytes) in %v", filename, size, time.Since(start))
	return payload, raw, nil
}
