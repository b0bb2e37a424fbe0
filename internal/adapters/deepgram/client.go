// Package deepgram implements the transcription gateway on top of the
// Deepgram pre-recorded audio API.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emiliopalmerini/echonote/internal/domain"
)

const (
	DefaultBaseURL = "https://api.deepgram.com"
	DefaultModel   = "nova-3"
	defaultMIME    = "audio/wav"

	// errorBodyLimit caps how much of a failed response is kept for the error message.
	errorBodyLimit = 4 << 10
)

// Config holds Deepgram client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client sends audio to Deepgram and extracts the transcript text.
type Client struct {
	apiKey     string
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a new Deepgram client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Deepgram API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid Deepgram base URL: %w", err)
	}
	endpoint := base.JoinPath("v1", "listen")
	q := endpoint.Query()
	q.Set("model", cfg.Model)
	q.Set("smart_format", "true")
	endpoint.RawQuery = q.Encode()

	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint.String(),
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}, nil
}

// listenResponse is the part of the /v1/listen response we read.
type listenResponse struct {
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe streams audio to Deepgram and returns the first alternative of
// the first channel. Errors wrap domain.ErrTranscriptionTimeout when the
// configured timeout or ctx deadline expires, domain.ErrTranscriptionFailed
// otherwise.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if mimeType == "" {
		mimeType = defaultMIME
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, audio)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", domain.ErrTranscriptionFailed, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionTimeout, err)
		}
		return "", fmt.Errorf("%w: request failed: %v", domain.ErrTranscriptionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", fmt.Errorf("%w: Deepgram returned status %d: %s", domain.ErrTranscriptionFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed listenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionTimeout, err)
		}
		return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrTranscriptionFailed, err)
	}

	if parsed.Results == nil ||
		len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("%w: response has no transcript alternatives", domain.ErrTranscriptionFailed)
	}

	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
