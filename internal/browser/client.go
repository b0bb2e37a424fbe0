package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/echonote/internal/domain"
	"github.com/emiliopalmerini/echonote/internal/upload"
)

const unknownError = "Unknown error"

// APIError is a non-2xx answer from the echonote API. Message is the
// server's "error" field, or "Unknown error" when it sent none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the /api surface of an echonote server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient
// uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]domain.Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/transcriptions", nil)
	if err != nil {
		return nil, err
	}

	var list []domain.Transcript
	if err := c.do(req, &list, nil); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/transcriptions/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil, nil)
}

// Upload sends audio as the "audio" form field. When the server transcribed
// the file but could not store it, Upload returns the partial result along
// with the error.
func (c *Client) Upload(ctx context.Context, filename, mimeType string, audio io.Reader) (*upload.Result, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filepath.Base(filename)))
		h.Set("Content-Type", mimeType)

		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, audio)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var res upload.Result
	var partial upload.Result
	if err := c.do(req, &res, &partial); err != nil {
		_ = pr.CloseWithError(err)
		if partial.Transcription != "" {
			return &partial, err
		}
		return nil, err
	}
	return &res, nil
}

// do sends req and decodes a 2xx body into out. On failure the body is
// decoded into errExtra as well, when given.
func (c *Client) do(req *http.Request, out, errExtra any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: unknownError}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		if errExtra != nil {
			_ = json.Unmarshal(body, errExtra)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
