// Package httpnlp talks to an NLP service over HTTP.
//
// The service accepts POST {base}/analyze with {"text": ..., "lang": ...}
// and answers with an nlp.Analysis document. GET {base}/health returns 200
// when the model is loaded.
package httpnlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/nlp"
)

// DefaultTimeout applies when neither Timeout nor HTTPClient is set.
const DefaultTimeout = 30 * time.Second

// Client is an nlp.Analyzer backed by an HTTP service.
type Client struct {
	BaseURL  string
	Token    string
	Language string // defaults to "de"
	Timeout  time.Duration

	HTTPClient *http.Client
}

var _ nlp.Analyzer = (*Client)(nil)
var _ nlp.Pinger = (*Client)(nil)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("httpnlp: status %d", e.Code)
	}
	return fmt.Sprintf("httpnlp: status %d: %s", e.Code, e.Body)
}

// Unwrap maps server-side failures to internalerr.ErrBackendUnavailable.
func (e *StatusError) Unwrap() error {
	if e.Code >= 500 {
		return internalerr.ErrBackendUnavailable
	}
	return nil
}

type analyzeRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Analyze sends text to the service.
func (c *Client) Analyze(ctx context.Context, text string) (*nlp.Analysis, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("httpnlp: base URL required: %w", internalerr.ErrInvalidConfig)
	}
	lang := c.Language
	if lang == "" {
		lang = "de"
	}
	body, err := json.Marshal(analyzeRequest{Text: text, Lang: lang})
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out nlp.Analysis
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("httpnlp: decode response: %w", err)
	}
	return &out, nil
}

// Ping checks the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c.BaseURL == "" {
		return fmt.Errorf("httpnlp: base URL required: %w", internalerr.ErrInvalidConfig)
	}
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	url := strings.TrimRight(c.BaseURL, "/") + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpnlp: %s %s: %w: %w", method, endpoint, internalerr.ErrBackendUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
