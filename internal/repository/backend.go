package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// errDecode marks a 2xx response whose body was not the expected JSON.
var errDecode = errors.New("failed to decode response")

// APIError is a non-2xx backend response reduced to one readable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Backend is the shared HTTP plumbing for the signage REST API.
type Backend struct {
	baseURL string
	client  *http.Client
}

// NewBackend builds a client for baseURL. A zero timeout keeps the transport default.
func NewBackend(baseURL string, timeout time.Duration) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func NewBackendWithClient(baseURL string, client *http.Client) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func accountPath(accountID string, segments ...string) string {
	parts := []string{"account", url.PathEscape(accountID)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return "/" + strings.Join(parts, "/")
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

func (b *Backend) do(ctx context.Context, req request) (*http.Response, error) {
	target := b.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	return resp, nil
}

// call issues req and decodes a 2xx JSON body into out (skipped when out is nil
// or the body is empty). Non-2xx responses become *APIError with fallback as
// the last-resort message.
func (b *Backend) call(ctx context.Context, req request, out interface{}, fallback string) (*http.Response, error) {
	resp, err := b.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, readError(resp, fallback)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return resp, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp, fmt.Errorf("%w: %v", errDecode, err)
	}
	return resp, nil
}

// readError extracts the first readable message: JSON message, JSON error,
// then plain text, then fallback.
func readError(resp *http.Response, fallback string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{
		Status:  resp.StatusCode,
		Message: errorMessage(data, fallback),
	}
}

func errorMessage(body []byte, fallback string) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}

	var parsed struct {
		Message interface{} `json:"message"`
		Error   interface{} `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		if msg, ok := parsed.Message.(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
		if msg, ok := parsed.Error.(string); ok && strings.TrimSpace(msg) != "" {
			return msg
		}
		return fallback
	}

	return text
}
