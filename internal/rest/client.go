package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"feeconsole-service/internal/fault"
	"github.com/pkg/errors"
)

const defaultTimeoutMs = 10_000

// Envelope is the uniform response shape every backend endpoint returns.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// errorBody covers the shapes backends use for failure detail.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (b errorBody) detail() string {
	if b.Detail != "" {
		return b.Detail
	}
	return b.Message
}

// Client is the injected transport for one backend. Construct once at
// startup and pass by parameter so tests can point it at a mock.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, token string, timeoutMs int, logger *slog.Logger) *Client {
	if timeoutMs <= 0 {
		timeoutMs = defaultTimeoutMs
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		logger:  logger,
	}
}

// Do issues one request and decodes the envelope's data into out (when out is
// non-nil). Failures are normalized into the shared taxonomy: transport
// failure -> NetworkError, non-2xx -> HTTPError with backend detail, 2xx with
// success=false -> BusinessError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshalling request body")
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.DebugContext(ctx, "Sending request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return &fault.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		c.logger.WarnContext(ctx, "Received error response", "status", resp.StatusCode, "path", path)
		return &fault.HTTPError{StatusCode: resp.StatusCode, Detail: eb.detail()}
	}

	var envelope Envelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return errors.Wrap(err, "decoding response envelope")
	}

	if !envelope.Success {
		return &fault.BusinessError{Message: envelope.Message}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrap(err, "decoding response data")
		}
	}

	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}
