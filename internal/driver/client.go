package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jpalmerr/queueboard/internal/store"
	"github.com/pkg/errors"
)

const maxResponseBodySize = 1 << 20 // 1MB

const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
	defaultRequestTimeout      = 5 * time.Second
)

// Client calls the QueueBoard HTTP API.
//
// Timeouts are applied per request via context rather than on the
// underlying http.Client.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a [Client] for the server at baseURL
// (e.g. "http://localhost:8080"). A non-positive timeout uses 5s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Initialize starts a new run with n servers.
func (c *Client) Initialize(ctx context.Context, n int) error {
	_, err := c.do(ctx, http.MethodPost, "/api/initialize", map[string]int{"numServers": n})
	return err
}

// Enter admits one customer.
func (c *Client) Enter(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/enter", nil)
	return err
}

// Leave completes the customer at server index i.
func (c *Client) Leave(ctx context.Context, i int) error {
	_, err := c.do(ctx, http.MethodPost, "/api/leave", map[string]int{"serverIndex": i})
	return err
}

// Stop ends the run.
func (c *Client) Stop(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/stop", nil)
	return err
}

// Status fetches the live status.
func (c *Client) Status(ctx context.Context) (store.Status, error) {
	var st store.Status
	body, err := c.do(ctx, http.MethodGet, "/api/status", nil)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, errors.Wrap(err, "decode status")
	}
	return st, nil
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// do sends a request with an optional JSON payload and returns the body.
// Non-2xx responses become errors carrying the server's error text.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, errors.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return nil, errors.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return data, nil
}
