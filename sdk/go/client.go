// Package relay is a typed client for the relay API: public inquiry
// submission plus the admin surface (mail accounts, landing pages, origins,
// dispatch records).
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer is the minimal HTTP client surface the SDK needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RelayClient talks to one relay deployment.
type RelayClient struct {
	baseURL    string
	adminToken string
	httpClient HTTPDoer
}

// RelayOption customizes RelayClient construction.
type RelayOption func(*RelayClient) error

// WithHTTPDoer overrides the underlying HTTP client used by the SDK.
func WithHTTPDoer(h HTTPDoer) RelayOption {
	return func(c *RelayClient) error {
		c.httpClient = h
		return nil
	}
}

// WithAdminToken sets the bearer token attached to admin requests.
func WithAdminToken(token string) RelayOption {
	return func(c *RelayClient) error {
		c.adminToken = token
		return nil
	}
}

// NewRelayClient constructs a client for the given base URL.
func NewRelayClient(baseURL string, opts ...RelayOption) (*RelayClient, error) {
	c := &RelayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay: %d %s", e.StatusCode, e.Message)
}

func (c *RelayClient) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// errorMessage pulls the server's error text out of the common payload
// shapes: {"error": ...} and {"success": false, "message": ...}.
func errorMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
