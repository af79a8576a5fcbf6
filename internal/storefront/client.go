// Package storefront is the REST client for the storefront backend. It covers
// the session, catalog, cart, order, and payment endpoints the checkout flow
// consumes. Credentials are cookie-based: the client carries a cookie jar and
// every request sends the session cookie implicitly.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront: backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("storefront: backend returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to one storefront backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the backend at baseURL with a fresh cookie jar.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("storefront: create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
	}, nil
}

// NewWithHTTPClient builds a client around an existing *http.Client.
// Used by tests to point at an httptest server with its own jar.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("storefront: marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("storefront: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("storefront: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return readAPIError(res)
	}

	if out == nil {
		return nil
	}
	return decodeBody(res, out)
}

// readAPIError drains a bounded amount of the error body into an APIError.
func readAPIError(res *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return &APIError{StatusCode: res.StatusCode, Message: strings.TrimSpace(string(msg))}
}

func decodeBody(res *http.Response, out any) error {
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("storefront: decode %s %s response: %w",
			res.Request.Method, res.Request.URL.Path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}
