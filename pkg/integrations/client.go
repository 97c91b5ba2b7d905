package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/composer-lsp/pkg/errors"
	"github.com/matzehuels/composer-lsp/pkg/httputil"
	"github.com/matzehuels/composer-lsp/pkg/observability"
)

// Client is the HTTP plumbing shared by registry clients: default headers,
// status mapping, retries and HTTP hooks. It keeps no response cache.
// A Client is safe for concurrent use once configured.
type Client struct {
	http    *http.Client
	headers map[string]string
	retry   httputil.Policy
}

// NewClient returns a Client sending headers with every request.
// headers may be nil.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		headers: headers,
		retry:   httputil.DefaultPolicy,
	}
}

// SetHTTPClient replaces the underlying HTTP client. nil is ignored.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

func (c *Client) SetRetryPolicy(p httputil.Policy) { c.retry = p }

// Fetch runs fetch under the client's retry policy.
func (c *Client) Fetch(ctx context.Context, fetch func() error) error {
	return c.retry.Do(ctx, fetch)
}

// Get requests url and decodes the JSON body into v.
//
// A 404 yields [ErrNotFound]. Transport failures, 429 and 5xx responses
// yield [ErrNetwork] wrapped in an [httputil.RetryableError]; any other
// status yields a plain [ErrNetwork].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	method, host, path := req.Method, req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Header.Get("Retry-After")); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func checkStatus(code int, retryAfter string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		secs, _ := strconv.Atoi(retryAfter)
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, &errors.RateLimitedError{RetryAfter: secs})}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
