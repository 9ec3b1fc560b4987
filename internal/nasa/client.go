package nasa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const userAgent = "SpaceNow-AstroFeed/1.0 (+https://nasa.gov)"

// Fetch defaults, overridable via configuration.
const (
	DefaultTimeout     = 12 * time.Second
	DefaultRetries     = 2
	DefaultBackoffBase = 800 * time.Millisecond
)

// HTTPError captures a non-success upstream status and response body.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, string(e.Body))
}

// StatusOf extracts the upstream HTTP status from err, or 0 when the
// error carries none (network failure, timeout).
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// RequestOptions shapes one outgoing request. Params are flattened
// into the query string. A zero Timeout uses the client default.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Params  map[string]string
	Body    []byte
	Timeout time.Duration
}

// ClientConfig tunes the retry behavior.
type ClientConfig struct {
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
}

// Client issues HTTP requests with per-attempt timeouts and a
// retry-on-429/5xx policy that honors Retry-After. It performs no
// caching; that belongs to the route layer.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	backoff    time.Duration
	sleep      func(d time.Duration)
	logger     *zap.Logger
}

// NewClient builds a Client. A nil cfg uses the defaults.
func NewClient(cfg *ClientConfig, logger *zap.Logger) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		retries:    DefaultRetries,
		backoff:    DefaultBackoffBase,
		sleep:      time.Sleep,
		logger:     logger,
	}
	if cfg != nil {
		if cfg.Timeout > 0 {
			c.timeout = cfg.Timeout
		}
		if cfg.Retries >= 0 {
			c.retries = cfg.Retries
		}
		if cfg.BackoffBase > 0 {
			c.backoff = cfg.BackoffBase
		}
	}
	return c
}

// SetSleepForTest replaces the inter-attempt sleep, letting tests
// observe backoff waits without real delays.
func (c *Client) SetSleepForTest(sleep func(d time.Duration)) {
	c.sleep = sleep
}

// attemptResult is the outcome of one request attempt.
type attemptResult struct {
	body       []byte
	status     int
	retryAfter string
}

// Fetch performs up to retries+1 attempts against rawURL and returns
// the response body. A 2xx response returns immediately. 429 and 5xx
// responses are retried, waiting the Retry-After header (seconds) when
// present and non-zero, else backoff*(attempt+1). Other failure
// statuses raise an *HTTPError at once. Network errors and per-attempt
// timeouts are retried with the plain backoff; after the final attempt
// the last error is returned.
func (c *Client) Fetch(ctx context.Context, rawURL string, opts RequestOptions) ([]byte, error) {
	fullURL, err := buildURL(rawURL, opts.Params)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		res, err := c.attempt(ctx, method, fullURL, opts, timeout)
		if err != nil {
			lastErr = err
			if attempt < c.retries {
				c.sleep(c.backoff * time.Duration(attempt+1))
				continue
			}
			return nil, lastErr
		}

		if res.status >= 200 && res.status < 300 {
			return res.body, nil
		}

		lastErr = &HTTPError{StatusCode: res.status, Body: res.body}

		if (res.status == http.StatusTooManyRequests || res.status >= 500) && attempt < c.retries {
			wait := retryAfterDelay(res.retryAfter)
			if wait == 0 {
				wait = c.backoff * time.Duration(attempt+1)
			}
			c.logger.Warn("retrying upstream request",
				zap.String("url", rawURL),
				zap.Int("status", res.status),
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
			)
			c.sleep(wait)
			continue
		}

		return nil, lastErr
	}
	return nil, lastErr
}

// attempt issues a single request bounded by timeout.
func (c *Client) attempt(ctx context.Context, method, fullURL string, opts RequestOptions, timeout time.Duration) (*attemptResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if len(opts.Body) > 0 {
		reqBody = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if attemptCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("timeout after %s for %s", timeout, fullURL)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &attemptResult{
		body:       data,
		status:     resp.StatusCode,
		retryAfter: resp.Header.Get("Retry-After"),
	}, nil
}

func buildURL(rawURL string, params map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// retryAfterDelay converts a Retry-After header in seconds to a
// duration, or 0 when absent or unusable.
func retryAfterDelay(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
