// Package client provides the HTTP client used to read repository metadata.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
)

const defaultUserAgent = "composer-go"

// RateLimiter controls request pacing. *rate.Limiter satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Client is an HTTP client with retry logic for repository APIs.
type Client struct {
	HTTPClient  *http.Client
	UserAgent   string
	MaxRetries  int
	BaseDelay   time.Duration
	RateLimiter RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.HTTPClient.Timeout = d
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.MaxRetries = n
	}
}

// WithBaseDelay sets the first retry interval; later ones grow exponentially.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.BaseDelay = d
	}
}

// WithRateLimiter paces every request through rl.
func WithRateLimiter(rl RateLimiter) Option {
	return func(c *Client) {
		c.RateLimiter = rl
	}
}

// DefaultClient returns a client with a 30s timeout and 5 retries.
func DefaultClient() *Client {
	return NewClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		UserAgent:  defaultUserAgent,
		MaxRetries: 5,
		BaseDelay:  50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithUserAgent returns a copy of the client that sends ua.
func (c *Client) WithUserAgent(ua string) *Client {
	clone := *c
	clone.UserAgent = ua
	return &clone
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetBody fetches url and returns the response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.do(ctx, http.MethodGet, url, func(resp *http.Response) error {
		var err error
		body, err = io.ReadAll(resp.Body)
		return err
	})
	return body, err
}

// Head issues a HEAD request and returns the status code of the final attempt.
func (c *Client) Head(ctx context.Context, url string) (int, error) {
	var status int
	err := c.do(ctx, http.MethodHead, url, func(resp *http.Response) error {
		status = resp.StatusCode
		return nil
	})
	return status, err
}

// do runs the request, retrying 429 and 5xx responses and transport
// errors with exponential backoff. Other failures stop immediately.
func (c *Client) do(ctx context.Context, method, url string, handle func(*http.Response) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.BaseDelay
	policy.MaxElapsedTime = 0
	policy.Reset()

	var final error
	op := func() error {
		if c.RateLimiter != nil {
			if err := c.RateLimiter.Wait(ctx); err != nil {
				final = err
				return nil
			}
		}

		retry, err := c.attempt(ctx, method, url, handle)
		if err != nil && retry {
			return err
		}
		final = err
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(c.MaxRetries, 0))), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return final
}

func (c *Client) attempt(ctx context.Context, method, url string, handle func(*http.Response) error) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if method == http.MethodGet {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, handle(resp)
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return true, &RateLimitError{RetryAfter: retryAfter}
	case resp.StatusCode >= 500:
		return true, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}
}
