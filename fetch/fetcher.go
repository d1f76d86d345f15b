// Package fetch downloads package dist archives, walking a package's
// candidate URLs with retries and per-host circuit breaking.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/go-logr/logr"
	"github.com/rs/dnscache"
)

var (
	ErrNotFound     = errors.New("archive not found")
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream unavailable")
)

// maxRetryAfter caps how long a Retry-After header can delay a retry.
const maxRetryAfter = time.Minute

// RateLimitedError is a 429 from an archive host. RetryAfter is zero when
// the host did not say how long to wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%v, retry after %s", ErrRateLimited, e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// retryAfter reads a Retry-After value given in seconds or as an HTTP date.
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}

// Archive is an open response body for a dist archive.
type Archive struct {
	Body        io.ReadCloser
	Size        int64 // -1 if unknown
	ContentType string
	ETag        string
}

// ArchiveFetcher is implemented by Fetcher and CircuitBreakerFetcher.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, url string) (*Archive, error)
	Head(ctx context.Context, url string) (size int64, contentType string, err error)
}

// Fetcher downloads archives over HTTP.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	authFn     func(url string) (headerName, headerValue string)
	log        logr.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets the maximum retry attempts per URL.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithAuthFunc sets a function that returns an auth header for a URL,
// e.g. a GitHub token for api.github.com zipballs. Empty strings skip auth.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(f *Fetcher) {
		f.authFn = fn
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(log logr.Logger) Option {
	return func(f *Fetcher) {
		f.log = log
	}
}

// NewFetcher creates a new Fetcher. Host lookups go through a DNS cache
// refreshed every five minutes.
func NewFetcher(opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
						lastErr = err
					}
					return nil, fmt.Errorf("dialing %s: %w", host, lastErr)
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "composer-go",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch opens the archive at url, retrying 429 and 5xx responses with
// jittered exponential backoff. A Retry-After header on a 429 stretches the
// wait, up to maxRetryAfter. The caller must close Archive.Body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Archive, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.baseDelay
	policy.RandomizationFactor = 0.1
	policy.MaxElapsedTime = 0
	policy.Reset()

	for attempt := 0; ; attempt++ {
		archive, err := f.doFetch(ctx, url)
		if err == nil {
			return archive, nil
		}
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrUpstreamDown) {
			return nil, err
		}
		if attempt >= f.maxRetries {
			return nil, err
		}

		delay := policy.NextBackOff()
		var rl *RateLimitedError
		if errors.As(err, &rl) {
			delay = max(delay, min(rl.RetryAfter, maxRetryAfter))
		}

		f.log.V(1).Info("retrying archive download", "url", url, "attempt", attempt+1, "delay", delay, "error", err.Error())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (f *Fetcher) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}
	return req, nil
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (*Archive, error) {
	req, err := f.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching archive: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &Archive{
			Body:        resp.Body,
			Size:        contentLength(resp),
			ContentType: resp.Header.Get("Content-Type"),
			ETag:        resp.Header.Get("ETag"),
		}, nil

	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, ErrNotFound

	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, &RateLimitedError{RetryAfter: retryAfter(resp.Header.Get("Retry-After"), time.Now())}

	case resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, ErrUpstreamDown

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// Head reports the size and content type of the archive at url without
// downloading it.
func (f *Fetcher) Head(ctx context.Context, url string) (size int64, contentType string, err error) {
	req, err := f.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return 0, "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("head request: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return contentLength(resp), resp.Header.Get("Content-Type"), nil
}

func contentLength(resp *http.Response) int64 {
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			return n
		}
	}
	return -1
}
