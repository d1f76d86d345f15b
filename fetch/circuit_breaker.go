package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// tripThreshold is the number of consecutive failures that opens a host's breaker.
const tripThreshold = 5

// CircuitBreakerFetcher wraps an ArchiveFetcher with one circuit breaker
// per host, so a dead mirror is skipped quickly while other candidates
// are still tried.
type CircuitBreakerFetcher struct {
	fetcher  ArchiveFetcher
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewCircuitBreakerFetcher creates a circuit breaker wrapper for f.
func NewCircuitBreakerFetcher(f ArchiveFetcher) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:  f,
		breakers: make(map[string]*circuit.Breaker),
	}
}

func (cbf *CircuitBreakerFetcher) breaker(host string) *circuit.Breaker {
	cbf.mu.RLock()
	b, ok := cbf.breakers[host]
	cbf.mu.RUnlock()
	if ok {
		return b
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	if b, ok := cbf.breakers[host]; ok {
		return b
	}

	// an open breaker is retried after 30s, backing off to 5m
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(tripThreshold),
	})
	cbf.breakers[host] = b
	return b
}

// Fetch calls the wrapped fetcher unless the breaker for the URL's host is open.
func (cbf *CircuitBreakerFetcher) Fetch(ctx context.Context, fetchURL string) (*Archive, error) {
	host := hostOf(fetchURL)
	b := cbf.breaker(host)

	if !b.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var archive *Archive
	err := b.Call(func() error {
		var err error
		archive, err = cbf.fetcher.Fetch(ctx, fetchURL)
		return err
	}, 0)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// Head calls the wrapped fetcher unless the breaker for the URL's host is open.
func (cbf *CircuitBreakerFetcher) Head(ctx context.Context, headURL string) (size int64, contentType string, err error) {
	host := hostOf(headURL)
	b := cbf.breaker(host)

	if !b.Ready() {
		return 0, "", fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	err = b.Call(func() error {
		var headErr error
		size, contentType, headErr = cbf.fetcher.Head(ctx, headURL)
		return headErr
	}, 0)
	return size, contentType, err
}

// States reports "open" or "closed" for every host seen so far.
func (cbf *CircuitBreakerFetcher) States() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string, len(cbf.breakers))
	for host, b := range cbf.breakers {
		if b.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// hostOf groups URLs by host; unparseable URLs are grouped by their first
// 50 bytes.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
