package core

import (
	"context"
	"fmt"
	"sync"
)

// Repository is the interface implemented by package repositories.
type Repository interface {
	// Kind returns the repository type, which is also the PURL type
	// (e.g. "composer").
	Kind() string

	// FetchPackages returns one descriptor per version of the package.
	FetchPackages(ctx context.Context, name string) ([]*Package, error)

	// URLs returns the URL builder for this repository.
	URLs() URLBuilder
}

// Factory creates a repository instance for a given base URL.
type Factory func(baseURL string, client *Client) Repository

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a repository factory.
// defaultURL is used when New is called without a base URL.
func Register(kind string, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = factory
	defaults[kind] = defaultURL
}

// New creates a repository of the given kind.
// If baseURL is empty, the default URL is used.
func New(kind string, baseURL string, client *Client) (Repository, error) {
	mu.RLock()
	factory, ok := factories[kind]
	defaultURL := defaults[kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown repository type: %s", kind)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	if client == nil {
		client = DefaultClient()
	}

	return factory(baseURL, client), nil
}

// SupportedRepositories returns all registered repository types.
func SupportedRepositories() []string {
	mu.RLock()
	defer mu.RUnlock()

	kinds := make([]string, 0, len(factories))
	for kind := range factories {
		kinds = append(kinds, kind)
	}
	return kinds
}

// DefaultURL returns the default URL for a repository type.
func DefaultURL(kind string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[kind]
}
