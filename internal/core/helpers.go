package core

import (
	"context"
	"sync"
)

const defaultConcurrency = 15

// FetchLatest returns the newest version of name whose stability is at
// least minStability. Returns nil if no version qualifies.
func FetchLatest(ctx context.Context, repo Repository, name string, minStability Stability) (*Package, error) {
	pkgs, err := repo.FetchPackages(ctx, name)
	if err != nil {
		return nil, err
	}
	return Latest(pkgs, minStability), nil
}

// Latest picks the newest package at least as stable as minStability,
// ordering by release date and then by version.
func Latest(pkgs []*Package, minStability Stability) *Package {
	var valid []*Package
	for _, p := range pkgs {
		if p.Stability().AtLeast(minStability) {
			valid = append(valid, p)
		}
	}

	if len(valid) == 0 {
		return nil
	}

	SortNewestFirst(valid)
	return valid[0]
}

// BulkFetchPackages fetches several packages in parallel.
// Individual fetch errors are silently ignored - those names are omitted from results.
func BulkFetchPackages(ctx context.Context, repo Repository, names []string) map[string][]*Package {
	return BulkFetchPackagesWithConcurrency(ctx, repo, names, defaultConcurrency)
}

// BulkFetchPackagesWithConcurrency fetches packages with a custom concurrency limit.
func BulkFetchPackagesWithConcurrency(ctx context.Context, repo Repository, names []string, concurrency int) map[string][]*Package {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(map[string][]*Package)
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			pkgs, err := repo.FetchPackages(ctx, n)
			if err == nil && len(pkgs) > 0 {
				mu.Lock()
				results[n] = pkgs
				mu.Unlock()
			}
		}(name)
	}

	wg.Wait()
	return results
}
