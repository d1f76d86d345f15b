package core

import (
	"sort"

	"github.com/git-pkgs/vers"
)

// CompareVersions orders two normalized versions, returning -1, 0 or 1.
// Numeric segments compare as numbers, so 10.0.0.0 sorts above 9.0.0.0.
func CompareVersions(a, b string) int {
	return vers.Compare(a, b)
}

// newerFirst orders packages by release date, newest first, falling back
// to the version when the dates are equal or missing.
func newerFirst(a, b *Package) bool {
	da, db := a.ReleaseDate(), b.ReleaseDate()
	if !da.Equal(db) {
		return da.After(db)
	}
	return CompareVersions(a.Version(), b.Version()) > 0
}

// SortNewestFirst sorts pkgs in place by release date, then version.
func SortNewestFirst(pkgs []*Package) {
	sort.SliceStable(pkgs, func(i, j int) bool {
		return newerFirst(pkgs[i], pkgs[j])
	})
}
