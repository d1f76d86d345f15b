package core

import (
	"fmt"

	"github.com/git-pkgs/composer/client"
)

// ErrNotFound is returned when a package or version is not found.
var ErrNotFound = client.ErrNotFound

// HTTPError represents an HTTP error response.
type HTTPError = client.HTTPError

// NotFoundError wraps ErrNotFound with the repository and package involved.
type NotFoundError struct {
	Repository string
	Name       string
	Version    string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("%s: package %s version %s not found", e.Repository, e.Name, e.Version)
	}
	return fmt.Sprintf("%s: package %s not found", e.Repository, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
