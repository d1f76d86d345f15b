package core

import (
	"context"
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
)

// PURL wraps packageurl.PackageURL with repository-specific helpers.
type PURL struct {
	packageurl.PackageURL
}

// FullName returns the package name as the repository expects it,
// "vendor/name" for composer packages.
func (p PURL) FullName() string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + "/" + p.Name
}

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:composer/monolog/monolog) and version
// PURLs (pkg:composer/monolog/monolog@3.5.0).
func ParsePURL(purl string) (*PURL, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, err
	}
	return &PURL{p}, nil
}

// PURL returns the Package URL of p. The source and dist locations are
// carried in the vcs_url and download_url qualifiers.
func (p *Package) PURL() string {
	namespace, name := "", strings.ToLower(p.name)
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		namespace, name = name[:idx], name[idx+1:]
	}

	var qualifiers packageurl.Qualifiers
	if p.distURL != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "download_url", Value: p.distURL})
	}
	if p.sourceURL != "" {
		vcs := p.sourceURL
		if p.sourceType != "" && !strings.HasPrefix(vcs, p.sourceType+"+") {
			vcs = p.sourceType + "+" + vcs
		}
		if p.sourceReference != "" {
			vcs += "@" + p.sourceReference
		}
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "vcs_url", Value: vcs})
	}

	return packageurl.NewPackageURL("composer", namespace, name, p.prettyVersion, qualifiers, "").ToString()
}

// NewFromPURL creates a repository from a PURL and returns the parsed components.
// Returns the repository, full package name, and version (empty if not in PURL).
// A repository_url qualifier overrides the default base URL for private repositories.
func NewFromPURL(purl string, client *Client) (Repository, string, string, error) {
	p, err := ParsePURL(purl)
	if err != nil {
		return nil, "", "", err
	}

	baseURL := p.Qualifiers.Map()["repository_url"]

	repo, err := New(p.Type, baseURL, client)
	if err != nil {
		return nil, "", "", err
	}

	return repo, p.FullName(), p.Version, nil
}

// FetchPackageFromPURL fetches the descriptor a PURL points at. Without a
// version the newest stable release is returned.
func FetchPackageFromPURL(ctx context.Context, purl string, client *Client) (*Package, error) {
	repo, name, version, err := NewFromPURL(purl, client)
	if err != nil {
		return nil, err
	}

	pkgs, err := repo.FetchPackages(ctx, name)
	if err != nil {
		return nil, err
	}

	if version == "" {
		if latest := Latest(pkgs, StabilityStable); latest != nil {
			return latest, nil
		}
		return nil, &NotFoundError{Repository: repo.Kind(), Name: name}
	}

	for _, pkg := range pkgs {
		if pkg.PrettyVersion() == version || pkg.Version() == version {
			return pkg, nil
		}
	}

	return nil, &NotFoundError{Repository: repo.Kind(), Name: name, Version: version}
}

// FetchPackagesFromPURL fetches every version of the package a PURL names.
func FetchPackagesFromPURL(ctx context.Context, purl string, client *Client) ([]*Package, error) {
	repo, name, _, err := NewFromPURL(purl, client)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", purl, err)
	}
	return repo.FetchPackages(ctx, name)
}
