// Package composer describes resolved Composer packages and derives the
// locations their source and dist artifacts can be retrieved from.
//
// A Package holds a package's identity, its source (VCS) and dist
// (archive) channels with their mirrors, and its links to other packages.
// SourceURLs and DistURLs expand mirror templates into an ordered,
// deduplicated list of candidates; SetSourceDistReferences keeps the dist
// archive pinned to the same commit when a branch resolves to a SHA.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/composer"
//		_ "github.com/git-pkgs/composer/all"
//	)
//
//	repo, err := composer.New("composer", "", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pkgs, err := repo.FetchPackages(context.Background(), "monolog/monolog")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, pkg := range pkgs {
//		fmt.Println(pkg.PrettyString(), pkg.DistURLs())
//	}
package composer

import (
	"context"

	"github.com/git-pkgs/purl"
	"github.com/go-logr/logr"

	"github.com/git-pkgs/composer/client"
	"github.com/git-pkgs/composer/internal/core"
)

// Re-export types from internal/core
type (
	// Package describes a resolved package.
	Package = core.Package

	// PackageOption configures a Package at construction.
	PackageOption = core.PackageOption

	// Repository is the interface implemented by package repositories.
	Repository = core.Repository

	// Mirror is an alternate location for a source or dist artifact.
	Mirror = core.Mirror

	// Link is a dependency relationship between two packages.
	Link = core.Link

	// LinkMap maps lowercased target names to links.
	LinkMap = core.LinkMap

	// LinkKind names the relationship a Link expresses.
	LinkKind = core.LinkKind

	// Stability classifies a version string.
	Stability = core.Stability

	// InstallationSource records which channel a package was installed from.
	InstallationSource = core.InstallationSource

	// AutoloadRules holds autoload configuration as decoded from a manifest.
	AutoloadRules = core.AutoloadRules

	// DisplayMode selects which reference FullPrettyVersion appends.
	DisplayMode = core.DisplayMode

	// VersionParser classifies version strings.
	VersionParser = core.VersionParser

	// MirrorURLExpander turns mirror URL templates into concrete URLs.
	MirrorURLExpander = core.MirrorURLExpander

	// StabilityParser is the default VersionParser.
	StabilityParser = core.StabilityParser

	// ComposerMirror is the default MirrorURLExpander.
	ComposerMirror = core.ComposerMirror

	// NotFoundError reports a missing package or version.
	NotFoundError = core.NotFoundError
)

// Re-export types from client
type (
	// Client is an HTTP client with retry logic for repository APIs.
	Client = client.Client

	// URLBuilder constructs URLs for a repository.
	URLBuilder = client.URLBuilder

	// RateLimiter controls request pacing.
	RateLimiter = client.RateLimiter

	// Option configures a Client.
	Option = client.Option
)

// Re-export constants
const (
	StabilityStable = core.StabilityStable
	StabilityRC     = core.StabilityRC
	StabilityBeta   = core.StabilityBeta
	StabilityAlpha  = core.StabilityAlpha
	StabilityDev    = core.StabilityDev

	Requires    = core.Requires
	DevRequires = core.DevRequires
	Conflicts   = core.Conflicts
	Provides    = core.Provides
	Replaces    = core.Replaces

	InstalledFromSource = core.InstalledFromSource
	InstalledFromDist   = core.InstalledFromDist

	SourceRefIfDev = core.SourceRefIfDev
	SourceRef      = core.SourceRef
	DistRef        = core.DistRef

	DefaultType = core.DefaultType
)

// Re-export errors
var (
	ErrNotFound = client.ErrNotFound
)

// Error types
type (
	HTTPError      = client.HTTPError
	RateLimitError = client.RateLimitError
)

// NewPackage creates a package descriptor. Stability is derived from
// version with the default parser unless WithVersionParser is given.
func NewPackage(name, version, prettyVersion string, opts ...PackageOption) *Package {
	return core.NewPackage(name, version, prettyVersion, opts...)
}

// WithVersionParser sets the parser used to derive stability.
var WithVersionParser = core.WithVersionParser

// WithMirrorExpander sets the expander used to build mirror URLs.
var WithMirrorExpander = core.WithMirrorExpander

// WithLogger sets the logger that receives a package's deprecation notices.
var WithLogger = core.WithLogger

// NewLink returns a link with lowercased source and target names.
func NewLink(source, target, constraint string, kind LinkKind) *Link {
	return core.NewLink(source, target, constraint, kind)
}

// NormalizeLinks converts a legacy positional list of links to a LinkMap,
// logging a deprecation notice that names caller.
func NormalizeLinks(log logr.Logger, caller string, links []*Link) LinkMap {
	return core.NormalizeLinks(log, caller, links)
}

// ParseStability classifies version with Composer's rules.
func ParseStability(version string) Stability {
	return core.ParseStability(version)
}

// New creates a new repository of the given type.
// If baseURL is empty, the default URL is used.
// If client is nil, DefaultClient() is used.
//
// Supported types: "composer"
func New(kind string, baseURL string, c *Client) (Repository, error) {
	return core.New(kind, baseURL, c)
}

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// SupportedRepositories returns all registered repository types.
// Note: repositories must be imported to be registered.
func SupportedRepositories() []string {
	return core.SupportedRepositories()
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "metadata" and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}

// DefaultURL returns the default URL for a repository type.
func DefaultURL(kind string) string {
	return core.DefaultURL(kind)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:composer/monolog/monolog) and version
// PURLs (pkg:composer/monolog/monolog@3.5.0).
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// NewFromPURL creates a repository from a PURL and returns the parsed components.
// Returns the repository, full package name, and version (empty if not in PURL).
func NewFromPURL(purl string, c *Client) (Repository, string, string, error) {
	return core.NewFromPURL(purl, c)
}

// FetchPackageFromPURL fetches the descriptor a PURL points at. Without a
// version the newest stable release is returned.
func FetchPackageFromPURL(ctx context.Context, purl string, c *Client) (*Package, error) {
	return core.FetchPackageFromPURL(ctx, purl, c)
}

// FetchPackagesFromPURL fetches every version of the package a PURL names.
func FetchPackagesFromPURL(ctx context.Context, purl string, c *Client) ([]*Package, error) {
	return core.FetchPackagesFromPURL(ctx, purl, c)
}

// FetchLatest returns the newest version of name at least as stable as
// minStability, or nil if there is none.
func FetchLatest(ctx context.Context, repo Repository, name string, minStability Stability) (*Package, error) {
	return core.FetchLatest(ctx, repo, name, minStability)
}

// Latest picks the newest package at least as stable as minStability,
// preferring release dates when any package carries one.
func Latest(pkgs []*Package, minStability Stability) *Package {
	return core.Latest(pkgs, minStability)
}

// BulkFetchPackages fetches several packages in parallel.
// Individual fetch errors are silently ignored - those names are omitted from results.
func BulkFetchPackages(ctx context.Context, repo Repository, names []string) map[string][]*Package {
	return core.BulkFetchPackages(ctx, repo, names)
}

// BulkFetchPackagesWithConcurrency fetches packages with a custom concurrency limit.
func BulkFetchPackagesWithConcurrency(ctx context.Context, repo Repository, names []string, concurrency int) map[string][]*Package {
	return core.BulkFetchPackagesWithConcurrency(ctx, repo, names, concurrency)
}
