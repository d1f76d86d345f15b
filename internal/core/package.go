package core

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// DefaultType is reported for packages that do not declare a type.
const DefaultType = "library"

// Package describes a resolved package: its identity, where its source
// and dist artifacts live, and its links to other packages.
//
// A Package is a plain record. Concurrent reads are safe; writes need
// external synchronization.
type Package struct {
	name          string
	version       string
	prettyVersion string
	stability     Stability
	dev           bool

	packageType   string
	targetDir     string
	extra         map[string]any
	binaries      []string
	autoload      AutoloadRules
	devAutoload   AutoloadRules
	includePaths  []string
	notifyURL     string
	defaultBranch bool
	releaseDate   time.Time

	transportOptions   map[string]any
	installationSource InstallationSource

	sourceType      string
	sourceURL       string
	sourceReference string
	sourceMirrors   []Mirror

	distType         string
	distURL          string
	distReference    string
	distSha1Checksum string
	distMirrors      []Mirror

	requires    LinkMap
	devRequires LinkMap
	conflicts   LinkMap
	provides    LinkMap
	replaces    LinkMap
	suggests    map[string]string

	parser   VersionParser
	expander MirrorURLExpander
	log      logr.Logger
}

// PackageOption configures a Package at construction.
type PackageOption func(*Package)

// WithVersionParser sets the parser used to derive stability.
func WithVersionParser(p VersionParser) PackageOption {
	return func(pkg *Package) {
		pkg.parser = p
	}
}

// WithMirrorExpander sets the expander used to build mirror URLs.
func WithMirrorExpander(e MirrorURLExpander) PackageOption {
	return func(pkg *Package) {
		pkg.expander = e
	}
}

// WithLogger sets the logger that receives deprecation notices.
func WithLogger(log logr.Logger) PackageOption {
	return func(pkg *Package) {
		pkg.log = log
	}
}

// NewPackage creates a package with the given name, normalized version
// and version as authored.
func NewPackage(name, version, prettyVersion string, opts ...PackageOption) *Package {
	p := &Package{
		name:     name,
		parser:   StabilityParser{},
		expander: ComposerMirror{},
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.ReplaceVersion(version, prettyVersion)
	return p
}

// ReplaceVersion swaps the version and re-derives stability, e.g. for
// branch aliases.
func (p *Package) ReplaceVersion(version, prettyVersion string) {
	stability := p.parser.ParseStability(version)

	p.version = version
	p.prettyVersion = prettyVersion
	p.stability = stability
	p.dev = stability == StabilityDev
}

func (p *Package) Name() string { return p.name }
func (p *Package) Version() string { return p.version }
func (p *Package) PrettyVersion() string { return p.prettyVersion }
func (p *Package) Stability() Stability { return p.stability }
func (p *Package) IsDev() bool { return p.dev }

// Type returns the package type, "library" when unset.
func (p *Package) Type() string {
	if p.packageType == "" {
		return DefaultType
	}
	return p.packageType
}

func (p *Package) SetType(t string) { p.packageType = t }

// leading "." and ".." segments, optionally behind separators, each
// ending in a run of separators or the end of the path
var traversalPrefix = regexp.MustCompile(`^[\\/]*(?:\.\.?(?:[\\/]+|$))+`)

// TargetDir returns the install target directory with leading traversal
// segments removed, or "" when unset.
func (p *Package) TargetDir() string {
	if p.targetDir == "" {
		return ""
	}
	dir := traversalPrefix.ReplaceAllString(p.targetDir, "")
	return strings.TrimLeft(dir, `/\`)
}

func (p *Package) SetTargetDir(dir string) { p.targetDir = dir }

func (p *Package) Extra() map[string]any { return p.extra }
func (p *Package) SetExtra(e map[string]any) { p.extra = e }

func (p *Package) Binaries() []string { return p.binaries }
func (p *Package) SetBinaries(b []string) { p.binaries = b }

func (p *Package) Autoload() AutoloadRules { return p.autoload }
func (p *Package) SetAutoload(a AutoloadRules) { p.autoload = a }
func (p *Package) DevAutoload() AutoloadRules { return p.devAutoload }
func (p *Package) SetDevAutoload(a AutoloadRules) { p.devAutoload = a }

func (p *Package) IncludePaths() []string { return p.includePaths }
func (p *Package) SetIncludePaths(i []string) { p.includePaths = i }

func (p *Package) NotificationURL() string { return p.notifyURL }
func (p *Package) SetNotificationURL(u string) { p.notifyURL = u }

func (p *Package) IsDefaultBranch() bool { return p.defaultBranch }
func (p *Package) SetDefaultBranch(b bool) { p.defaultBranch = b }
func (p *Package) ReleaseDate() time.Time { return p.releaseDate }
func (p *Package) SetReleaseDate(t time.Time) { p.releaseDate = t }

func (p *Package) TransportOptions() map[string]any { return p.transportOptions }
func (p *Package) SetTransportOptions(o map[string]any) { p.transportOptions = o }

func (p *Package) InstallationSource() InstallationSource { return p.installationSource }
func (p *Package) SetInstallationSource(s InstallationSource) {
	p.installationSource = s
}

// Source channel

func (p *Package) SourceType() string { return p.sourceType }
func (p *Package) SetSourceType(t string) { p.sourceType = t }
func (p *Package) SourceURL() string { return p.sourceURL }
func (p *Package) SetSourceURL(u string) { p.sourceURL = u }
func (p *Package) SourceReference() string { return p.sourceReference }
func (p *Package) SetSourceReference(r string) { p.sourceReference = r }
func (p *Package) SourceMirrors() []Mirror { return p.sourceMirrors }
func (p *Package) SetSourceMirrors(m []Mirror) { p.sourceMirrors = m }

// Dist channel

func (p *Package) DistType() string { return p.distType }
func (p *Package) SetDistType(t string) { p.distType = t }
func (p *Package) DistURL() string { return p.distURL }
func (p *Package) SetDistURL(u string) { p.distURL = u }
func (p *Package) DistReference() string { return p.distReference }
func (p *Package) SetDistReference(r string) { p.distReference = r }
func (p *Package) DistSha1Checksum() string { return p.distSha1Checksum }
func (p *Package) SetDistSha1Checksum(c string) { p.distSha1Checksum = c }
func (p *Package) DistMirrors() []Mirror { return p.distMirrors }
func (p *Package) SetDistMirrors(m []Mirror) { p.distMirrors = m }

// Links

func (p *Package) Requires() LinkMap { return p.requires }
func (p *Package) SetRequires(l LinkMap) { p.requires = l }
func (p *Package) DevRequires() LinkMap { return p.devRequires }
func (p *Package) SetDevRequires(l LinkMap) { p.devRequires = l }
func (p *Package) Conflicts() LinkMap { return p.conflicts }
func (p *Package) SetConflicts(l LinkMap) { p.conflicts = l }
func (p *Package) Provides() LinkMap { return p.provides }
func (p *Package) SetProvides(l LinkMap) { p.provides = l }
func (p *Package) Replaces() LinkMap { return p.replaces }
func (p *Package) SetReplaces(l LinkMap) { p.replaces = l }
func (p *Package) Suggests() map[string]string { return p.suggests }
func (p *Package) SetSuggests(s map[string]string) {
	p.suggests = s
}

// Links returns the collection for kind, or nil for an unknown kind.
func (p *Package) Links(kind LinkKind) LinkMap {
	switch kind {
	case Requires:
		return p.requires
	case DevRequires:
		return p.devRequires
	case Conflicts:
		return p.conflicts
	case Provides:
		return p.provides
	case Replaces:
		return p.replaces
	}
	return nil
}

// SetLinks replaces the collection for kind. Unknown kinds are ignored.
func (p *Package) SetLinks(kind LinkKind, links LinkMap) {
	switch kind {
	case Requires:
		p.requires = links
	case DevRequires:
		p.devRequires = links
	case Conflicts:
		p.conflicts = links
	case Provides:
		p.provides = links
	case Replaces:
		p.replaces = links
	}
}

// UniqueName returns "name-version", unique within a repository.
func (p *Package) UniqueName() string {
	return p.name + "-" + p.version
}

// PrettyString returns "name prettyVersion".
func (p *Package) PrettyString() string {
	return p.name + " " + p.prettyVersion
}

func (p *Package) String() string {
	return p.UniqueName()
}

// DisplayMode selects which reference FullPrettyVersion appends.
type DisplayMode int

const (
	SourceRefIfDev DisplayMode = iota
	SourceRef
	DistRef
)

// FullPrettyVersion returns the pretty version followed by a reference,
// e.g. "dev-main 1a2b3c4". In SourceRefIfDev mode the reference is only
// added for dev versions checked out from git or hg. 40 character
// references are cut to 7 when truncate is set, except for svn.
func (p *Package) FullPrettyVersion(truncate bool, mode DisplayMode) string {
	if mode == SourceRefIfDev && (!p.dev || (p.sourceType != "git" && p.sourceType != "hg")) {
		return p.prettyVersion
	}

	reference := p.sourceReference
	if mode == DistRef {
		reference = p.distReference
	}
	if reference == "" {
		return p.prettyVersion
	}

	if truncate && len(reference) == 40 && p.sourceType != "svn" {
		return p.prettyVersion + " " + reference[:7]
	}
	return p.prettyVersion + " " + reference
}
