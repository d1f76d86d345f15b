// Package core provides the package descriptor and the repository system.
package core

import "strings"

// Stability classifies a version string, most stable first.
type Stability string

const (
	StabilityStable Stability = "stable"
	StabilityRC     Stability = "RC"
	StabilityBeta   Stability = "beta"
	StabilityAlpha  Stability = "alpha"
	StabilityDev    Stability = "dev"
)

var stabilityPriority = map[Stability]int{
	StabilityStable: 0,
	StabilityRC:     5,
	StabilityBeta:   10,
	StabilityAlpha:  15,
	StabilityDev:    20,
}

// Priority returns the numeric rank of s; lower is more stable.
// Unknown values rank as dev.
func (s Stability) Priority() int {
	if p, ok := stabilityPriority[s]; ok {
		return p
	}
	return stabilityPriority[StabilityDev]
}

// AtLeast reports whether s is at least as stable as min.
func (s Stability) AtLeast(min Stability) bool {
	return s.Priority() <= min.Priority()
}

// InstallationSource records which channel a package was installed from.
type InstallationSource string

const (
	InstalledFromNone   InstallationSource = ""
	InstalledFromSource InstallationSource = "source"
	InstalledFromDist   InstallationSource = "dist"
)

// Mirror is an alternate location for a source or dist artifact.
type Mirror struct {
	URL       string
	Preferred bool
}

// LinkKind names the relationship a Link expresses.
type LinkKind string

const (
	Requires    LinkKind = "requires"
	DevRequires LinkKind = "devRequires"
	Conflicts   LinkKind = "conflicts"
	Provides    LinkKind = "provides"
	Replaces    LinkKind = "replaces"
)

// LinkKinds lists every link collection a Package carries.
var LinkKinds = []LinkKind{Requires, DevRequires, Conflicts, Provides, Replaces}

// Link is a dependency relationship from one package to another.
// Links are shared between descriptors and must not be mutated.
type Link struct {
	Source      string
	Target      string
	Constraint  string // as authored, e.g. "^1.2 || ^2.0"
	Description LinkKind
}

// NewLink returns a link with lowercased source and target names.
func NewLink(source, target, constraint string, kind LinkKind) *Link {
	return &Link{
		Source:      strings.ToLower(source),
		Target:      strings.ToLower(target),
		Constraint:  constraint,
		Description: kind,
	}
}

func (l *Link) String() string {
	return l.Source + " " + string(l.Description) + " " + l.Target + " (" + l.Constraint + ")"
}

// LinkMap maps a lowercased target package name to its link.
type LinkMap map[string]*Link

// Names returns the target names in the map.
func (m LinkMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// AutoloadRules holds autoload configuration keyed by rule type
// ("psr-4", "psr-0", "classmap", "files", "exclude-from-classmap").
// Values are kept as decoded from the manifest.
type AutoloadRules map[string]any
