package core

import (
	"regexp"
	"strings"
)

// VersionParser classifies version strings.
type VersionParser interface {
	ParseStability(version string) Stability
}

// StabilityParser implements VersionParser with Composer's version rules.
type StabilityParser struct{}

var (
	buildMetadata = regexp.MustCompile(`#.+$`)
	// modifier, its numeric suffix, then an optional trailing dev marker
	stabilityModifier = regexp.MustCompile(`[._-]?(?:(stable|beta|b|rc|alpha|a|patch|pl|p)((?:[.-]?\d+)*)?)?([.-]?dev)?(?:\+.*)?$`)
)

// ParseStability returns the stability of version.
func (StabilityParser) ParseStability(version string) Stability {
	version = buildMetadata.ReplaceAllString(version, "")

	if strings.HasPrefix(version, "dev-") || strings.HasSuffix(version, "-dev") {
		return StabilityDev
	}

	m := stabilityModifier.FindStringSubmatch(strings.ToLower(version))
	if m == nil {
		return StabilityStable
	}
	if m[3] != "" {
		return StabilityDev
	}

	switch m[1] {
	case "beta", "b":
		return StabilityBeta
	case "alpha", "a":
		return StabilityAlpha
	case "rc":
		return StabilityRC
	}
	return StabilityStable
}

// ParseStability classifies version with the default parser.
func ParseStability(version string) Stability {
	return StabilityParser{}.ParseStability(version)
}
