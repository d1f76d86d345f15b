package core

import (
	"strings"

	"github.com/go-logr/logr"
)

// NormalizeLinks adapts the legacy positional link list to a LinkMap keyed
// by lowercased target name. Later links win over earlier ones for the
// same target.
// A deprecation notice naming caller is written to log.
func NormalizeLinks(log logr.Logger, caller string, links []*Link) LinkMap {
	log.Info("passing a list of links is deprecated, pass a map keyed by target name", "caller", caller)

	m := make(LinkMap, len(links))
	for _, link := range links {
		m[strings.ToLower(link.Target)] = link
	}
	return m
}

// SetLinksList stores a legacy positional list of links for kind. The list
// is normalized with NormalizeLinks, logging through the package's logger.
func (p *Package) SetLinksList(kind LinkKind, links []*Link) {
	p.SetLinks(kind, NormalizeLinks(p.log, "SetLinksList("+string(kind)+")", links))
}

// LinksFromConstraints builds a LinkMap from a manifest section such as
// "require", mapping package names to constraints.
func LinksFromConstraints(source string, kind LinkKind, constraints map[string]string) LinkMap {
	if len(constraints) == 0 {
		return nil
	}
	m := make(LinkMap, len(constraints))
	for target, constraint := range constraints {
		link := NewLink(source, target, constraint, kind)
		m[link.Target] = link
	}
	return m
}

// Names returns the package name together with the names it replaces and,
// when withProvides is set, the names it provides.
func (p *Package) Names(withProvides bool) []string {
	seen := map[string]bool{strings.ToLower(p.name): true}
	names := []string{strings.ToLower(p.name)}

	add := func(links LinkMap) {
		for target := range links {
			if !seen[target] {
				seen[target] = true
				names = append(names, target)
			}
		}
	}

	if withProvides {
		add(p.provides)
	}
	add(p.replaces)
	return names
}
