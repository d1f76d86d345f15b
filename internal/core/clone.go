package core

import (
	"maps"
	"slices"
)

// Clone returns a copy of p that can be mutated independently. Links are
// shared since they are immutable; the collections holding them are not.
func (p *Package) Clone() *Package {
	c := *p

	c.sourceMirrors = slices.Clone(p.sourceMirrors)
	c.distMirrors = slices.Clone(p.distMirrors)
	c.binaries = slices.Clone(p.binaries)
	c.includePaths = slices.Clone(p.includePaths)

	c.requires = maps.Clone(p.requires)
	c.devRequires = maps.Clone(p.devRequires)
	c.conflicts = maps.Clone(p.conflicts)
	c.provides = maps.Clone(p.provides)
	c.replaces = maps.Clone(p.replaces)
	c.suggests = maps.Clone(p.suggests)

	c.extra = maps.Clone(p.extra)
	c.transportOptions = maps.Clone(p.transportOptions)
	c.autoload = maps.Clone(p.autoload)
	c.devAutoload = maps.Clone(p.devAutoload)

	return &c
}
