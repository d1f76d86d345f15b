package core

import (
	"slices"
	"strings"
)

// URLKind selects which channel a URL list is built for.
type URLKind string

const (
	SourceURLs URLKind = "source"
	DistURLs   URLKind = "dist"
)

// mirrorRule is how a mirror template is expanded for a given channel and
// repository type.
type mirrorRule int

const (
	ruleNone mirrorRule = iota
	ruleDist
	ruleGit
	ruleHg
)

func ruleFor(kind URLKind, repoType string) mirrorRule {
	switch kind {
	case DistURLs:
		return ruleDist
	case SourceURLs:
		switch repoType {
		case "git":
			return ruleGit
		case "hg":
			return ruleHg
		}
	}
	return ruleNone
}

// SourceURLs returns the source URL followed or preceded by its mirrors.
func (p *Package) SourceURLs() []string {
	return p.urls(p.sourceURL, p.sourceMirrors, p.sourceReference, p.sourceType, SourceURLs)
}

// DistURLs returns the dist URL followed or preceded by its mirrors.
func (p *Package) DistURLs() []string {
	return p.urls(p.distURL, p.distMirrors, p.distReference, p.distType, DistURLs)
}

// urls builds the candidate list for a channel. Preferred mirrors are
// pushed to the front as they are seen, so the last preferred mirror ends
// up first; other mirrors keep their order after the primary URL.
func (p *Package) urls(url string, mirrors []Mirror, reference, repoType string, kind URLKind) []string {
	if url == "" {
		return nil
	}

	if kind == DistURLs && strings.Contains(url, "%") {
		url = p.expander.ExpandDist(url, p.name, p.version, reference, repoType, p.prettyVersion)
	}

	urls := []string{url}
	for _, mirror := range mirrors {
		var candidate string
		switch ruleFor(kind, repoType) {
		case ruleDist:
			candidate = p.expander.ExpandDist(mirror.URL, p.name, p.version, reference, repoType, p.prettyVersion)
		case ruleGit:
			candidate = p.expander.ExpandGitMirror(mirror.URL, p.name, url, repoType)
		case ruleHg:
			candidate = p.expander.ExpandHgMirror(mirror.URL, p.name, url, repoType)
		case ruleNone:
			continue
		}

		if slices.Contains(urls, candidate) {
			continue
		}
		if mirror.Preferred {
			urls = slices.Insert(urls, 0, candidate)
		} else {
			urls = append(urls, candidate)
		}
	}

	return urls
}
