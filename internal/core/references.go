package core

import (
	"regexp"
	"strings"
)

var (
	// hosts whose archive URLs embed the commit SHA verbatim
	shaArchiveHost = regexp.MustCompile(`(?i)^https?://(?:(?:www\.)?bitbucket\.org|(?:api\.)?github\.com|(?:www\.)?gitlab\.com)/`)
	commitSHA      = regexp.MustCompile(`(?i)(/|sha=)[0-9a-f]{40}(/|\.|$)`)
)

// SetSourceDistReferences points the source at reference and keeps the
// dist reference, and where possible the dist URL, in step with it.
func (p *Package) SetSourceDistReferences(reference string) {
	p.sourceReference = reference

	if p.distURL != "" && shaArchiveHost.MatchString(p.distURL) {
		p.distReference = reference
		p.distURL = replaceCommitSHA(p.distURL, reference)
		return
	}

	if p.distReference != "" {
		p.distReference = reference
	}
}

// replaceCommitSHA swaps every 40 character SHA in url for reference.
// A SHA must follow a "/" or "sha=" and end the URL, a path segment, or
// the name part of an archive file such as "<sha>.zip".
func replaceCommitSHA(url, reference string) string {
	var b strings.Builder
	rest := url
	for {
		loc := commitSHA.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		// keep the trailing delimiter in rest so it can lead the next SHA
		b.WriteString(rest[:loc[3]])
		b.WriteString(reference)
		rest = rest[loc[4]:]
	}
	b.WriteString(rest)
	return b.String()
}
