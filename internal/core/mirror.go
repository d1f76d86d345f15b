package core

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// MirrorURLExpander turns mirror URL templates into concrete URLs.
type MirrorURLExpander interface {
	// ExpandDist fills a dist URL template with the package identity.
	ExpandDist(template, name, version, reference, distType, prettyVersion string) string

	// ExpandGitMirror derives a git mirror URL from the repository URL.
	ExpandGitMirror(template, name, repoURL, sourceType string) string

	// ExpandHgMirror derives a mercurial mirror URL from the repository URL.
	ExpandHgMirror(template, name, repoURL, sourceType string) string
}

// ComposerMirror expands the placeholders used by Composer repositories:
// %package%, %version%, %reference%, %type%, %prettyVersion% and %normalizedUrl%.
type ComposerMirror struct{}

var (
	hexReference  = regexp.MustCompile(`^([a-f0-9]*|%reference%)$`)
	githubRepo    = regexp.MustCompile(`^(?:(?:https?|git)://github\.com/|git@github\.com:)([^/]+)/(.+?)(?:\.git)?$`)
	bitbucketRepo = regexp.MustCompile(`^https://bitbucket\.org/([^/]+)/(.+?)(?:\.git)?/?$`)
	unsafeURLChar = regexp.MustCompile(`(?i)[^a-z0-9_.-]`)
)

func (ComposerMirror) ExpandDist(template, name, version, reference, distType, prettyVersion string) string {
	if reference != "" && !hexReference.MatchString(reference) {
		reference = md5Hex(reference)
	}
	if strings.Contains(version, "/") {
		version = md5Hex(version)
	}

	pairs := []string{
		"%package%", name,
		"%version%", version,
		"%reference%", reference,
		"%type%", distType,
	}
	if prettyVersion != "" {
		pairs = append(pairs, "%prettyVersion%", prettyVersion)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func (ComposerMirror) ExpandGitMirror(template, name, repoURL, sourceType string) string {
	var normalized string
	if m := githubRepo.FindStringSubmatch(repoURL); m != nil {
		normalized = "gh-" + m[1] + "/" + m[2]
	} else if m := bitbucketRepo.FindStringSubmatch(repoURL); m != nil {
		normalized = "bb-" + m[1] + "/" + m[2]
	} else {
		normalized = unsafeURLChar.ReplaceAllString(strings.Trim(repoURL, "/"), "-")
	}

	return strings.NewReplacer(
		"%package%", name,
		"%normalizedUrl%", normalized,
		"%type%", sourceType,
	).Replace(template)
}

// ExpandHgMirror normalizes mercurial URLs the same way as git URLs.
func (c ComposerMirror) ExpandHgMirror(template, name, repoURL, sourceType string) string {
	return c.ExpandGitMirror(template, name, repoURL, sourceType)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
