// Package packagist provides a repository client for packagist.org and
// other Composer repositories serving the same package documents.
package packagist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/git-pkgs/composer/internal/core"
)

const (
	DefaultURL = "https://packagist.org"
	kind       = "composer"
)

func init() {
	core.Register(kind, DefaultURL, func(baseURL string, client *core.Client) core.Repository {
		return New(baseURL, client)
	})
}

// Mirrors are the mirror templates a repository advertises for its
// packages, per channel.
type Mirrors struct {
	Dist []core.Mirror
	Git  []core.Mirror
	Hg   []core.Mirror
}

type Repository struct {
	baseURL string
	client  *core.Client
	urls    *URLs
	mirrors Mirrors
	log     logr.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithMirrors attaches mirror templates to every package the repository returns.
func WithMirrors(m Mirrors) Option {
	return func(r *Repository) {
		r.mirrors = m
	}
}

// WithLogger sets the logger used for skipped or malformed entries.
func WithLogger(log logr.Logger) Option {
	return func(r *Repository) {
		r.log = log
	}
}

func New(baseURL string, client *core.Client, opts ...Option) *Repository {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	r := &Repository{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.urls = &URLs{baseURL: r.baseURL}
	return r
}

func (r *Repository) Kind() string {
	return kind
}

func (r *Repository) URLs() core.URLBuilder {
	return r.urls
}

type packageResponse struct {
	Package packageInfo `json:"package"`
}

type packageInfo struct {
	Name     string                 `json:"name"`
	Versions map[string]versionInfo `json:"versions"`
}

type versionInfo struct {
	Name              string        `json:"name"`
	Version           string        `json:"version"`
	VersionNormalized string        `json:"version_normalized"`
	Type              string        `json:"type"`
	TargetDir         string        `json:"target-dir"`
	Time              string        `json:"time"`
	Source            sourceInfo    `json:"source"`
	Dist              distInfo      `json:"dist"`
	Require           constraintMap `json:"require"`
	RequireDev        constraintMap `json:"require-dev"`
	Conflict          constraintMap `json:"conflict"`
	Provide           constraintMap `json:"provide"`
	Replace           constraintMap `json:"replace"`
	Suggest           constraintMap `json:"suggest"`
	Extra             jsonObject    `json:"extra"`
	Bin               []string      `json:"bin"`
	Autoload          jsonObject    `json:"autoload"`
	AutoloadDev       jsonObject    `json:"autoload-dev"`
	IncludePath       []string      `json:"include-path"`
	NotificationURL   string        `json:"notification-url"`
	DefaultBranch     bool          `json:"default-branch"`
}

type sourceInfo struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

type distInfo struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
	Shasum    string `json:"shasum"`
}

// constraintMap decodes a name => string object. Empty sections are
// sometimes serialized as [] and decode to nil.
type constraintMap map[string]string

func (m *constraintMap) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) {
		*m = nil
		return nil
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// jsonObject is a free-form object that also tolerates [] for empty.
type jsonObject map[string]any

func (o *jsonObject) UnmarshalJSON(data []byte) error {
	if isEmptyArray(data) {
		*o = nil
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = raw
	return nil
}

func isEmptyArray(data []byte) bool {
	return strings.Join(strings.Fields(string(data)), "") == "[]"
}

func (r *Repository) FetchPackages(ctx context.Context, name string) ([]*core.Package, error) {
	url := r.urls.Metadata(name)

	var resp packageResponse
	if err := r.client.GetJSON(ctx, url, &resp); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, &core.NotFoundError{Repository: kind, Name: name}
		}
		return nil, err
	}

	pkgName := resp.Package.Name
	if pkgName == "" {
		pkgName = name
	}

	pkgs := make([]*core.Package, 0, len(resp.Package.Versions))
	for key, v := range resp.Package.Versions {
		if v.Version == "" {
			v.Version = key
		}
		pkgs = append(pkgs, r.buildPackage(pkgName, v))
	}

	core.SortNewestFirst(pkgs)

	return pkgs, nil
}

func (r *Repository) buildPackage(name string, v versionInfo) *core.Package {
	normalized := v.VersionNormalized
	if normalized == "" {
		normalized = v.Version
	}

	pkg := core.NewPackage(name, normalized, v.Version, core.WithLogger(r.log))
	pkg.SetType(v.Type)
	pkg.SetTargetDir(v.TargetDir)

	if v.Source.URL != "" {
		pkg.SetSourceType(v.Source.Type)
		pkg.SetSourceURL(v.Source.URL)
		pkg.SetSourceReference(v.Source.Reference)
		switch v.Source.Type {
		case "git":
			pkg.SetSourceMirrors(r.mirrors.Git)
		case "hg":
			pkg.SetSourceMirrors(r.mirrors.Hg)
		}
	}

	if v.Dist.URL != "" {
		pkg.SetDistType(v.Dist.Type)
		pkg.SetDistURL(v.Dist.URL)
		pkg.SetDistReference(v.Dist.Reference)
		pkg.SetDistSha1Checksum(v.Dist.Shasum)
		pkg.SetDistMirrors(r.mirrors.Dist)
	}

	pkg.SetRequires(core.LinksFromConstraints(name, core.Requires, v.Require))
	pkg.SetDevRequires(core.LinksFromConstraints(name, core.DevRequires, v.RequireDev))
	pkg.SetConflicts(core.LinksFromConstraints(name, core.Conflicts, v.Conflict))
	pkg.SetProvides(core.LinksFromConstraints(name, core.Provides, v.Provide))
	pkg.SetReplaces(core.LinksFromConstraints(name, core.Replaces, v.Replace))
	if len(v.Suggest) > 0 {
		pkg.SetSuggests(map[string]string(v.Suggest))
	}

	pkg.SetExtra(v.Extra)
	pkg.SetBinaries(v.Bin)
	pkg.SetAutoload(core.AutoloadRules(v.Autoload))
	pkg.SetDevAutoload(core.AutoloadRules(v.AutoloadDev))
	pkg.SetIncludePaths(v.IncludePath)
	pkg.SetNotificationURL(v.NotificationURL)
	pkg.SetDefaultBranch(v.DefaultBranch)

	if v.Time != "" {
		if t, err := time.Parse(time.RFC3339, v.Time); err == nil {
			pkg.SetReleaseDate(t)
		} else {
			r.log.V(1).Info("ignoring unparseable release time", "package", name, "version", v.Version, "time", v.Time)
		}
	}

	return pkg
}

type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/packages/%s#%s", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/packages/%s", u.baseURL, name)
}

func (u *URLs) Metadata(name string) string {
	return fmt.Sprintf("%s/packages/%s.json", u.baseURL, name)
}

func (u *URLs) PURL(name, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:composer/%s@%s", name, version)
	}
	return fmt.Sprintf("pkg:composer/%s", name)
}
