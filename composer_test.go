package composer_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/git-pkgs/composer"
	_ "github.com/git-pkgs/composer/all"
)

const monologJSON = `{
  "package": {
    "name": "monolog/monolog",
    "versions": {
      "3.5.0": {
        "version": "3.5.0",
        "version_normalized": "3.5.0.0",
        "time": "2023-10-27T15:32:31+00:00",
        "source": {"type": "git", "url": "https://github.com/Seldaek/monolog.git", "reference": "c915e2634718dbc8a4a15c61b0e62e7a44e14448"},
        "dist": {"type": "zip", "url": "https://api.github.com/repos/Seldaek/monolog/zipball/c915e2634718dbc8a4a15c61b0e62e7a44e14448", "reference": "c915e2634718dbc8a4a15c61b0e62e7a44e14448"},
        "require": {"php": ">=8.1", "psr/log": "^2.0 || ^3.0"}
      },
      "3.6.0-RC1": {
        "version": "3.6.0-RC1",
        "version_normalized": "3.6.0.0-RC1",
        "time": "2024-01-02T10:00:00+00:00"
      },
      "dev-main": {
        "version": "dev-main",
        "version_normalized": "dev-main",
        "time": "2024-02-01T10:00:00+00:00",
        "source": {"type": "git", "url": "https://github.com/Seldaek/monolog.git", "reference": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
        "dist": {"type": "zip", "url": "https://api.github.com/repos/Seldaek/monolog/zipball/aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "reference": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
      }
    }
  }
}`

func newServer(tb testing.TB) *httptest.Server {
	tb.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/packages/monolog/monolog.json" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(monologJSON))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	tb.Cleanup(server.Close)
	return server
}

func TestSupportedRepositories(t *testing.T) {
	got := composer.SupportedRepositories()
	if len(got) != 1 || got[0] != "composer" {
		t.Errorf("SupportedRepositories() = %v, want [composer]", got)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr bool
	}{
		{"composer", false},
		{"npm", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			repo, err := composer.New(tt.kind, "", nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if !tt.wantErr && repo.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", repo.Kind(), tt.kind)
			}
		})
	}
}

func TestDefaultURL(t *testing.T) {
	if got := composer.DefaultURL("composer"); got != "https://packagist.org" {
		t.Errorf("DefaultURL(composer) = %q", got)
	}
	if got := composer.DefaultURL("unknown"); got != "" {
		t.Errorf("DefaultURL(unknown) = %q, want empty", got)
	}
}

func TestIntegration(t *testing.T) {
	server := newServer(t)

	repo, err := composer.New("composer", server.URL, composer.DefaultClient())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pkgs, err := repo.FetchPackages(context.Background(), "monolog/monolog")
	if err != nil {
		t.Fatalf("FetchPackages failed: %v", err)
	}
	if len(pkgs) != 3 {
		t.Fatalf("got %d versions, want 3", len(pkgs))
	}

	latest := composer.Latest(pkgs, composer.StabilityStable)
	if latest == nil || latest.PrettyVersion() != "3.5.0" {
		t.Fatalf("Latest(stable) = %v", latest)
	}

	// a branch install pins the archive to the resolved commit
	dev := pkgs[0]
	if dev.PrettyVersion() != "dev-main" {
		t.Fatalf("pkgs[0] = %s, want dev-main", dev.PrettyVersion())
	}
	const sha = "0123456789abcdef0123456789abcdef01234567"
	dev.SetSourceDistReferences(sha)
	if dev.DistURL() != "https://api.github.com/repos/Seldaek/monolog/zipball/"+sha {
		t.Errorf("DistURL() = %q", dev.DistURL())
	}
	if dev.SourceReference() != sha || dev.DistReference() != sha {
		t.Errorf("references = %q, %q", dev.SourceReference(), dev.DistReference())
	}

	urls := composer.BuildURLs(repo.URLs(), "monolog/monolog", "3.5.0")
	if urls["purl"] != "pkg:composer/monolog/monolog@3.5.0" {
		t.Errorf("purl = %q", urls["purl"])
	}
	if urls["metadata"] != server.URL+"/packages/monolog/monolog.json" {
		t.Errorf("metadata = %q", urls["metadata"])
	}
}

func TestFetchFromPURL(t *testing.T) {
	server := newServer(t)
	qualifier := "?repository_url=" + server.URL

	pkg, err := composer.FetchPackageFromPURL(context.Background(), "pkg:composer/monolog/monolog"+qualifier, nil)
	if err != nil {
		t.Fatalf("FetchPackageFromPURL failed: %v", err)
	}
	if pkg.PrettyVersion() != "3.5.0" {
		t.Errorf("version = %s, want newest stable 3.5.0", pkg.PrettyVersion())
	}

	pkg, err = composer.FetchPackageFromPURL(context.Background(), "pkg:composer/monolog/monolog@3.6.0-RC1"+qualifier, nil)
	if err != nil {
		t.Fatalf("FetchPackageFromPURL failed: %v", err)
	}
	if pkg.Stability() != composer.StabilityRC {
		t.Errorf("Stability() = %s, want RC", pkg.Stability())
	}

	_, err = composer.FetchPackageFromPURL(context.Background(), "pkg:composer/monolog/monolog@9.9.9"+qualifier, nil)
	var nf *composer.NotFoundError
	if !errors.As(err, &nf) || nf.Version != "9.9.9" {
		t.Errorf("error = %v, want NotFoundError for 9.9.9", err)
	}

	_, err = composer.FetchPackagesFromPURL(context.Background(), "pkg:composer/acme/missing"+qualifier, nil)
	if !errors.Is(err, composer.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	if _, err := composer.ParsePURL("pkg:composer/monolog/monolog@3.5.0"); err != nil {
		t.Errorf("ParsePURL failed: %v", err)
	}
}

func TestConstants(t *testing.T) {
	if composer.StabilityStable != "stable" || composer.StabilityDev != "dev" {
		t.Error("stability constants mismatch")
	}
	if composer.Requires != "requires" || composer.DevRequires != "devRequires" {
		t.Error("link kind constants mismatch")
	}
	if composer.DefaultType != "library" {
		t.Error("DefaultType mismatch")
	}
}
