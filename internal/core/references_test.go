package core

import "testing"

const (
	oldSHA = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	newSHA = "cafebabecafebabecafebabecafebabecafebabe"
)

func TestSetSourceDistReferences(t *testing.T) {
	tests := []struct {
		name          string
		distURL       string
		distReference string
		wantURL       string
		wantReference string
	}{
		{
			name:          "github archive",
			distURL:       "https://github.com/acme/lib/archive/" + oldSHA + ".zip",
			distReference: oldSHA,
			wantURL:       "https://github.com/acme/lib/archive/" + newSHA + ".zip",
			wantReference: newSHA,
		},
		{
			name:          "github api zipball",
			distURL:       "https://api.github.com/repos/acme/lib/zipball/" + oldSHA,
			distReference: oldSHA,
			wantURL:       "https://api.github.com/repos/acme/lib/zipball/" + newSHA,
			wantReference: newSHA,
		},
		{
			name:          "gitlab sha query",
			distURL:       "https://gitlab.com/api/v4/projects/acme%2Flib/repository/archive.zip?sha=" + oldSHA,
			distReference: oldSHA,
			wantURL:       "https://gitlab.com/api/v4/projects/acme%2Flib/repository/archive.zip?sha=" + newSHA,
			wantReference: newSHA,
		},
		{
			name:          "bitbucket with www and path segment",
			distURL:       "https://www.bitbucket.org/acme/lib/get/" + oldSHA + "/",
			wantURL:       "https://www.bitbucket.org/acme/lib/get/" + newSHA + "/",
			wantReference: newSHA,
		},
		{
			name:          "host match is case insensitive",
			distURL:       "HTTPS://GitHub.com/acme/lib/archive/" + "DEADBEEFDEADBEEFDEADBEEFDEADBEEFDEADBEEF",
			wantURL:       "HTTPS://GitHub.com/acme/lib/archive/" + newSHA,
			wantReference: newSHA,
		},
		{
			name:          "known host without sha keeps url",
			distURL:       "https://api.github.com/repos/acme/lib/zipball/main",
			distReference: "main",
			wantURL:       "https://api.github.com/repos/acme/lib/zipball/main",
			wantReference: newSHA,
		},
		{
			name:          "every embedded sha is replaced",
			distURL:       "https://bitbucket.org/acme/lib/get/" + oldSHA + "/x/" + oldSHA + ".tar.gz",
			distReference: oldSHA,
			wantURL:       "https://bitbucket.org/acme/lib/get/" + newSHA + "/x/" + newSHA + ".tar.gz",
			wantReference: newSHA,
		},
		{
			name:          "adjacent shas share a delimiter",
			distURL:       "https://github.com/acme/lib/" + oldSHA + "/" + oldSHA,
			distReference: oldSHA,
			wantURL:       "https://github.com/acme/lib/" + newSHA + "/" + newSHA,
			wantReference: newSHA,
		},
		{
			name:          "sha not delimited is left alone",
			distURL:       "https://github.com/acme/lib/archive/x" + oldSHA,
			wantURL:       "https://github.com/acme/lib/archive/x" + oldSHA,
			wantReference: newSHA,
		},
		{
			name:          "unknown host with prior reference",
			distURL:       "https://example.com/pkg.zip",
			distReference: "old",
			wantURL:       "https://example.com/pkg.zip",
			wantReference: newSHA,
		},
		{
			name:          "unknown host embedding a sha keeps url",
			distURL:       "https://example.com/archive/" + oldSHA + ".zip",
			distReference: oldSHA,
			wantURL:       "https://example.com/archive/" + oldSHA + ".zip",
			wantReference: newSHA,
		},
		{
			name:          "unknown host without prior reference",
			distURL:       "https://example.com/pkg.zip",
			wantURL:       "https://example.com/pkg.zip",
			wantReference: "",
		},
		{
			name:          "no dist at all",
			wantReference: "",
		},
		{
			name:          "lookalike host",
			distURL:       "https://github.com.evil.example/acme/lib/archive/" + oldSHA + ".zip",
			wantURL:       "https://github.com.evil.example/acme/lib/archive/" + oldSHA + ".zip",
			wantReference: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := NewPackage("acme/lib", "dev-main", "dev-main")
			pkg.SetSourceReference("main")
			pkg.SetDistURL(tt.distURL)
			pkg.SetDistReference(tt.distReference)

			pkg.SetSourceDistReferences(newSHA)

			if pkg.SourceReference() != newSHA {
				t.Errorf("SourceReference() = %q, want %q", pkg.SourceReference(), newSHA)
			}
			if pkg.DistReference() != tt.wantReference {
				t.Errorf("DistReference() = %q, want %q", pkg.DistReference(), tt.wantReference)
			}
			if pkg.DistURL() != tt.wantURL {
				t.Errorf("DistURL() = %q, want %q", pkg.DistURL(), tt.wantURL)
			}
		})
	}
}

func TestSetSourceDistReferencesKeepsDistSHAInSync(t *testing.T) {
	pkg := NewPackage("acme/lib", "dev-main", "dev-main")
	pkg.SetDistURL("https://api.github.com/repos/acme/lib/zipball/" + oldSHA)
	pkg.SetDistReference(oldSHA)

	for _, ref := range []string{newSHA, oldSHA, newSHA} {
		pkg.SetSourceDistReferences(ref)
		want := "https://api.github.com/repos/acme/lib/zipball/" + ref
		if pkg.DistURL() != want {
			t.Fatalf("DistURL() = %q, want %q", pkg.DistURL(), want)
		}
		if pkg.DistReference() != ref {
			t.Fatalf("DistReference() = %q, want %q", pkg.DistReference(), ref)
		}
	}
}
