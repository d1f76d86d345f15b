package core

import (
	"slices"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
)

func TestNormalizeLinks(t *testing.T) {
	var notices []string
	log := funcr.New(func(prefix, args string) {
		notices = append(notices, args)
	}, funcr.Options{})

	foo1 := NewLink("acme/app", "foo", "^1.0", Requires)
	bar := NewLink("acme/app", "bar", "^2.0", Requires)
	foo2 := NewLink("acme/app", "foo", "^1.5", Requires)

	got := NormalizeLinks(log, "acme/app::SetRequires", []*Link{foo1, bar, foo2})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if got["foo"] != foo2 {
		t.Errorf("foo = %v, want the last foo link", got["foo"])
	}
	if got["bar"] != bar {
		t.Errorf("bar = %v, want %v", got["bar"], bar)
	}

	if len(notices) != 1 {
		t.Fatalf("got %d notices, want 1: %v", len(notices), notices)
	}
	if !strings.Contains(notices[0], "acme/app::SetRequires") {
		t.Errorf("notice %q does not name the caller", notices[0])
	}
}

func TestNormalizeLinksLowercasesKeys(t *testing.T) {
	link := &Link{Source: "acme/app", Target: "Foo/Bar", Constraint: "*", Description: Requires}

	got := NormalizeLinks(funcr.New(func(string, string) {}, funcr.Options{}), "test", []*Link{link})
	if got["foo/bar"] != link {
		t.Errorf("NormalizeLinks() = %v, want key foo/bar", got)
	}
	if _, ok := got["Foo/Bar"]; ok {
		t.Error("mixed-case key should not be stored")
	}
}

func TestSetLinksList(t *testing.T) {
	var notices []string
	log := funcr.New(func(prefix, args string) {
		notices = append(notices, args)
	}, funcr.Options{})

	pkg := NewPackage("acme/app", "1.0.0", "1.0.0", WithLogger(log))
	old := NewLink("acme/app", "psr/log", "^1.0", Conflicts)
	newer := NewLink("acme/app", "psr/log", "^2.0", Conflicts)

	pkg.SetLinksList(Conflicts, []*Link{old, newer})

	if got := pkg.Conflicts(); len(got) != 1 || got["psr/log"] != newer {
		t.Errorf("Conflicts() = %v, want the later psr/log link", got)
	}
	if len(notices) != 1 || !strings.Contains(notices[0], "SetLinksList(conflicts)") {
		t.Errorf("notices = %v, want one naming SetLinksList(conflicts)", notices)
	}

	// canonical setters take the map as is and log nothing
	pkg.SetConflicts(LinkMap{"psr/log": old})
	if len(notices) != 1 {
		t.Errorf("SetConflicts logged %d notices, want none", len(notices)-1)
	}
}

func TestNormalizeLinksEmpty(t *testing.T) {
	got := NormalizeLinks(funcr.New(func(string, string) {}, funcr.Options{}), "test", nil)
	if got == nil || len(got) != 0 {
		t.Errorf("NormalizeLinks(nil) = %v, want empty map", got)
	}
}

func TestNewLinkLowercases(t *testing.T) {
	l := NewLink("Acme/App", "Symfony/Console", "^7.0", Requires)
	if l.Source != "acme/app" || l.Target != "symfony/console" {
		t.Errorf("NewLink names = %q, %q, want lowercased", l.Source, l.Target)
	}
	if l.Constraint != "^7.0" {
		t.Errorf("Constraint = %q, want %q", l.Constraint, "^7.0")
	}
	if got := l.String(); got != "acme/app requires symfony/console (^7.0)" {
		t.Errorf("String() = %q", got)
	}
}

func TestLinksFromConstraints(t *testing.T) {
	links := LinksFromConstraints("acme/app", DevRequires, map[string]string{
		"PHPUnit/PHPUnit": "^10.5",
		"symfony/process": "^6.4|^7.0",
	})

	if len(links) != 2 {
		t.Fatalf("len = %d, want 2", len(links))
	}
	for key, link := range links {
		if key != link.Target {
			t.Errorf("key %q != target %q", key, link.Target)
		}
		if link.Description != DevRequires {
			t.Errorf("%s kind = %q, want %q", key, link.Description, DevRequires)
		}
	}
	if links["phpunit/phpunit"] == nil {
		t.Error("expected lowercased key phpunit/phpunit")
	}

	if got := LinksFromConstraints("acme/app", Requires, nil); got != nil {
		t.Errorf("LinksFromConstraints(nil) = %v, want nil", got)
	}
}

func TestPackageNames(t *testing.T) {
	pkg := NewPackage("Acme/Lib", "1.0.0.0", "1.0.0")
	pkg.SetReplaces(LinksFromConstraints("acme/lib", Replaces, map[string]string{"acme/old-lib": "self.version"}))
	pkg.SetProvides(LinksFromConstraints("acme/lib", Provides, map[string]string{"psr/log-implementation": "1.0"}))

	got := pkg.Names(false)
	slices.Sort(got)
	if want := []string{"acme/lib", "acme/old-lib"}; !slices.Equal(got, want) {
		t.Errorf("Names(false) = %v, want %v", got, want)
	}

	got = pkg.Names(true)
	slices.Sort(got)
	if want := []string{"acme/lib", "acme/old-lib", "psr/log-implementation"}; !slices.Equal(got, want) {
		t.Errorf("Names(true) = %v, want %v", got, want)
	}
}
