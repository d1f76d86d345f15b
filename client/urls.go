package client

import "fmt"

// URLBuilder constructs URLs for a repository.
type URLBuilder interface {
	// Registry is the human-facing page for a package.
	Registry(name, version string) string
	// Metadata is the JSON document listing every version of a package.
	Metadata(name string) string
	PURL(name, version string) string
}

// BaseURLs provides a default URLBuilder implementation.
type BaseURLs struct {
	RegistryFn func(name, version string) string
	MetadataFn func(name string) string
	PURLFn     func(name, version string) string
}

func (b *BaseURLs) Registry(name, version string) string {
	if b.RegistryFn != nil {
		return b.RegistryFn(name, version)
	}
	return ""
}

func (b *BaseURLs) Metadata(name string) string {
	if b.MetadataFn != nil {
		return b.MetadataFn(name)
	}
	return ""
}

func (b *BaseURLs) PURL(name, version string) string {
	if b.PURLFn != nil {
		return b.PURLFn(name, version)
	}
	if version != "" {
		return fmt.Sprintf("pkg:composer/%s@%s", name, version)
	}
	return fmt.Sprintf("pkg:composer/%s", name)
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "metadata" and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Registry(name, version); v != "" {
		result["registry"] = v
	}
	if v := urls.Metadata(name); v != "" {
		result["metadata"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
