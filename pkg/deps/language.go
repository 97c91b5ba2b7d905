package deps

import (
	"fmt"
	"net/http"
	"time"
)

// RegistryConfig holds the endpoint settings a language uses to build its
// registry client. Zero values select the registry's public defaults.
type RegistryConfig struct {
	APIURL     string
	WebURL     string
	UserAgent  string
	HTTPClient *http.Client
	Attempts   int           // Retry attempts for transient failures (0: client default)
	RetryDelay time.Duration // Initial backoff delay (0: client default)
}

// Language ties a package ecosystem's manifests, lock files and registry
// together.
type Language struct {
	Name            string
	DefaultRegistry string
	RegistryAliases map[string]string
	NewFetcher      func(cfg RegistryConfig) Fetcher
	ManifestParsers func(opts Options) []ManifestParser
	NewLockReader   func(opts Options) LockReader
}

// Registry builds the named registry. An empty name selects the default.
func (l *Language) Registry(name string, cfg RegistryConfig, opts Options) (*Registry, error) {
	if name == "" {
		name = l.DefaultRegistry
	}
	name = l.alias(l.RegistryAliases, name)
	if name != l.DefaultRegistry {
		return nil, fmt.Errorf("unknown registry %q (available: %s)", name, l.DefaultRegistry)
	}
	return NewRegistry(name, l.NewFetcher(cfg), opts), nil
}

// Manifest returns the parser for path, or an ErrCodeNotManifest error.
func (l *Language) Manifest(path string, opts Options) (ManifestParser, error) {
	return DetectManifest(path, l.ManifestParsers(opts)...)
}

// Lock returns the language's lock file reader.
func (l *Language) Lock(opts Options) LockReader {
	return l.NewLockReader(opts)
}

func (l *Language) alias(m map[string]string, name string) string {
	if v, ok := m[name]; ok {
		return v
	}
	return name
}
