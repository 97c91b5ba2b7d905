package integrations

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound means the registry has no such package.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork covers transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient returns the HTTP client registry clients use by default.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePkgName trims and lowercases a Composer package name; Packagist
// serves every package under its lowercase name.
func NormalizePkgName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// JoinURL joins base and path with exactly one slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// NormalizeRepoURL turns a release source URL into a browsable https URL.
// scp-style ("git@host:owner/repo"), git://, ssh:// and git+ forms are
// rewritten and a trailing .git is dropped. Other URLs pass through.
func NormalizeRepoURL(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "git+")
	if s == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(s, "ssh://"):
		s = "https://" + strings.TrimPrefix(strings.TrimPrefix(s, "ssh://"), "git@")
	case strings.HasPrefix(s, "git://"):
		s = "https://" + strings.TrimPrefix(s, "git://")
	case strings.HasPrefix(s, "git@"):
		if host, path, ok := strings.Cut(strings.TrimPrefix(s, "git@"), ":"); ok {
			s = "https://" + host + "/" + path
		}
	}
	return strings.TrimSuffix(s, ".git")
}
