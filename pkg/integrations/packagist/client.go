package packagist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/matzehuels/composer-lsp/pkg/errors"
	"github.com/matzehuels/composer-lsp/pkg/httputil"
	"github.com/matzehuels/composer-lsp/pkg/integrations"
)

const (
	// DefaultAPIURL serves p2 metadata documents: {api}/{vendor}/{package}.json.
	DefaultAPIURL = "https://repo.packagist.org/p2"
	// DefaultWebURL serves the human-facing package pages.
	DefaultWebURL = "https://packagist.org"

	minifiedFormat = "composer/2.0"
	unsetMarker    = "__unset"
)

// PackageInfo holds the release list for a PHP package from Packagist.
//
// Versions are kept in registry order, which is not guaranteed to be sorted
// by precedence. URL is the package page on the Packagist website.
type PackageInfo struct {
	Name     string        // Package name (e.g., "symfony/console")
	URL      string        // Human-facing package page
	Versions []VersionInfo // Releases in registry order
}

// VersionInfo is one release entry after minified expansion.
type VersionInfo struct {
	Version           string   // Version as published (e.g., "v6.3.0")
	VersionNormalized string   // Composer's four-part form (e.g., "6.3.0.0")
	Description       string   // Package summary (may be empty)
	Homepage          string   // Homepage URL (may be empty)
	License           []string // SPDX identifiers
	Keywords          []string
	Authors           []Author
	Repository        string // Normalized source URL (may be empty)
	Time              string // Release timestamp as published
}

// Author is a release author entry.
type Author struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Homepage string `json:"homepage"`
}

// Options configures a Packagist client. Zero values select the public
// Packagist endpoints and the shared client defaults.
type Options struct {
	APIURL     string           // Metadata base URL (default: DefaultAPIURL)
	WebURL     string           // Website base URL (default: DefaultWebURL)
	UserAgent  string           // User-Agent header (optional)
	HTTPClient *http.Client     // Replaces the default 10s-timeout client (optional)
	Retry      *httputil.Policy // Replaces the default retry policy (optional)
}

// Client provides access to the Packagist package registry API.
// It handles HTTP requests with automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	apiURL string
	webURL string
}

// NewClient creates a Packagist client.
func NewClient(opts Options) *Client {
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	c := &Client{
		Client: integrations.NewClient(headers),
		apiURL: DefaultAPIURL,
		webURL: DefaultWebURL,
	}
	if opts.APIURL != "" {
		c.apiURL = opts.APIURL
	}
	if opts.WebURL != "" {
		c.webURL = opts.WebURL
	}
	c.SetHTTPClient(opts.HTTPClient)
	if opts.Retry != nil {
		c.SetRetryPolicy(*opts.Retry)
	}
	return c
}

// PackageURL returns the human-facing Packagist page for a package.
func (c *Client) PackageURL(pkg string) string {
	return integrations.JoinURL(c.webURL, "packages/"+integrations.NormalizePkgName(pkg))
}

// FetchPackage retrieves the release list of a PHP package from Packagist.
//
// The pkg parameter must be in "vendor/package" format (e.g., "symfony/console").
// Package name is normalized to lowercase with whitespace trimmed.
//
// Returns:
//   - PackageInfo populated with every published release on success
//   - [integrations.ErrNotFound] if the package doesn't exist or has no releases
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - an ErrCodeInvalidPackage error for names that cannot be queried safely
//
// The returned PackageInfo pointer is never nil if err is nil.
func (c *Client) FetchPackage(ctx context.Context, pkg string) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	if err := pkgerrors.ValidateComposerPackageName(pkg); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Fetch(ctx, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data p2Response
	if err := c.Get(ctx, integrations.JoinURL(c.apiURL, pkg+".json"), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: packagist package %s", err, pkg)
		}
		return err
	}

	raw, ok := data.Packages[pkg]
	if !ok || len(raw) == 0 {
		return fmt.Errorf("%w: no versions found for %s", integrations.ErrNotFound, pkg)
	}

	if data.Minified == minifiedFormat {
		expanded, err := expand(raw)
		if err != nil {
			return fmt.Errorf("expand %s: %w", pkg, err)
		}
		raw = expanded
	}

	versions := make([]VersionInfo, 0, len(raw))
	for _, r := range raw {
		var v p2Version
		if err := json.Unmarshal(r, &v); err != nil {
			return fmt.Errorf("decode %s: %w", pkg, err)
		}
		versions = append(versions, v.info())
	}

	*info = PackageInfo{
		Name:     pkg,
		URL:      c.PackageURL(pkg),
		Versions: versions,
	}
	return nil
}

// expand undoes composer/2.0 minification. Each entry only lists the fields
// that differ from the previous expanded entry; "__unset" removes a field.
func expand(entries []json.RawMessage) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(entries))
	var prev map[string]json.RawMessage

	for _, entry := range entries {
		var diff map[string]json.RawMessage
		if err := json.Unmarshal(entry, &diff); err != nil {
			return nil, err
		}

		cur := make(map[string]json.RawMessage, len(prev)+len(diff))
		for k, v := range prev {
			cur[k] = v
		}
		for k, v := range diff {
			if isUnset(v) {
				delete(cur, k)
				continue
			}
			cur[k] = v
		}

		b, err := json.Marshal(cur)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		prev = cur
	}
	return out, nil
}

func isUnset(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte(`"`+unsetMarker+`"`))
}

type p2Response struct {
	Packages map[string][]json.RawMessage `json:"packages"`
	Minified string                       `json:"minified"`
}

type p2Version struct {
	Version           string
	VersionNormalized string
	Description       string
	Homepage          string
	License           []string
	Keywords          []string
	Authors           []Author
	SourceURL         string
	Time              string
}

func (v p2Version) info() VersionInfo {
	return VersionInfo{
		Version:           v.Version,
		VersionNormalized: v.VersionNormalized,
		Description:       v.Description,
		Homepage:          v.Homepage,
		License:           v.License,
		Keywords:          v.Keywords,
		Authors:           v.Authors,
		Repository:        integrations.NormalizeRepoURL(v.SourceURL),
		Time:              v.Time,
	}
}

// UnmarshalJSON tolerates the loosely typed fields Packagist serves:
// license and keywords may be a string or an array, and authors may be
// missing or null.
func (v *p2Version) UnmarshalJSON(b []byte) error {
	type raw struct {
		Version           string          `json:"version"`
		VersionNormalized string          `json:"version_normalized"`
		Description       string          `json:"description"`
		Homepage          string          `json:"homepage"`
		License           json.RawMessage `json:"license"`
		Keywords          json.RawMessage `json:"keywords"`
		Authors           json.RawMessage `json:"authors"`
		Time              string          `json:"time"`
		Source            struct {
			URL string `json:"url"`
		} `json:"source"`
	}

	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	*v = p2Version{
		Version:           strings.TrimSpace(r.Version),
		VersionNormalized: r.VersionNormalized,
		Description:       r.Description,
		Homepage:          r.Homepage,
		License:           stringList(r.License),
		Keywords:          stringList(r.Keywords),
		SourceURL:         r.Source.URL,
		Time:              r.Time,
	}

	if len(r.Authors) > 0 && string(r.Authors) != "null" {
		// Malformed author lists are dropped rather than failing the release.
		_ = json.Unmarshal(r.Authors, &v.Authors)
	}
	return nil
}

func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if json.Unmarshal(raw, &single) == nil && single != "" {
		return []string{single}
	}
	return nil
}
