package deps

import (
	"path/filepath"

	"github.com/matzehuels/composer-lsp/pkg/errors"
)

// ManifestParser reads dependency declarations from manifest documents.
type ManifestParser interface {
	// Parse decodes the manifest at path. When content is nil the file is
	// read from disk; otherwise content is the document text.
	Parse(path string, content []byte) (*Manifest, error)
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Type returns the manifest type identifier (e.g., "composer").
	Type() string
}

// LockReader reads the installed versions recorded next to a manifest.
type LockReader interface {
	// LockPath returns the lock file path for a manifest path.
	LockPath(manifestPath string) string
	// Read returns the lock for manifestPath, or nil with no error when
	// no lock file exists.
	Read(manifestPath string) (*Lock, error)
}

// DetectManifest finds a parser that supports the given file path.
// Returns an ErrCodeNotManifest error if no parser matches.
func DetectManifest(path string, parsers ...ManifestParser) (ManifestParser, error) {
	name := filepath.Base(path)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotManifest, "unsupported manifest: %s", name)
}
