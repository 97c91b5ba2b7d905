package deps

import (
	"testing"

	"github.com/matzehuels/composer-lsp/pkg/errors"
)

// namedParser supports exactly one file name.
type namedParser struct {
	kind, file string
}

func (p namedParser) Type() string              { return p.kind }
func (p namedParser) Supports(name string) bool { return name == p.file }
func (p namedParser) Parse(path string, _ []byte) (*Manifest, error) {
	return &Manifest{Path: path}, nil
}

func TestDetectManifest(t *testing.T) {
	parsers := []ManifestParser{
		namedParser{"composer.json", "composer.json"},
		namedParser{"package.json", "package.json"},
	}

	tests := []struct {
		path string
		want string // "" expects NOT_A_MANIFEST
	}{
		{"/srv/app/composer.json", "composer.json"},
		{"package.json", "package.json"},
		{"/srv/app/composer.lock", ""},
		{"/srv/app/vendor/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := DetectManifest(tt.path, parsers...)
			if tt.want == "" {
				if !errors.Is(err, errors.ErrCodeNotManifest) {
					t.Errorf("DetectManifest() error = %v, want NOT_A_MANIFEST", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectManifest() error: %v", err)
			}
			if p.Type() != tt.want {
				t.Errorf("DetectManifest() = %q, want %q", p.Type(), tt.want)
			}
		})
	}

	if _, err := DetectManifest("/srv/app/composer.json"); !errors.Is(err, errors.ErrCodeNotManifest) {
		t.Errorf("no parsers: error = %v", err)
	}
}

func TestDetectManifestPrefersFirstParser(t *testing.T) {
	p, err := DetectManifest("composer.json",
		namedParser{"strict", "composer.json"},
		namedParser{"lenient", "composer.json"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if p.Type() != "strict" {
		t.Errorf("DetectManifest() = %q, want the first matching parser", p.Type())
	}
}
