package deps

import (
	"slices"
	"strings"
)

// DefaultMaxConcurrency bounds simultaneous registry lookups in a batch.
// Zero in [Options] means this default; a negative value means unbounded.
const DefaultMaxConcurrency = 16

// Options configures parsing and registry behavior.
type Options struct {
	MaxConcurrency int                  // Parallel registry lookups per batch (default: 16)
	Logger         func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Block names the manifest section a dependency is declared in.
type Block string

const (
	BlockRequire    Block = "require"
	BlockRequireDev Block = "require-dev"
)

// Dependency is one declared requirement with its recovered source position.
//
// Line is 0-based. Column and EndColumn are 0-based byte offsets on that line
// delimiting the quoted name, suitable as a diagnostic range.
type Dependency struct {
	Name       string
	Constraint string
	Block      Block
	Line       int
	Column     int
	EndColumn  int
	Platform   bool // php, ext-*, lib-*, composer-*-api: not served by registries
}

// Manifest is a parsed dependency declaration document.
//
// Dependencies holds require entries first, then require-dev, each in
// document order. A Manifest is immutable once returned by a parser.
type Manifest struct {
	Path         string
	Dependencies []Dependency
	Lines        *LineIndex
}

// Dependency returns the first declaration of name, require before require-dev.
func (m *Manifest) Dependency(name string) (Dependency, bool) {
	if m == nil {
		return Dependency{}, false
	}
	for _, d := range m.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// DependencyAt returns the declaration indexed on line. A package listed in
// both require blocks resolves to the block that declares it on that line.
func (m *Manifest) DependencyAt(line int) (Dependency, bool) {
	if m == nil {
		return Dependency{}, false
	}
	name, ok := m.Lines.Lookup(line)
	if !ok {
		return Dependency{}, false
	}
	for _, d := range m.Dependencies {
		if d.Line == line && d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// Names returns the distinct names of every dependency that a registry can
// serve, in manifest order.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]bool, len(m.Dependencies))
	var names []string
	for _, d := range m.Dependencies {
		if d.Name == "" || d.Platform || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		names = append(names, d.Name)
	}
	return names
}

// LineIndex maps a 0-based source line to the dependency declared on it.
// The zero value and nil are empty indexes.
type LineIndex struct {
	names map[int]string
}

// NewLineIndex indexes dependencies in the given order. When two
// dependencies share a line the first one keeps it, so with manifest
// ordering a require entry wins over a require-dev entry.
func NewLineIndex(dependencies []Dependency) *LineIndex {
	idx := &LineIndex{names: make(map[int]string, len(dependencies))}
	for _, d := range dependencies {
		if _, taken := idx.names[d.Line]; !taken {
			idx.names[d.Line] = d.Name
		}
	}
	return idx
}

// Lookup returns the dependency name declared on line.
func (x *LineIndex) Lookup(line int) (string, bool) {
	if x == nil {
		return "", false
	}
	name, ok := x.names[line]
	return name, ok
}

// Len returns the number of indexed lines.
func (x *LineIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.names)
}

// Lines returns the indexed lines in ascending order.
func (x *LineIndex) Lines() []int {
	if x == nil {
		return nil
	}
	lines := make([]int, 0, len(x.names))
	for l := range x.names {
		lines = append(lines, l)
	}
	slices.Sort(lines)
	return lines
}

// InstalledPackage is a lock file entry with a normalized version.
type InstalledPackage struct {
	Name    string
	Version string
}

// Lock holds the installed versions recorded next to a manifest.
// A nil *Lock means no lock file exists, which is a normal state.
type Lock struct {
	Path     string
	Packages map[string]InstalledPackage
}

// Installed returns the normalized installed version of name, or "".
func (l *Lock) Installed(name string) string {
	if l == nil {
		return ""
	}
	return l.Packages[name].Version
}

// Author is a release author.
type Author struct {
	Name     string
	Email    string
	Homepage string
}

// Release is one published version of a package.
type Release struct {
	Version           string   // Version as published (e.g., "v6.3.0")
	VersionNormalized string   // Registry-normalized form (may be empty)
	Description       string   // Package summary (may be empty)
	Homepage          string   // Homepage URL (may be empty)
	Authors           []Author // Release authors
	License           []string // License identifiers
	Keywords          []string
	Repository        string // Source repository URL (may be empty)
	RegistryURL       string // Human-facing registry page
}

// Package holds the releases a registry publishes for a name.
// Releases keep registry order, which is not necessarily precedence order.
type Package struct {
	Name     string
	Releases []Release
}

var quoteStripper = strings.NewReplacer(`"`, "", "'", "")

// NormalizeVersion removes quote characters, surrounding whitespace and one
// leading "v" or "V" from a version string.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(quoteStripper.Replace(v))
	if len(v) > 0 && (v[0] == 'v' || v[0] == 'V') {
		v = v[1:]
	}
	return v
}
