package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/composer-lsp/pkg/deps"
)

// Severity is a diagnostic severity, numbered as the editor protocol does.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// ParseSeverity parses "error", "warning", "information" (or "info") and
// "hint", case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "information", "info":
		return SeverityInformation, nil
	case "hint":
		return SeverityHint, nil
	}
	return 0, fmt.Errorf("unknown severity %q (want error, warning, information or hint)", s)
}

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic reports an available update for one declared dependency.
// Line and columns are 0-based; columns count UTF-16 units.
type Diagnostic struct {
	Line        int
	StartColumn int
	EndColumn   int
	Severity    Severity
	Message     string
	Package     string
	Version     string
}

// Snapshot is the complete analysis state of one document. A Snapshot is
// never modified after it is published; a refresh builds and publishes a
// new one.
type Snapshot struct {
	seq uint64 // refresh order, see Analyzer.publish

	Path        string
	RefreshID   string
	Manifest    *deps.Manifest
	Lock        *deps.Lock // nil when no lock file exists
	Packages    map[string]*deps.Package
	Diagnostics []Diagnostic
	CreatedAt   time.Time
}

// Package returns the batch-fetched registry data for name.
func (s *Snapshot) Package(name string) (*deps.Package, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.Packages[name]
	return p, ok && p != nil
}

// Installed returns the lock file version of name, or "".
func (s *Snapshot) Installed(name string) string {
	if s == nil {
		return ""
	}
	return s.Lock.Installed(name)
}

// HasLock reports whether a lock file was read for this snapshot.
func (s *Snapshot) HasLock() bool {
	return s != nil && s.Lock != nil
}

func updateMessage(version string) string {
	return "Update available: " + version
}
