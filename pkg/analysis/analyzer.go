package analysis

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/composer-lsp/pkg/deps"
	"github.com/matzehuels/composer-lsp/pkg/errors"
	"github.com/matzehuels/composer-lsp/pkg/observability"
)

// Options configures an Analyzer.
type Options struct {
	Language       *deps.Language // Manifest parsers and lock reader (required)
	Registry       *deps.Registry // Registry lookups (required)
	Severity       Severity       // Diagnostic severity (default: warning)
	RefreshTimeout time.Duration  // Bound on one refresh's registry batch (0: none)
	Logger         *log.Logger    // Defaults to log.Default()
}

// Analyzer owns the analysis state of every open document and answers
// editor queries from it.
//
// Each document has one slot holding an immutable *Snapshot. A refresh
// builds a complete Snapshot off to the side and publishes it with a single
// assignment, so a concurrent query sees either the old state or the new
// state, never a mix. The mutex guards only the slot map.
//
// Refreshes of one document may overlap. Each takes a sequence number when
// it starts, and a snapshot only replaces one with a lower number, so the
// refresh that started last always wins.
type Analyzer struct {
	mu     sync.RWMutex
	docs   map[string]*Snapshot
	closed map[string]uint64 // sequence at Close, until the next publish
	seq    atomic.Uint64

	parsers  []deps.ManifestParser
	lock     deps.LockReader
	registry *deps.Registry
	severity Severity
	timeout  time.Duration
	logger   *log.Logger
}

// New creates an Analyzer.
func New(opts Options) (*Analyzer, error) {
	if opts.Language == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "analysis: language is required")
	}
	if opts.Registry == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "analysis: registry is required")
	}
	if opts.Severity == 0 {
		opts.Severity = SeverityWarning
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	logf := func(format string, args ...any) { opts.Logger.Debugf(format, args...) }
	depOpts := deps.Options{Logger: logf}
	return &Analyzer{
		docs:     make(map[string]*Snapshot),
		closed:   make(map[string]uint64),
		parsers:  opts.Language.ManifestParsers(depOpts),
		lock:     opts.Language.Lock(depOpts),
		registry: opts.Registry,
		severity: opts.Severity,
		timeout:  opts.RefreshTimeout,
		logger:   opts.Logger,
	}, nil
}

// Supports reports whether path names a manifest this Analyzer handles.
func (a *Analyzer) Supports(path string) bool {
	_, err := deps.DetectManifest(path, a.parsers...)
	return err == nil
}

// Snapshot returns the current snapshot of path.
func (a *Analyzer) Snapshot(path string) (*Snapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.docs[path]
	return s, ok
}

// Current reports whether s is the snapshot held for its document. A
// refresh overtaken by a newer one returns a snapshot that is not current.
func (a *Analyzer) Current(s *Snapshot) bool {
	if s == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.docs[s.Path] == s
}

// Close drops the state of path. Refreshes still in flight for path are
// discarded when they finish.
func (a *Analyzer) Close(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.docs, path)
	a.closed[path] = a.seq.Load()
}

// publish stores s unless a refresh that started later has already been
// stored, or the document was closed after s started.
func (a *Analyzer) publish(s *Snapshot) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.docs[s.Path]; ok && cur.seq > s.seq {
		return false
	}
	if at, ok := a.closed[s.Path]; ok {
		if s.seq <= at {
			return false
		}
		delete(a.closed, s.Path)
	}
	a.docs[s.Path] = s
	return true
}

// Refresh runs the full pipeline for path: parse the manifest, read the
// lock file, fetch every registry package, resolve updates and publish a
// new Snapshot with one diagnostic per available update.
//
// When content is nil the manifest is read from disk. A path that is not a
// manifest returns an ErrCodeNotManifest error and leaves all state alone.
// An undecodable manifest publishes an empty snapshot, which clears the
// document's diagnostics.
//
// When a newer refresh of path has already been stored, the returned
// snapshot is discarded; see [Analyzer.Current].
func (a *Analyzer) Refresh(ctx context.Context, path string, content []byte) (*Snapshot, error) {
	parser, err := deps.DetectManifest(path, a.parsers...)
	if err != nil {
		return nil, err
	}

	hooks := observability.Analysis()
	hooks.OnRefreshStart(ctx, path)
	start := time.Now()

	snap := &Snapshot{
		seq:       a.seq.Add(1),
		Path:      path,
		RefreshID: uuid.NewString(),
		Packages:  map[string]*deps.Package{},
	}
	logger := a.logger.With("refresh", snap.RefreshID[:8], "path", path)

	manifest, err := parser.Parse(path, content)
	if err != nil {
		logger.Warn("manifest unreadable, clearing diagnostics", "err", err)
		snap.Manifest = &deps.Manifest{Path: path, Lines: deps.NewLineIndex(nil)}
		snap.CreatedAt = time.Now()
		if !a.publish(snap) {
			logger.Debug("superseded by a newer refresh")
		}
		hooks.OnRefreshComplete(ctx, path, 0, 0, time.Since(start), err)
		return snap, nil
	}
	snap.Manifest = manifest

	lock, err := a.lock.Read(path)
	if err != nil {
		logger.Warn("lock file unreadable, treating as absent", "err", err)
		lock = nil
	}
	snap.Lock = lock

	fetchCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	names := manifest.Names()
	fetchStart := time.Now()
	snap.Packages = a.registry.FetchAll(fetchCtx, names)
	logger.Debug("fetched packages",
		"requested", len(names),
		"fetched", len(snap.Packages),
		"duration", time.Since(fetchStart).Round(time.Millisecond))
	if missing := missingPackages(names, snap.Packages); len(missing) > 0 {
		logger.Warn("registry lookup failed", "packages", missing)
	}

	snap.Diagnostics = a.diagnose(manifest, lock, snap.Packages)
	snap.CreatedAt = time.Now()
	if !a.publish(snap) {
		logger.Debug("superseded by a newer refresh")
		hooks.OnRefreshComplete(ctx, path, len(manifest.Dependencies), len(snap.Diagnostics), time.Since(start), nil)
		return snap, nil
	}

	logger.Info("refreshed",
		"dependencies", len(manifest.Dependencies),
		"updates", len(snap.Diagnostics),
		"duration", time.Since(start).Round(time.Millisecond))
	hooks.OnRefreshComplete(ctx, path, len(manifest.Dependencies), len(snap.Diagnostics), time.Since(start), nil)
	return snap, nil
}

func (a *Analyzer) diagnose(m *deps.Manifest, lock *deps.Lock, pkgs map[string]*deps.Package) []Diagnostic {
	var out []Diagnostic
	for _, d := range m.Dependencies {
		if d.Name == "" {
			continue
		}
		pkg, ok := pkgs[d.Name]
		if !ok || pkg == nil {
			continue
		}
		version, ok := deps.LatestUpdate(pkg.Releases, d.Constraint, lock.Installed(d.Name))
		if !ok {
			continue
		}
		out = append(out, Diagnostic{
			Line:        d.Line,
			StartColumn: d.Column,
			EndColumn:   d.EndColumn,
			Severity:    a.severity,
			Message:     updateMessage(version),
			Package:     d.Name,
			Version:     version,
		})
	}
	return out
}

// missingPackages returns the names a batch lookup did not resolve, sorted.
func missingPackages(names []string, got map[string]*deps.Package) []string {
	var out []string
	for _, n := range names {
		if _, ok := got[n]; !ok {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
