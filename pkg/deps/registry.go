package deps

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/composer-lsp/pkg/observability"
)

// Fetcher retrieves the releases of one package from a registry.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (*Package, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, name string) (*Package, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, name string) (*Package, error) {
	return f(ctx, name)
}

// Registry wraps a Fetcher with concurrent batch lookups and deduplicated
// single lookups. It keeps no cache of its own.
type Registry struct {
	name    string
	fetcher Fetcher
	opts    Options
	group   singleflight.Group
}

// NewRegistry creates a Registry that looks packages up with fetcher.
func NewRegistry(name string, fetcher Fetcher, opts Options) *Registry {
	return &Registry{name: name, fetcher: fetcher, opts: opts.WithDefaults()}
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Fetch looks up a single package. Concurrent lookups of the same name share
// one request.
func (r *Registry) Fetch(ctx context.Context, name string) (*Package, error) {
	v, err, _ := r.group.Do(name, func() (any, error) {
		start := time.Now()
		pkg, err := r.fetcher.Fetch(ctx, name)
		observability.Registry().OnFetch(ctx, r.name, name, time.Since(start), err)
		return pkg, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Package), nil
}

// FetchAll looks up every distinct name concurrently and waits for all of
// them. Failed lookups are logged and left out of the result; they never
// abort the batch. The result is keyed by package name.
func (r *Registry) FetchAll(ctx context.Context, names []string) map[string]*Package {
	start := time.Now()
	var (
		mu  sync.Mutex
		out = make(map[string]*Package, len(names))
	)

	g, gctx := errgroup.WithContext(ctx)
	if r.opts.MaxConcurrency > 0 {
		g.SetLimit(r.opts.MaxConcurrency)
	}

	seen := make(map[string]bool, len(names))
	requested := 0
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		requested++

		g.Go(func() error {
			pkg, err := r.Fetch(gctx, name)
			if err != nil {
				r.opts.Logger("fetch failed: %s: %v", name, err)
				return nil
			}
			if pkg == nil {
				return nil
			}
			mu.Lock()
			out[name] = pkg
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	observability.Registry().OnBatch(ctx, r.name, requested, len(out), time.Since(start))
	return out
}
