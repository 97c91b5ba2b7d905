// Package observability lets a host process watch what composer-lsp does
// without the library packages depending on a metrics or tracing backend.
//
// Three hook sets exist, one per layer: [AnalysisHooks] for document
// refreshes and editor queries, [RegistryHooks] for package lookups and
// [HTTPHooks] for raw registry requests. Each defaults to a no-op and can be
// replaced once at startup:
//
//	observability.SetRegistryHooks(myRegistryHooks{})
//
// Library code fetches the current set at the call site:
//
//	observability.Registry().OnFetch(ctx, "packagist", name, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// AnalysisHooks receives events from the analysis orchestrator.
type AnalysisHooks interface {
	OnRefreshStart(ctx context.Context, path string)
	OnRefreshComplete(ctx context.Context, path string, dependencies, updates int, duration time.Duration, err error)

	// OnQuery records a hover, definition or code action request.
	OnQuery(ctx context.Context, kind, path string, line int, err error)
}

// RegistryHooks receives events from registry lookups.
type RegistryHooks interface {
	OnFetch(ctx context.Context, registry, pkg string, duration time.Duration, err error)
	// OnBatch records a FetchAll; fetched counts the packages that resolved.
	OnBatch(ctx context.Context, registry string, requested, fetched int, duration time.Duration)
}

// HTTPHooks receives events from the registry HTTP client.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure; status errors go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnRefreshStart(context.Context, string) {}
func (NoopAnalysisHooks) OnRefreshComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopAnalysisHooks) OnQuery(context.Context, string, string, int, error) {}

type NoopRegistryHooks struct{}

func (NoopRegistryHooks) OnFetch(context.Context, string, string, time.Duration, error) {}
func (NoopRegistryHooks) OnBatch(context.Context, string, int, int, time.Duration)      {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook set.
type slot[T any] struct {
	mu  sync.RWMutex
	cur T
	def T
}

func newSlot[T any](def T) *slot[T] { return &slot[T]{cur: def, def: def} }

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *slot[T]) set(v T) {
	s.mu.Lock()
	s.cur = v
	s.mu.Unlock()
}

func (s *slot[T]) reset() { s.set(s.def) }

var (
	analysisSlot = newSlot[AnalysisHooks](NoopAnalysisHooks{})
	registrySlot = newSlot[RegistryHooks](NoopRegistryHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetAnalysisHooks replaces the analysis hooks. nil is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	if h != nil {
		analysisSlot.set(h)
	}
}

// SetRegistryHooks replaces the registry hooks. nil is ignored.
func SetRegistryHooks(h RegistryHooks) {
	if h != nil {
		registrySlot.set(h)
	}
}

// SetHTTPHooks replaces the HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

func Analysis() AnalysisHooks { return analysisSlot.get() }
func Registry() RegistryHooks { return registrySlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	analysisSlot.reset()
	registrySlot.reset()
	httpSlot.reset()
}
