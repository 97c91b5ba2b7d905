package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/composer-lsp/pkg/observability"
)

// traceHooks logs registry and HTTP events at debug level.
type traceHooks struct {
	logger *log.Logger
}

func (h traceHooks) OnFetch(_ context.Context, registry, pkg string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "registry", registry, "package", pkg, "took", d, "err", err)
		return
	}
	h.logger.Debug("fetched", "registry", registry, "package", pkg, "took", d)
}

func (h traceHooks) OnBatch(_ context.Context, registry string, requested, fetched int, d time.Duration) {
	h.logger.Debug("batch fetched", "registry", registry, "requested", requested, "fetched", fetched, "took", d)
}

func (h traceHooks) OnRequest(context.Context, string, string, string) {}

func (h traceHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http", "method", method, "url", host+path, "status", status, "took", d)
}

func (h traceHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http failed", "method", method, "url", host+path, "err", err)
}

// installTraceHooks routes registry and HTTP events to logger when it logs
// at debug level.
func installTraceHooks(logger *log.Logger) bool {
	if logger.GetLevel() > log.DebugLevel {
		return false
	}
	h := traceHooks{logger: logger}
	observability.SetRegistryHooks(h)
	observability.SetHTTPHooks(h)
	return true
}
