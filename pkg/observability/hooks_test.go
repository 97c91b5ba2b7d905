package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Analysis hooks
	a := NoopAnalysisHooks{}
	a.OnRefreshStart(ctx, "/app/composer.json")
	a.OnRefreshComplete(ctx, "/app/composer.json", 12, 3, time.Second, nil)
	a.OnQuery(ctx, "hover", "/app/composer.json", 4, errors.New("no dependency"))

	// Registry hooks
	r := NoopRegistryHooks{}
	r.OnFetch(ctx, "packagist", "symfony/console", time.Second, nil)
	r.OnBatch(ctx, "packagist", 10, 9, time.Second)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "repo.packagist.org", "/p2/symfony/console.json")
	h.OnResponse(ctx, "GET", "repo.packagist.org", "/p2/symfony/console.json", 200, time.Second)
	h.OnError(ctx, "GET", "repo.packagist.org", "/p2/symfony/console.json", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Analysis() should return NoopAnalysisHooks by default")
	}
	if _, ok := Registry().(NoopRegistryHooks); !ok {
		t.Error("Registry() should return NoopRegistryHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customAnalysis := &testAnalysisHooks{}
	SetAnalysisHooks(customAnalysis)
	if Analysis() != customAnalysis {
		t.Error("SetAnalysisHooks should set custom hooks")
	}

	customRegistry := &testRegistryHooks{}
	SetRegistryHooks(customRegistry)
	if Registry() != customRegistry {
		t.Error("SetRegistryHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Reset() should restore NoopAnalysisHooks")
	}
	if _, ok := Registry().(NoopRegistryHooks); !ok {
		t.Error("Reset() should restore NoopRegistryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testAnalysisHooks{}
	SetAnalysisHooks(custom)

	SetAnalysisHooks(nil)
	SetRegistryHooks(nil)
	SetHTTPHooks(nil)

	if Analysis() != custom {
		t.Error("SetAnalysisHooks(nil) should be ignored")
	}
	if _, ok := Registry().(NoopRegistryHooks); !ok {
		t.Error("SetRegistryHooks(nil) should be ignored")
	}

	Reset()
}

type testAnalysisHooks struct{ NoopAnalysisHooks }
type testRegistryHooks struct{ NoopRegistryHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
