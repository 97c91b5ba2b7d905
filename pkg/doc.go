// Package pkg provides the libraries behind composer-lsp.
//
// # Overview
//
// composer-lsp watches composer.json files in an editor and reports, per
// dependency line, whether Packagist has a newer release that satisfies the
// declared constraint. The pkg directory is organized by concern:
//
//  1. [deps] - Manifests, lock files, constraints and registry fan-out
//  2. [deps/php] - composer.json and composer.lock for the PHP ecosystem
//  3. [integrations] - Registry HTTP clients (Packagist)
//  4. [analysis] - Per-document snapshots, diagnostics, hover and definition
//  5. [errors], [httputil], [observability] - Shared infrastructure
//
// # Architecture
//
// The data flow on every save:
//
//	composer.json ──> [deps/php] parser ──> Manifest + LineIndex
//	composer.lock ──> [deps/php] lock reader ──> installed versions
//	     names    ──> [deps.Registry] ──> [integrations/packagist] (concurrent)
//	              ──> [deps.LatestUpdate] per dependency
//	              ──> [analysis.Snapshot] swapped in atomically
//
// Hover and definition queries read the current snapshot, fetch one package
// and render from it without re-running the pipeline.
//
// # Quick Start
//
//	registry, _ := php.Language.Registry("", deps.RegistryConfig{}, deps.Options{})
//	a, _ := analysis.New(analysis.Options{Language: php.Language, Registry: registry})
//
//	snap, err := a.Refresh(ctx, "/path/to/composer.json", nil)
//	if err != nil {
//	    return err
//	}
//	for _, d := range snap.Diagnostics {
//	    fmt.Printf("line %d: %s\n", d.Line+1, d.Message)
//	}
//
// [deps]: github.com/matzehuels/composer-lsp/pkg/deps
// [deps/php]: github.com/matzehuels/composer-lsp/pkg/deps/php
// [integrations]: github.com/matzehuels/composer-lsp/pkg/integrations
// [analysis]: github.com/matzehuels/composer-lsp/pkg/analysis
// [errors]: github.com/matzehuels/composer-lsp/pkg/errors
// [httputil]: github.com/matzehuels/composer-lsp/pkg/httputil
// [observability]: github.com/matzehuels/composer-lsp/pkg/observability
// [deps.Registry]: github.com/matzehuels/composer-lsp/pkg/deps.Registry
// [deps.LatestUpdate]: github.com/matzehuels/composer-lsp/pkg/deps.LatestUpdate
// [analysis.Snapshot]: github.com/matzehuels/composer-lsp/pkg/analysis.Snapshot
package pkg
