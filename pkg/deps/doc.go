// Package deps provides the dependency model behind composer-lsp: declared
// dependencies with source positions, installed versions, registry releases,
// version constraints and update resolution.
//
// # Architecture
//
// The system has three layers:
//
//  1. Integrations ([integrations]): HTTP clients for registry APIs
//  2. Language definitions (this package and [php]): manifest parsers,
//     lock readers and registry fetchers
//  3. Analysis ([analysis]): per-document snapshots driving editor features
//
// # Manifests and Line Recovery
//
// A [ManifestParser] returns a [Manifest] whose dependencies carry the
// 0-based line they are declared on. The [LineIndex] built alongside maps a
// line back to a dependency name for cursor-positioned queries:
//
//	m, _ := parser.Parse("composer.json", nil)
//	name, ok := m.Lines.Lookup(12)
//
// # Resolving Updates
//
// [LatestUpdate] is a pure function over a release list:
//
//	v, ok := deps.LatestUpdate(pkg.Releases, "^2.0", "2.1.0")
//
// Constraints are parsed by [ParseConstraint]. Release versions are compared
// by semantic precedence, never lexically.
//
// # Registry Lookups
//
// [Registry] wraps a [Fetcher]. [Registry.FetchAll] fans out one lookup per
// name and joins them; a failing lookup is logged through [Options.Logger]
// and omitted. [Registry.Fetch] collapses concurrent lookups of one name.
//
// [integrations]: github.com/matzehuels/composer-lsp/pkg/integrations
// [php]: github.com/matzehuels/composer-lsp/pkg/deps/php
// [analysis]: github.com/matzehuels/composer-lsp/pkg/analysis
package deps
