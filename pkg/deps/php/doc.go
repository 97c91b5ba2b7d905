// Package php implements [deps.Language] for PHP Composer projects.
//
// # Overview
//
// This package provides:
//
//   - composer.json parsing with per-dependency source positions
//   - composer.lock reading (packages and packages-dev)
//   - Packagist lookups via the [packagist] client
//
// # Manifest Parsing
//
//	parser, _ := php.Language.Manifest("/app/composer.json", deps.Options{})
//	m, _ := parser.Parse("/app/composer.json", nil)
//	for _, d := range m.Dependencies {
//	    fmt.Println(d.Line, d.Name, d.Constraint)
//	}
//
// Positions come from the byte offsets the JSON decoder reports for each
// key, so minified documents and nested values inside a require block are
// handled. Platform requirements (php, ext-*, lib-*, composer-*-api) are
// kept but flagged with [deps.Dependency].Platform so they are never sent
// to Packagist.
//
// # Registry
//
//	reg, _ := php.Language.Registry("", deps.RegistryConfig{}, deps.Options{})
//	pkgs := reg.FetchAll(ctx, m.Names())
//
// [packagist]: github.com/matzehuels/composer-lsp/pkg/integrations/packagist
// [deps.Language]: github.com/matzehuels/composer-lsp/pkg/deps.Language
// [deps.Dependency]: github.com/matzehuels/composer-lsp/pkg/deps.Dependency
package php
