// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains the shared HTTP plumbing used by the registry
// clients. Each registry has its own subpackage:
//
//   - [packagist]: PHP Composer packages
//
// # Client Pattern
//
// Registry clients embed [Client] and expose a FetchPackage method:
//
//	client := packagist.NewClient(packagist.Options{})
//	pkg, err := client.FetchPackage(ctx, "symfony/console")
//
// [Client] handles:
//   - Default request headers (User-Agent)
//   - Status mapping: 404 to [ErrNotFound], 5xx and 429 to retryable [ErrNetwork]
//   - Retry with exponential backoff via [httputil.Policy]
//   - HTTP hooks from [observability]
//
// Responses are not cached here. The analysis layer keeps the latest batch
// result per open document and nothing else.
//
// [packagist]: github.com/matzehuels/composer-lsp/pkg/integrations/packagist
// [httputil.Policy]: github.com/matzehuels/composer-lsp/pkg/httputil.Policy
// [observability]: github.com/matzehuels/composer-lsp/pkg/observability
package integrations
