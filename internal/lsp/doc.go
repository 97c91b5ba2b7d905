// Package lsp serves composer.json analysis to editors over the Language
// Server Protocol.
//
// [Server] decodes JSON-RPC 2.0 messages with go.lsp.dev/jsonrpc2 and maps
// them onto an [analysis.Analyzer]:
//
//   - didOpen / didSave: refresh and publish diagnostics
//   - didClose: drop the document and clear its diagnostics
//   - hover, definition, codeAction: query the current snapshot
//   - executeCommand: run composer install / update through a [Runner]
//
// Queries that find nothing to show reply null and leave a line in the
// client's log. With Options.WatchLocks set, a change to the composer.lock
// beside an open manifest triggers a refresh.
//
//	srv, err := lsp.NewServer(lsp.Options{Analyzer: a, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	return srv.Serve(ctx, lsp.Stdio())
//
// [analysis.Analyzer]: github.com/matzehuels/composer-lsp/pkg/analysis.Analyzer
package lsp
