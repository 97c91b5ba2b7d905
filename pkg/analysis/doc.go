// Package analysis ties manifests, lock files and registry data together
// into the state behind editor features.
//
// An [Analyzer] keeps one immutable [Snapshot] per open document.
// [Analyzer.Refresh] runs on open and save:
//
//	parse manifest -> read lock -> fetch registry (batch) -> resolve -> publish
//
// Interactive queries ([Analyzer.Hover], [Analyzer.Definition],
// [Analyzer.Actions]) read the current snapshot's line index and issue at
// most one registry lookup; they never re-run the pipeline.
//
// Lookup misses are returned as coded errors (ErrCodeNoDependency,
// ErrCodePackageNotFound, ErrCodeNoRelease, ErrCodeNoDocument) that callers
// log instead of surfacing as failures.
package analysis
