// Package diag defines the diagnostic model shared by the catalog loader, the
// hint renderer, the cache writer and the reference substitution pass.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings such as a
//     reference to a hint that is missing from hints.toml.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not format or print anything. Rendering lives in
// internal/diagfmt; the pipeline decides which findings are fatal.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – numeric identifier with a stable string form (codes.go):
//     CAT catalog, RND renderer, CCH cache, REF references, OBS observability.
//   - Message – short, actionable text naming the key and document.
//   - Primary – source.Span in the document or catalog file.
//   - Notes – optional secondary locations.
//
// # Emitting diagnostics
//
// Producers hand a Diagnostic to a Reporter or chain through ReportBuilder
// (ReportWarning(r, ...).WithNote(...).Emit()). BagReporter aggregates into a
// Bag and is safe for the parallel directory host; DedupReporter drops
// repeats and counts them. FormatShortDiagnostics is the one line per
// finding form used by `hintbook check --format short` and golden tests.
package diag
