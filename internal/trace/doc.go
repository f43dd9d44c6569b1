// Package trace records what a hintbook run spends its time on.
//
// A run is a tree of spans: the command itself, its stages (catalog load,
// hint rendering, cache write) and, at finer levels, one span per document
// with a point event for every reference. Spans travel in the context:
//
//	ctx = trace.WithTracer(ctx, t)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "load_catalog")
//	defer span.End("")
//
// Events go to a Stream sink (text, NDJSON or chrome://tracing JSON), to an
// in-memory Ring that is dumped when the command fails, or to both through
// Fanout. With tracing off every call is a cheap no-op.
package trace
