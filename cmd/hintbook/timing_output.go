package main

import (
	"fmt"
	"io"

	"hintbook/internal/observ"
	"hintbook/internal/pipeline"
	"hintbook/internal/source"
)

var timedStages = []struct {
	stage pipeline.Stage
	label string
}{
	{pipeline.StageLoad, "loaded"},
	{pipeline.StageRender, "rendered"},
	{pipeline.StageCache, "cached"},
	{pipeline.StageRewrite, "rewrote"},
}

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	for _, st := range timedStages {
		if !timings.Has(st.stage) {
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", st.label, observ.Millis(timings.Duration(st.stage)))
	}
}

// displayPath shortens path relative to base for summaries.
func displayPath(base, path string) string {
	if path == "" {
		return "(not written)"
	}
	if rel, err := source.RelativePath(path, base); err == nil {
		return rel
	}
	return path
}
