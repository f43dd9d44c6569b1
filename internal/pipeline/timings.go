package pipeline

import (
	"encoding/json"
	"fmt"

	"hintbook/internal/diag"
	"hintbook/internal/observ"
	"hintbook/internal/source"
)

// TimingPayload is the JSON note of an OBS6001 diagnostic.
type TimingPayload struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	observ.Report
}

// AppendTimingDiagnostic adds report to bag as an info diagnostic whose note
// holds the JSON payload. The bag limit does not apply: timings are only
// collected when asked for.
func AppendTimingDiagnostic(bag *diag.Bag, kind, path string, report observ.Report) {
	if bag == nil {
		return
	}
	if kind == "" {
		kind = "pipeline"
	}
	data, err := json.Marshal(TimingPayload{Kind: kind, Path: path, Report: report})
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", kind, report.TotalMS)
	if path != "" {
		msg += ", " + path
	}
	bag.AddUnbounded(diag.New(diag.SevInfo, diag.ObsTimings, source.NoSpan, msg).WithNote(source.NoSpan, string(data)))
}
