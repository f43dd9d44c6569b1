package source

import (
	"math"
	"testing"
)

func TestSpanOf(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		end     int
		want    Span
		wantErr bool
	}{
		{name: "simple range", start: 4, end: 10, want: Span{File: 3, Start: 4, End: 10}},
		{name: "empty range", start: 7, end: 7, want: Span{File: 3, Start: 7, End: 7}},
		{name: "negative start", start: -1, end: 2, wantErr: true},
		{name: "end before start", start: 5, end: 2, wantErr: true},
		{name: "end overflows uint32", start: 0, end: math.MaxUint32 + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpanOf(3, tt.start, tt.end)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got span %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SpanOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanLenAndString(t *testing.T) {
	span := Span{File: 0, Start: 5, End: 25}
	if span.Len() != 20 {
		t.Errorf("Len() = %d, want 20", span.Len())
	}
	if got := span.String(); got != "0:5-25" {
		t.Errorf("String() = %q, want %q", got, "0:5-25")
	}
}
