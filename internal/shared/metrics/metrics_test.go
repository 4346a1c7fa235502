package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "help", snap)
	if !strings.Contains(buf.String(), "x_bucket{le=\"100\"} 2\n") {
		t.Fatalf("expected cumulative bucket, got:\n%s", buf.String())
	}
}

func TestRenderIncludesCounters(t *testing.T) {
	before := documentsUploadedTotal.Load()
	IncDocumentsUploaded()
	ObserveExtractionDurationMs(12.5)

	out := Render()
	for _, name := range []string{
		"documents_uploaded_total",
		"documents_deleted_total",
		"extraction_failed_total",
		"search_requests_total",
		"login_failed_total",
		"extraction_duration_ms_bucket{le=\"+Inf\"}",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
	if documentsUploadedTotal.Load() != before+1 {
		t.Fatalf("expected counter to advance")
	}
}
