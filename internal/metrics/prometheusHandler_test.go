package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHttpStatusRecorder_CapturesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	r := &HttpStatusRecorder{ResponseWriter: rec, Status: http.StatusOK}

	r.WriteHeader(http.StatusTeapot)

	if r.Status != http.StatusTeapot {
		t.Errorf("expected recorded status 418, got %d", r.Status)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected underlying status 418, got %d", rec.Code)
	}
}

func TestCaptureTriageOutcome(t *testing.T) {
	before := promtest.ToFloat64(triageOutcomes.WithLabelValues("GAPS_FOUND"))
	CaptureTriageOutcome("GAPS_FOUND")
	after := promtest.ToFloat64(triageOutcomes.WithLabelValues("GAPS_FOUND"))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestCaptureChunksUpserted(t *testing.T) {
	before := promtest.ToFloat64(chunksUpserted.WithLabelValues("uploads"))
	CaptureChunksUpserted("uploads", 4)
	if got := promtest.ToFloat64(chunksUpserted.WithLabelValues("uploads")) - before; got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
}

func TestCaptureAgentStep(t *testing.T) {
	ok := promtest.ToFloat64(agentSteps.WithLabelValues("classifier", "ok"))
	failed := promtest.ToFloat64(agentSteps.WithLabelValues("classifier", "error"))

	CaptureAgentStep("classifier", nil)
	CaptureAgentStep("classifier", errors.New("boom"))

	if got := promtest.ToFloat64(agentSteps.WithLabelValues("classifier", "ok")) - ok; got != 1 {
		t.Errorf("expected one ok step, got %v", got)
	}
	if got := promtest.ToFloat64(agentSteps.WithLabelValues("classifier", "error")) - failed; got != 1 {
		t.Errorf("expected one failed step, got %v", got)
	}
}
