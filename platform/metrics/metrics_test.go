package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.IncrSubmission("assessment", "accepted")
	m.IncrSubmission("assessment", "accepted")
	m.IncrCooldownRejection()
	m.ObserveScore(85, "elite")
	m.RecordWebhook("assessment", "delivered", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.submissions.WithLabelValues("assessment", "accepted")); got != 2 {
		t.Fatalf("expected 2 accepted submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.cooldownRejects); got != 1 {
		t.Fatalf("expected 1 cooldown rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.tierAssignments.WithLabelValues("elite")); got != 1 {
		t.Fatalf("expected 1 elite assignment, got %v", got)
	}
	if got := testutil.ToFloat64(m.webhookDeliveries.WithLabelValues("assessment", "delivered")); got != 1 {
		t.Fatalf("expected 1 delivered webhook, got %v", got)
	}
}

func TestMetrics_HandlerExposesRegistry(t *testing.T) {
	m := New()
	m.IncrSubmission("residential", "accepted")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `intake_submissions_total{form="residential",outcome="accepted"} 1`) {
		t.Fatalf("expected submission counter in exposition output")
	}
}
