package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/cadence/pkg/metrics"
)

func TestNewIsolatedRegistries(t *testing.T) {
	a := metrics.New()
	b := metrics.New()

	a.BenchmarkRuns.WithLabelValues("ok").Inc()

	if got := testutil.ToFloat64(a.BenchmarkRuns.WithLabelValues("ok")); got != 1 {
		t.Errorf("registry a: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.BenchmarkRuns.WithLabelValues("ok")); got != 0 {
		t.Errorf("registry b: got %v, want 0", got)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := metrics.New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for range 3 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/campaigns/x", nil))
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("get", "404")); got != 3 {
		t.Errorf("requests_total: got %v, want 3", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := metrics.New()
	m.CampaignsClassified.Add(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cadence_taxonomy_campaigns_classified_total 2") {
		t.Error("classified counter missing from exposition")
	}
}
