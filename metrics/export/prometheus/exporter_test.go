package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	accountkit "github.com/fbinvest/accountkit"
)

type fakeSource struct {
	snapshot accountkit.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() accountkit.MetricsSnapshot {
	return f.snapshot
}

func (f *fakeSource) AuditDropped() uint64 {
	return f.dropped
}

func TestRenderCounters(t *testing.T) {
	source := &fakeSource{
		snapshot: accountkit.MetricsSnapshot{
			Counters: map[accountkit.MetricID]uint64{
				accountkit.MetricRegisterSuccess: 7,
				accountkit.MetricLoginFailure:    3,
			},
			Histograms: map[accountkit.MetricID][]uint64{},
		},
		dropped: 2,
	}

	out := NewPrometheusExporterFromSource(source).Render()

	for _, want := range []string{
		"# TYPE accountkit_register_success_total counter",
		"accountkit_register_success_total 7",
		"accountkit_login_failure_total 3",
		"accountkit_audit_dropped_total 2",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistogramCumulative(t *testing.T) {
	source := &fakeSource{
		snapshot: accountkit.MetricsSnapshot{
			Counters: map[accountkit.MetricID]uint64{},
			Histograms: map[accountkit.MetricID][]uint64{
				accountkit.MetricLoginLatency: {1, 2, 0, 0, 0, 0, 0, 1},
			},
		},
	}

	out := NewPrometheusExporterFromSource(source).Render()

	for _, want := range []string{
		"# TYPE accountkit_login_latency_seconds histogram",
		`accountkit_login_latency_seconds_bucket{le="0.005"} 1`,
		`accountkit_login_latency_seconds_bucket{le="0.01"} 3`,
		`accountkit_login_latency_seconds_bucket{le="+Inf"} 4`,
		"accountkit_login_latency_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	source := &fakeSource{
		snapshot: accountkit.MetricsSnapshot{
			Counters:   map[accountkit.MetricID]uint64{},
			Histograms: map[accountkit.MetricID][]uint64{},
		},
	}

	if out := NewPrometheusExporterFromSource(source).Render(); out != "" {
		t.Fatalf("expected empty render for empty source, got:\n%s", out)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	source := &fakeSource{
		snapshot: accountkit.MetricsSnapshot{
			Counters: map[accountkit.MetricID]uint64{
				accountkit.MetricAccountDeleted: 1,
			},
			Histograms: map[accountkit.MetricID][]uint64{},
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	NewPrometheusExporterFromSource(source).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "accountkit_account_deleted_total 1") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}
