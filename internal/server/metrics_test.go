package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peakform/coach-go/internal/agent"
)

func Test_Metrics_EndpointReturns200(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	newServerMetrics(reg)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/metrics", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("want 200, got %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
}

// counterValue gathers reg and returns the value of the named counter metric
// carrying the given label pair, or -1 when absent.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

// Test_Metrics_CoachOutcomeCounters verifies that each coach handler outcome
// increments its own counter series.
func Test_Metrics_CoachOutcomeCounters(t *testing.T) {
	t.Parallel()

	a := &fakeAsker{result: validResult()}
	cfg := &Config{}
	s := newCoachTestServer(t, a, cfg)

	// One success, one validation error, one invalid output.
	postCoach(s, `{"question":"how do I improve my squat?","user_id":"`+testUserID+`"}`)
	postCoach(s, `{"question":"hi","user_id":"`+testUserID+`"}`)
	a.result = &agent.CoachResult{}
	postCoach(s, `{"question":"how do I improve my squat?","user_id":"`+testUserID+`"}`)

	const name = "coach_pipeline_requests_total"
	if got := counterValue(t, cfg.Registry, name, "outcome", "ok"); got != 1 {
		t.Errorf("want ok counter=1, got %v", got)
	}
	if got := counterValue(t, cfg.Registry, name, "outcome", "error"); got != 1 {
		t.Errorf("want error counter=1, got %v", got)
	}
	if got := counterValue(t, cfg.Registry, name, "outcome", "invalid_output"); got != 1 {
		t.Errorf("want invalid_output counter=1, got %v", got)
	}
}

// Test_Metrics_HTTPMiddleware verifies that the HTTP metrics middleware
// records requests under the matched pattern with the final status code.
func Test_Metrics_HTTPMiddleware(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	s := newCoachTestServer(t, &fakeAsker{result: validResult()}, cfg)

	h := s.httpMetrics(okHandler)
	req := httptest.NewRequest(http.MethodPost, "/api/coach", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := counterValue(t, cfg.Registry, "coach_http_requests_total", "code", "200"); got != 1 {
		t.Errorf("want http counter=1, got %v", got)
	}
}
