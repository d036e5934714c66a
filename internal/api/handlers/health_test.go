package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockChecker — мок ReadinessChecker.
type mockChecker struct {
	status, message string
}

func (m mockChecker) CheckReady() (status, message string) {
	return m.status, m.message
}

// TestHealthLive проверяет liveness probe.
func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil)
	w := httptest.NewRecorder()
	h.HealthLive(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	var resp healthLiveResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "bbcdr-report-service" {
		t.Errorf("resp = %+v", resp)
	}
}

// TestHealthReady проверяет readiness probe для разных состояний SPARQL endpoint.
func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		checker    ReadinessChecker
		wantCode   int
		wantStatus string
	}{
		{"ok", mockChecker{"ok", "SPARQL endpoint доступен"}, http.StatusOK, "ok"},
		{"degraded", mockChecker{"degraded", "нет boolean"}, http.StatusOK, "degraded"},
		{"fail", mockChecker{"fail", "connection refused"}, http.StatusServiceUnavailable, "fail"},
		{"nil checker", nil, http.StatusServiceUnavailable, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checker)
			w := httptest.NewRecorder()
			h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, ожидался %d", w.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.Checks.SPARQL.Status != tt.wantStatus {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

// TestOverallStatus проверяет агрегацию статусов.
func TestOverallStatus(t *testing.T) {
	if got := overallStatus("ok", "degraded"); got != "degraded" {
		t.Errorf("got %q", got)
	}
	if got := overallStatus("degraded", "fail"); got != "fail" {
		t.Errorf("got %q", got)
	}
	if got := overallStatus(); got != "ok" {
		t.Errorf("got %q", got)
	}
}
