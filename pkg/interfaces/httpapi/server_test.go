package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/supplyadvisor/pkg/application/services/advisory"
	"github.com/vsinha/supplyadvisor/pkg/application/services/alerts"
	"github.com/vsinha/supplyadvisor/pkg/application/services/criticalpath"
	"github.com/vsinha/supplyadvisor/pkg/application/services/forecasting"
	"github.com/vsinha/supplyadvisor/pkg/application/services/mrp"
	"github.com/vsinha/supplyadvisor/pkg/application/services/orchestration"
	testhelpers "github.com/vsinha/supplyadvisor/pkg/application/services/testing"
	"github.com/vsinha/supplyadvisor/pkg/infrastructure/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data := testhelpers.BuildCakeScenario()
	testhelpers.AddWeeklyUsage(data, testhelpers.Flour, testhelpers.ScenarioStart.AddDate(0, 0, -35),
		[]float64{10, 20, 30, 40, 50, 60})

	clock := func() time.Time { return testhelpers.ScenarioStart }
	sim := mrp.NewSimulator(logger, data,
		mrp.WithDeliveryRepository(data),
		mrp.WithSubstituteRepository(data),
		mrp.WithShortageDocumentRepository(data),
		mrp.WithClock(clock),
	)
	po := orchestration.NewPlanningOrchestrator(logger, data,
		forecasting.New(logger, forecasting.DefaultConfig()),
		sim,
		criticalpath.NewService(logger),
		alerts.NewService(logger, data, data, alerts.WithClock(clock)),
		advisory.NewAdvisor(logger, sim),
		orchestration.WithClock(clock),
	)

	m := metrics.New(metrics.DefaultConfig())
	return NewServer(logger, ":0", time.Second, po, WithMetrics(m))
}

func doRequest(t *testing.T, s *Server, method, target string, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/health", "", HeaderRequestID, "req-42")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get(HeaderRequestID); got != "req-42" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", body["status"])
	}
	if body["narrator"] != false {
		t.Errorf("Expected no narrator, got %v", body["narrator"])
	}
}

func TestServer_ProductEndpoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"basic simulation", http.MethodGet, "/api/v1/products/100/simulation?quantity=10", "", http.StatusOK, ""},
		{"delivery simulation", http.MethodGet, "/api/v1/products/100/simulation/delivery?quantity=50", "", http.StatusOK, ""},
		{"substitutes", http.MethodGet, "/api/v1/products/100/substitutes?quantity=50", "", http.StatusOK, ""},
		{"analysis", http.MethodGet, "/api/v1/products/100/analysis?quantity=50&top_paths=2", "", http.StatusOK, ""},
		{"bom tree", http.MethodGet, "/api/v1/products/100/bom-tree?quantity=1", "", http.StatusOK, ""},
		{"advice", http.MethodPost, "/api/v1/products/100/advice", `{"quantity":"50"}`, http.StatusOK, ""},
		{"missing quantity", http.MethodGet, "/api/v1/products/100/simulation", "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative quantity", http.MethodGet, "/api/v1/products/100/simulation?quantity=-1", "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad product id", http.MethodGet, "/api/v1/products/abc/simulation?quantity=1", "", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bom tree without technology", http.MethodGet, "/api/v1/products/200/bom-tree?quantity=1", "", http.StatusUnprocessableEntity, "MISSING_TECHNOLOGY"},
		{"unknown route", http.MethodGet, "/api/v1/nothing", "", http.StatusNotFound, "ROUTE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, tt.method, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode == "" {
				return
			}
			var resp APIErrorResponse
			decode(t, w, &resp)
			if resp.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, resp.Code)
			}
			if resp.RequestID == "" {
				t.Error("Expected generated request id in error response")
			}
		})
	}
}

func TestServer_Simulation_Body(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/v1/products/100/simulation/delivery?quantity=50", "")
	var body struct {
		Result struct {
			CanProduce          bool `json:"can_produce"`
			MaxDeliveryTimeDays int  `json:"max_delivery_time"`
		} `json:"result"`
		PurchasePlan    []map[string]any `json:"purchase_plan"`
		Recommendations string           `json:"recommendations"`
	}
	decode(t, w, &body)

	if body.Result.CanProduce {
		t.Error("Expected sugar shortage")
	}
	if body.Result.MaxDeliveryTimeDays != 14 {
		t.Errorf("Expected 14 days for sugar, got %d", body.Result.MaxDeliveryTimeDays)
	}
	if len(body.PurchasePlan) != 1 {
		t.Errorf("Expected one purchase suggestion, got %d", len(body.PurchasePlan))
	}
	if !strings.Contains(body.Recommendations, "SUGAR") {
		t.Errorf("Expected SUGAR in recommendations, got %q", body.Recommendations)
	}
}

func TestServer_Forecasts(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/v1/forecasts", `{"model":"baseline","weeks_ahead":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result struct {
		Points []struct {
			ProductID int64   `json:"TowarId"`
			Predicted float64 `json:"Predicted_Qty"`
		} `json:"forecast"`
	}
	decode(t, w, &result)
	if len(result.Points) != 3 {
		t.Fatalf("Expected 3 forecast points, got %d", len(result.Points))
	}
	if result.Points[0].Predicted != 45 {
		t.Errorf("Expected 45, got %v", result.Points[0].Predicted)
	}

	w = doRequest(t, s, http.MethodPost, "/api/v1/forecasts", `{"model":"prophet"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown model, got %d", w.Code)
	}
	var resp APIErrorResponse
	decode(t, w, &resp)
	if resp.Details["model"] != "model_type" {
		t.Errorf("Expected model detail, got %v", resp.Details)
	}

	w = doRequest(t, s, http.MethodGet, "/metrics", "")
	if !strings.Contains(w.Body.String(), `supplyadvisor_forecast_points_total{model="baseline"} 3`) {
		t.Error("Expected forecast points in metrics output")
	}
	if !strings.Contains(w.Body.String(), `path="/api/v1/forecasts"`) {
		t.Error("Expected route pattern label in metrics output")
	}
}

func TestServer_Alerts(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/v1/alerts?include_all=true&explain=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp alertsResponse
	decode(t, w, &resp)
	if resp.Summary.Total != len(resp.Alerts) {
		t.Errorf("Expected summary total %d, got %d", len(resp.Alerts), resp.Summary.Total)
	}
	if resp.LLMAvailable {
		t.Error("Expected no LLM explanation")
	}
	if resp.Brief == "" {
		t.Error("Expected alert brief")
	}
}
