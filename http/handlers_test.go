package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(handleHealth)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"status":"ok"}`
	if rr.Body.String() != expected+"\n" && rr.Body.String() != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(NewPredictor(&fakeClassifier{label: "B", proba: []float64{0.4, 0.6}}, "v1"), nil)

	doPredict(t, h, `{"title":"x"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{
		"docclassifier_http_requests_total",
		"docclassifier_predictions_total",
		"docclassifier_prediction_confidence",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath("/predict"); got != "/predict" {
		t.Fatalf("got %q", got)
	}
	if got := normalizePath("/random/123"); got != "other" {
		t.Fatalf("got %q", got)
	}
}
