package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/socialgraph/graph-api-client/internal/testutil"
	"github.com/socialgraph/graph-api-client/pkg/graph"
)

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint_NoRedis(t *testing.T) {
	handler := readyHandler(nil)

	req := httptest.NewRequest("GET", "/ready", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Result().StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	// Creating a client registers all promauto collectors.
	if _, err := graph.New(graph.DefaultConfig("")); err != nil {
		t.Fatalf("Failed to create Graph client: %v", err)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	promhttp.Handler().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
}

func TestGraphHandler(t *testing.T) {
	mock := testutil.NewMockGraph()
	defer mock.Close()

	mock.SetResponse("/me", `{"id": "1", "name": "Herc"}`)

	cfg := graph.DefaultConfig("token")
	cfg.URL = mock.URL()
	client, err := graph.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create Graph client: %v", err)
	}

	handler := graphHandler(client)

	req := httptest.NewRequest("GET", "/graph/me", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(body))
	}

	if !strings.Contains(string(body), `"name":"Herc"`) {
		t.Errorf("Unexpected body: %s", string(body))
	}
}

func TestGraphHandler_ServiceError(t *testing.T) {
	mock := testutil.NewMockGraph()
	defer mock.Close()

	mock.SetResponse("/private", testutil.ErrorBody("OAuthException", "token expired", 190))

	cfg := graph.DefaultConfig("token")
	cfg.URL = mock.URL()
	cfg.MaxRetries = 1
	client, err := graph.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create Graph client: %v", err)
	}

	handler := graphHandler(client)

	req := httptest.NewRequest("GET", "/graph/private", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Result().StatusCode)
	}
}
