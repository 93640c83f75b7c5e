// Package testutil provides testing utilities for the Graph API client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockGraph is a configurable mock Graph API server for testing.
type MockGraph struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	LastQuery    map[string][]string
	LastForm     map[string][]string
}

// NewMockGraph creates a new mock Graph API server.
func NewMockGraph() *MockGraph {
	mock := &MockGraph{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = r.URL.Query()
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			_ = r.ParseMultipartForm(1 << 20)
			_ = r.ParseForm()
			mock.LastForm = r.PostForm
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGraph) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGraph) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockGraph) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
	m.LastForm = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGraph) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed JSON response for a path.
func (m *MockGraph) SetResponse(path, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
}

// SetResponseSequence configures a path to serve the given bodies in
// order, repeating the last one once the sequence is exhausted. Useful
// for retry tests.
func (m *MockGraph) SetResponseSequence(path string, bodies ...string) {
	var mu sync.Mutex
	call := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := bodies[min(call, len(bodies)-1)]
		call++
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGraph) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// defaultHandler provides a default Graph-like response.
func (m *MockGraph) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"id": "0", "name": "default"}`))
}

// ErrorBody builds a structured Graph error payload.
func ErrorBody(errType, message string, code int) string {
	return fmt.Sprintf(`{"error": {"type": %q, "message": %q, "code": %d}}`, errType, message, code)
}

// LegacyErrorBody builds a legacy Graph error payload.
func LegacyErrorBody(message string, code int) string {
	return fmt.Sprintf(`{"error_msg": %q, "error_code": %d}`, message, code)
}

// PagedBody wraps a data payload with a next-page cursor. Pass "" to
// omit the paging field.
func PagedBody(data, next string) string {
	if next == "" {
		return fmt.Sprintf(`{"data": %s}`, data)
	}
	return fmt.Sprintf(`{"data": %s, "paging": {"next": %q}}`, data, next)
}
