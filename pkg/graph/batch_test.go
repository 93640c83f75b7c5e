package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBatch_Correlation(t *testing.T) {
	var gotBatch []BatchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if err := json.Unmarshal([]byte(r.PostForm.Get("batch")), &gotBatch); err != nil {
			t.Errorf("batch parameter did not decode: %v", err)
		}

		// Positional responses: ok, empty, error.
		w.Write([]byte(`[
			{"code": 200, "body": "{\"id\": \"1\"}"},
			null,
			{"code": 400, "body": "{\"error\": {\"message\": \"broken\", \"code\": 7}}"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "token")

	requests := []BatchRequest{
		{Method: "GET", RelativeURL: "me"},
		{Method: "DELETE", RelativeURL: "post_1"},
		{Method: "POST", RelativeURL: "me/feed", Body: "message=hi"},
	}

	results, err := client.Batch(context.Background(), requests)
	if err != nil {
		t.Fatalf("Batch() failed: %v", err)
	}

	if len(gotBatch) != 3 || gotBatch[2].Body != "message=hi" {
		t.Errorf("outbound batch = %#v", gotBatch)
	}

	var yielded []Result
	for results.Next() {
		yielded = append(yielded, results.Result())
	}

	if len(yielded) != 3 {
		t.Fatalf("got %d results, want 3", len(yielded))
	}

	if _, ok := yielded[0].(Data); !ok {
		t.Errorf("result 1 = %T, want Data", yielded[0])
	}

	if _, ok := yielded[1].(Empty); !ok {
		t.Errorf("result 2 = %T, want Empty", yielded[1])
	}

	fault, ok := yielded[2].(Fault)
	if !ok {
		t.Fatalf("result 3 = %T, want Fault", yielded[2])
	}
	var svcErr *ServiceError
	if !errors.As(fault.Err, &svcErr) {
		t.Fatalf("Fault.Err = %T, want *ServiceError", fault.Err)
	}
	if svcErr.Request == nil {
		t.Fatal("fault should carry the originating request")
	}
	if svcErr.Request.RelativeURL != "me/feed" {
		t.Errorf("Request.RelativeURL = %q, want %q", svcErr.Request.RelativeURL, "me/feed")
	}
}

func TestBatch_OAuthFaultCarriesRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"body": "{\"error\": {\"type\": \"OAuthException\", \"message\": \"expired\", \"code\": 190}}"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "token")

	results, err := client.Batch(context.Background(), []BatchRequest{
		{Method: "GET", RelativeURL: "me"},
	})
	if err != nil {
		t.Fatalf("Batch() failed: %v", err)
	}

	if !results.Next() {
		t.Fatal("expected one result")
	}
	fault, ok := results.Result().(Fault)
	if !ok {
		t.Fatalf("result = %T, want Fault", results.Result())
	}

	var oauthErr *OAuthError
	if !errors.As(fault.Err, &oauthErr) {
		t.Fatalf("Fault.Err = %T, want *OAuthError", fault.Err)
	}

	var svcErr *ServiceError
	if !errors.As(fault.Err, &svcErr) {
		t.Fatal("OAuth fault should also resolve as *ServiceError")
	}
	if svcErr.Request == nil || svcErr.Request.RelativeURL != "me" {
		t.Errorf("Request = %#v, want the originating entry", svcErr.Request)
	}
}

func TestBatch_MissingTrailingEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"body": "{\"ok\": true}"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "token")

	results, err := client.Batch(context.Background(), []BatchRequest{
		{Method: "GET", RelativeURL: "a"},
		{Method: "GET", RelativeURL: "b"},
	})
	if err != nil {
		t.Fatalf("Batch() failed: %v", err)
	}

	var yielded []Result
	for results.Next() {
		yielded = append(yielded, results.Result())
	}

	if len(yielded) != 2 {
		t.Fatalf("got %d results, want one per request", len(yielded))
	}
	if _, ok := yielded[1].(Empty); !ok {
		t.Errorf("missing inbound entry should yield Empty, got %T", yielded[1])
	}
}

func TestBatch_PostFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`false`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "token")

	_, err := client.Batch(context.Background(), []BatchRequest{{Method: "GET", RelativeURL: "me"}})
	if err == nil {
		t.Fatal("Expected error when the combined POST is denied")
	}
}

func TestBatch_UnexpectedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "token")

	_, err := client.Batch(context.Background(), []BatchRequest{{Method: "GET", RelativeURL: "me"}})
	if err == nil {
		t.Fatal("Expected error for a non-list batch response")
	}
}
