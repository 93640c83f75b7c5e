package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// BatchRequest is one entry of a combined request: an HTTP method, a
// URL relative to the API root and an optional body.
type BatchRequest struct {
	Method      string `json:"method"`
	RelativeURL string `json:"relative_url"`
	Body        string `json:"body,omitempty"`
}

// BatchResults demultiplexes a combined response back into individual
// results, positionally aligned with the submitted requests. It is a
// lazy, one-pass sequence.
type BatchResults struct {
	requests []BatchRequest
	entries  []any
	index    int
	current  Result
}

// Batch submits the requests as a single combined POST. Sub-responses
// carrying an error payload are yielded as Fault results with the
// originating request attached for correlation; absent or empty
// sub-responses yield Empty, which is legitimate and not an error.
func (c *Client) Batch(ctx context.Context, requests []BatchRequest) (*BatchResults, error) {
	encoded, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}

	result, err := c.Post(ctx, "", Params{"batch": string(encoded)})
	if err != nil {
		return nil, err
	}

	data, ok := result.(Data)
	if !ok {
		return nil, &ServiceError{Message: "unexpected batch response shape"}
	}
	entries, ok := data.Value.([]any)
	if !ok {
		return nil, &ServiceError{Message: "unexpected batch response shape"}
	}

	return &BatchResults{requests: requests, entries: entries}, nil
}

// Next advances to the result correlated with the following request.
func (b *BatchResults) Next() bool {
	if b.index >= len(b.requests) {
		return false
	}

	request := b.requests[b.index]
	var entry any
	if b.index < len(b.entries) {
		entry = b.entries[b.index]
	}
	b.index++

	b.current = demux(entry, request)
	return true
}

// Result returns the sub-result at the current position.
func (b *BatchResults) Result() Result {
	return b.current
}

// Request returns the outbound entry at the current position.
func (b *BatchResults) Request() BatchRequest {
	return b.requests[b.index-1]
}

// demux converts one inbound batch entry into a Result. Entries without
// a usable body map to Empty.
func demux(entry any, request BatchRequest) Result {
	m, ok := entry.(map[string]any)
	if !ok {
		return Empty{}
	}
	body, _ := m["body"].(string)
	if body == "" {
		return Empty{}
	}

	result := parse([]byte(body))
	if fault, ok := result.(Fault); ok {
		var svc *ServiceError
		if errors.As(fault.Err, &svc) {
			req := request
			svc.Request = &req
		}
	}
	return result
}
