package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedSearchType is returned by Search when the requested
// object type is outside the accepted set. No network call is made.
var ErrUnsupportedSearchType = errors.New("unsupported search type")

// SearchTypes is the set of object types accepted by Search.
var SearchTypes = []string{"post", "user", "page", "event", "group", "place", "checkin"}

// ServiceError is an error reported by the Graph API's own payload, as
// opposed to a transport-layer failure.
type ServiceError struct {
	// Message is the human-readable error description from the service.
	Message string

	// Code is the numeric error code, or 0 when the service supplied none.
	Code int

	// Request is the originating batch entry when the error surfaced
	// inside a combined response, nil otherwise.
	Request *BatchRequest
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("graph: %s (code %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("graph: %s", e.Message)
}

// OAuthError is a ServiceError whose type indicates an authentication or
// authorization failure. It is a refinement, not a separate code path:
// errors.As resolves it as a *ServiceError too.
type OAuthError struct {
	ServiceError
}

// Unwrap exposes the embedded ServiceError for errors.Is/As.
func (e *OAuthError) Unwrap() error {
	return &e.ServiceError
}

// TransportError wraps a network-level failure (connection error,
// timeout, DNS failure). The underlying transport error never leaks
// undecorated.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("graph: request to %s failed: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

func unsupportedTypeError(typ string) error {
	return fmt.Errorf("%w %q; supported types are %s",
		ErrUnsupportedSearchType, typ, strings.Join(SearchTypes, ", "))
}

// errorClass categorizes a service-reported error for observability.
func errorClass(err error) string {
	var oauthErr *OAuthError
	if errors.As(err, &oauthErr) {
		return "oauth"
	}
	return "service"
}
