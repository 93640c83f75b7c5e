package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ServiceError
		expected string
	}{
		{
			name:     "with code",
			err:      &ServiceError{Message: "Invalid access token", Code: 190},
			expected: "graph: Invalid access token (code 190)",
		},
		{
			name:     "without code",
			err:      &ServiceError{Message: "could not get \"me\""},
			expected: "graph: could not get \"me\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOAuthError_AsServiceError(t *testing.T) {
	var err error = &OAuthError{ServiceError{Message: "token expired", Code: 190}}

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatal("OAuthError should resolve as *ServiceError")
	}
	if svcErr.Code != 190 {
		t.Errorf("Code = %d, want 190", svcErr.Code)
	}

	var oauthErr *OAuthError
	if !errors.As(err, &oauthErr) {
		t.Error("OAuthError should resolve as itself")
	}
}

func TestTransportError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &TransportError{URL: "https://example.com/me", Err: underlying}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should reach the wrapped transport error")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, should mention the cause", err.Error())
	}
	if !strings.Contains(err.Error(), "https://example.com/me") {
		t.Errorf("Error() = %q, should mention the URL", err.Error())
	}
}

func TestUnsupportedTypeError(t *testing.T) {
	err := unsupportedTypeError("foo")

	if !errors.Is(err, ErrUnsupportedSearchType) {
		t.Error("errors.Is should match ErrUnsupportedSearchType")
	}
	for _, typ := range SearchTypes {
		if !strings.Contains(err.Error(), typ) {
			t.Errorf("Error() = %q, should list %q", err.Error(), typ)
		}
	}
}

func TestErrorClass(t *testing.T) {
	if got := errorClass(&OAuthError{ServiceError{Message: "m"}}); got != "oauth" {
		t.Errorf("errorClass(OAuthError) = %q, want %q", got, "oauth")
	}
	if got := errorClass(&ServiceError{Message: "m"}); got != "service" {
		t.Errorf("errorClass(ServiceError) = %q, want %q", got, "service")
	}
}
