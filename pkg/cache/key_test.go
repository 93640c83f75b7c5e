package cache

import (
	"strings"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		expected string
	}{
		{
			name:     "path only",
			key:      Key{Path: "me/feed"},
			expected: "graph:me/feed",
		},
		{
			name:     "leading and trailing slashes trimmed",
			key:      Key{Path: "/me/feed/"},
			expected: "graph:me/feed",
		},
		{
			name: "params sorted",
			key: Key{
				Path:   "search",
				Params: map[string]string{"type": "post", "limit": "25", "q": "go"},
			},
			expected: "graph:search:limit=25:q=go:type=post",
		},
		{
			name:     "empty path",
			key:      Key{},
			expected: "graph",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Path:       "me/feed",
		Params:     map[string]string{"limit": "25", "fields": "id,name"},
		Credential: "token",
	}

	first := key.String()
	for i := 0; i < 10; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q != %q", got, first)
		}
	}
}

func TestKey_CredentialDigested(t *testing.T) {
	key := Key{Path: "me", Credential: "very-secret-token"}
	s := key.String()

	if strings.Contains(s, "very-secret-token") {
		t.Error("cache key must not contain the raw credential")
	}
	if !strings.Contains(s, "cred=") {
		t.Error("cache key should scope by credential digest")
	}

	other := Key{Path: "me", Credential: "another-token"}
	if other.String() == s {
		t.Error("different credentials must produce different keys")
	}
}
