package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Key identifies one cached Graph API response.
type Key struct {
	// Path is the request path relative to the API root.
	Path string

	// Params are the request parameters, minus the credential.
	Params map[string]string

	// Credential scopes the entry to one access token. It participates
	// as a digest and is never stored verbatim.
	Credential string
}

// String generates a deterministic cache key string.
// Format: graph:path:param1=val1:param2=val2:cred=digest
//
// Example:
//
//	graph:me/feed:limit=25:cred=9f86d081884c7d65
func (k Key) String() string {
	parts := []string{"graph"}

	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params[key]))
		}
	}

	if k.Credential != "" {
		digest := sha256.Sum256([]byte(k.Credential))
		parts = append(parts, "cred="+hex.EncodeToString(digest[:8]))
	}

	return strings.Join(parts, ":")
}
