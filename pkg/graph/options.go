package graph

import (
	"io"
	"strings"
)

// Params carries the request options for a single call: parameter names
// mapped to scalars, string collections or *Upload values. Construct a
// fresh mapping per call; pagers mutate theirs for the lifetime of the
// iteration.
type Params map[string]any

// Upload tags a value as a file-like upload. During POST and PUT
// dispatches every Upload becomes a multipart file part and is removed
// from the form body.
type Upload struct {
	// Name is the filename reported in the multipart section.
	Name string

	// Reader supplies the file content. It is consumed once; uploads
	// are not replayed.
	Reader io.Reader
}

// normalize produces the wire-ready option mapping: collections whose
// every element is a string collapse to one comma-joined value, and the
// client's access token is injected as access_token, overwriting any
// caller-supplied value. All other values pass through untouched.
func (c *Client) normalize(params Params) Params {
	normalized := make(Params, len(params)+1)
	for key, value := range params {
		normalized[key] = flatten(value)
	}
	if c.accessToken != "" {
		normalized["access_token"] = c.accessToken
	}
	return normalized
}

// flatten joins a collection value when every element is a string.
// Mixed-type collections pass through unmodified.
func flatten(value any) any {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return value
			}
			parts[i] = s
		}
		return strings.Join(parts, ",")
	default:
		return value
	}
}
