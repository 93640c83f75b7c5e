package graph

import "encoding/json"

// Result is the outcome of parsing one Graph API response body. It is a
// closed variant: exactly one of Data, Raw, Fault or, for batch
// sub-responses only, Empty. Consumers discriminate with a type switch
// rather than by probing field presence.
type Result interface {
	isResult()
}

// Data holds a successfully decoded JSON value: a map, slice, string,
// number or boolean exactly as the decoder produced it.
type Data struct {
	Value any
}

// Raw holds a response body that was not valid JSON. Some endpoints
// legitimately return bare text; this is not an error.
type Raw struct {
	Text string
}

// Fault holds an error reported in the response payload. Err is either
// a *ServiceError or a *OAuthError.
type Fault struct {
	Err error
}

// Empty marks a batch sub-response that carried no content.
type Empty struct{}

func (Data) isResult()  {}
func (Raw) isResult()   {}
func (Fault) isResult() {}
func (Empty) isResult() {}

// parse converts a raw response body into a Result.
//
// The service reports errors in two shapes: {"error": {"type",
// "message", "code"}} and the legacy {"error_msg", "error_code"}.
// Mutating endpoints may answer with bare true/false instead of a
// structured body; those decode as plain Data and the facade decides
// what a bare false means.
func parse(body []byte) Result {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Raw{Text: string(body)}
	}

	if m, ok := decoded.(map[string]any); ok {
		if raw, present := m["error"]; present {
			if errObj, ok := raw.(map[string]any); ok {
				svc := ServiceError{
					Message: stringField(errObj, "message"),
					Code:    intField(errObj, "code"),
				}
				if stringField(errObj, "type") == "OAuthException" {
					return Fault{Err: &OAuthError{ServiceError: svc}}
				}
				return Fault{Err: &svc}
			}
		} else if _, present := m["error_msg"]; present {
			return Fault{Err: &ServiceError{
				Message: stringField(m, "error_msg"),
				Code:    intField(m, "error_code"),
			}}
		}
	}

	return Data{Value: decoded}
}

// nextPage extracts the next page cursor from a parsed result, or ""
// when the response carries none.
func nextPage(result Result) string {
	data, ok := result.(Data)
	if !ok {
		return ""
	}
	m, ok := data.Value.(map[string]any)
	if !ok {
		return ""
	}
	paging, ok := m["paging"].(map[string]any)
	if !ok {
		return ""
	}
	next, _ := paging["next"].(string)
	return next
}

// denied reports whether the service answered with a literal false, its
// convention for refused or inaccessible items.
func denied(result Result) bool {
	data, ok := result.(Data)
	if !ok {
		return false
	}
	b, ok := data.Value.(bool)
	return ok && !b
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) int {
	f, _ := m[key].(float64)
	return int(f)
}
