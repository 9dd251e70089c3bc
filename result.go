package restconsumer

import (
	"encoding/json"
	"fmt"
)

// Result is the normalized body of a response: a parsed JSON value when the
// body is valid JSON, the raw text otherwise.
type Result struct {
	body       []byte
	value      any
	structured bool
}

// NewResult parses body into a Result.
func NewResult(body []byte) *Result {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return &Result{body: body}
	}
	return &Result{body: body, value: value, structured: true}
}

// IsStructured reports whether the body parsed as JSON.
func (r *Result) IsStructured() bool {
	return r.structured
}

// Structured returns the parsed value and true, or nil and false when the
// body was not JSON.
func (r *Result) Structured() (any, bool) {
	if !r.structured {
		return nil, false
	}
	return r.value, true
}

// Raw returns the body text of an unstructured result, or "" for a
// structured one.
func (r *Result) Raw() string {
	if r.structured {
		return ""
	}
	return string(r.body)
}

// Value returns the parsed value or the raw text, whichever the result holds.
func (r *Result) Value() any {
	if r.structured {
		return r.value
	}
	return string(r.body)
}

// Decode unmarshals a structured body into v.
func (r *Result) Decode(v any) error {
	if !r.structured {
		return fmt.Errorf("response is not JSON: %q", truncate(string(r.body), 64))
	}
	return json.Unmarshal(r.body, v)
}

func (r *Result) String() string {
	return string(r.body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
