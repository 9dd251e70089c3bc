package restconsumer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Param is one request parameter.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of request parameters. The order in which keys
// were added is the order they are written on the wire.
type Params []Param

// ParamsFromMap converts m into Params ordered by key.
func ParamsFromMap(m map[string]any) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := make(Params, 0, len(keys))
	for _, k := range keys {
		p = append(p, Param{Key: k, Value: m[k]})
	}
	return p
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// With returns a copy of p where key holds value. An existing key keeps its
// position; a new key is appended.
func (p Params) With(key string, value any) Params {
	out := make(Params, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Key: key, Value: value})
}

// WithDefault returns a copy of p with key appended only when p lacks it.
func (p Params) WithDefault(key string, value any) Params {
	if _, ok := p.Get(key); ok {
		return p
	}
	return p.With(key, value)
}

// Map returns p as a map.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, param := range p {
		m[param.Key] = param.Value
	}
	return m
}

// Encode renders p as "key=value&key=value" with query escaping.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(formatValue(param.Value)))
	}
	return sb.String()
}

// MarshalJSON encodes p as a JSON object, keys in order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(param.Value)
		if err != nil {
			return nil, fmt.Errorf("encode param %q: %w", param.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// escapedURL appends p to base as a query string.
func escapedURL(base string, p Params) string {
	if len(p) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + p.Encode()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
