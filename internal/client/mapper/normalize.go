// Package mapper converts server JSON into client domain models and back.
//
// Relations may arrive in several shapes: a flat object, a bare id, or an
// object wrapped as {"data": {"id": 1, "attributes": {...}}}. Normalize
// folds all of them into flat maps once, at the transport boundary.
package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Object is a normalized JSON object
type Object map[string]any

// Decode parses raw JSON with numbers kept exact and normalizes it
func Decode(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return Normalize(v), nil
}

// DecodeObject decodes a single object
func DecodeObject(raw json.RawMessage) (Object, error) {
	v, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

// DecodeList decodes a list of objects. null decodes to an empty list.
func DecodeList(raw json.RawMessage) ([]Object, error) {
	v, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []Object{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}
	out := make([]Object, 0, len(items))
	for _, item := range items {
		if obj, ok := asObject(item); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// Normalize unwraps {"data": ...} wrappers and merges {"id", "attributes"}
// pairs, recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if data, ok := t["data"]; ok && isWrapper(t) {
			return Normalize(data)
		}
		out := make(map[string]any, len(t))
		if attrs, ok := t["attributes"].(map[string]any); ok {
			for k, val := range attrs {
				out[k] = Normalize(val)
			}
			for k, val := range t {
				if k != "attributes" {
					out[k] = Normalize(val)
				}
			}
			return out
		}
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	default:
		return v
	}
}

// isWrapper reports whether m only carries data and meta
func isWrapper(m map[string]any) bool {
	for k := range m {
		if k != "data" && k != "meta" {
			return false
		}
	}
	return true
}

func asObject(v any) (Object, bool) {
	m, ok := v.(map[string]any)
	return Object(m), ok
}

func (o Object) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Relation returns the related object under the first present key. A bare id
// becomes {"id": id}.
func (o Object) Relation(keys ...string) (Object, bool) {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil, false
	}
	if obj, ok := asObject(v); ok {
		return obj, true
	}
	if id, ok := toInt64(v); ok {
		return Object{"id": json.Number(strconv.FormatInt(id, 10))}, true
	}
	return nil, false
}

// List returns the objects of an array field
func (o Object) List(keys ...string) []Object {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil
	}
	items, _ := v.([]any)
	out := make([]Object, 0, len(items))
	for _, item := range items {
		if obj, ok := asObject(item); ok {
			out = append(out, obj)
		}
	}
	return out
}

// String returns a string field, formatting numbers and bools
func (o Object) String(keys ...string) string {
	v, ok := o.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Int64 returns an integer field given as a number or a numeric string
func (o Object) Int64(keys ...string) int64 {
	v, _ := o.lookup(keys...)
	n, _ := toInt64(v)
	return n
}

// OptionalInt64 returns nil when the field is absent or not numeric
func (o Object) OptionalInt64(keys ...string) *int64 {
	v, ok := o.lookup(keys...)
	if !ok {
		return nil
	}
	n, ok := toInt64(v)
	if !ok {
		return nil
	}
	return &n
}

// Int returns an int field
func (o Object) Int(keys ...string) int {
	return int(o.Int64(keys...))
}

// Bool returns a bool field. "true"/"1" strings count as true.
func (o Object) Bool(keys ...string) bool {
	v, ok := o.lookup(keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	case json.Number:
		return t.String() != "0"
	}
	return false
}

// Decimal returns a money field given as a number or a numeric string.
// Anything else is zero.
func (o Object) Decimal(keys ...string) decimal.Decimal {
	v, ok := o.lookup(keys...)
	if !ok {
		return decimal.Zero
	}
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err == nil {
			return d
		}
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(t)
	}
	return decimal.Zero
}

// Time returns a timestamp field in RFC 3339 or YYYY-MM-DD form
func (o Object) Time(keys ...string) *time.Time {
	s := o.String(keys...)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	case float64:
		return int64(t), true
	}
	return 0, false
}
