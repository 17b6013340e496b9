// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package event

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mdstudio/mdstudio/internal/script"
)

// Args holds a node's field values after validation against its kind's schema.
// Scalars are int, string or bool; event-list fields hold nested nodes.
type Args struct {
	nodeID string
	values map[string]any
	lists  map[string][]script.Node
}

// NewArgs builds Args directly. Resolve is the normal constructor.
func NewArgs(nodeID string, values map[string]any, lists map[string][]script.Node) Args {
	if values == nil {
		values = map[string]any{}
	}
	if lists == nil {
		lists = map[string][]script.Node{}
	}
	return Args{nodeID: nodeID, values: values, lists: lists}
}

// NodeID returns the id of the node the arguments belong to.
func (a Args) NodeID() string { return a.nodeID }

// Int returns a number field.
func (a Args) Int(key string) int {
	v, _ := a.values[key].(int)
	return v
}

// String returns a text, select or reference field.
func (a Args) String(key string) string {
	v, _ := a.values[key].(string)
	return v
}

// Bool returns a boolean field.
func (a Args) Bool(key string) bool {
	v, _ := a.values[key].(bool)
	return v
}

// Events returns an event-list field. Missing lists are nil.
func (a Args) Events(key string) []script.Node {
	return a.lists[key]
}

// Values returns a copy of the scalar values.
func (a Args) Values() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Adjustment records a field whose authored value was replaced by its default.
type Adjustment struct {
	Field   string
	Value   any
	Default any
	Reason  string
}

// String renders the adjustment for an annotation comment.
func (a Adjustment) String() string {
	return fmt.Sprintf("field %q: %s (%v), using default %v", a.Field, a.Reason, a.Value, a.Default)
}

// Resolve validates node against kind's schema. Invalid scalar values fall back
// to the field default and are reported as adjustments. A value whose shape
// contradicts the schema (a list on a scalar field, args on an event-list field)
// is a structural violation.
func Resolve(kind *Kind, node script.Node) (Args, []Adjustment, error) {
	args := NewArgs(node.ID, nil, nil)
	var adjustments []Adjustment

	for _, f := range kind.Fields {
		if f.Type == TypeEvents {
			if raw, ok := node.Args[f.Key]; ok && raw != nil {
				return Args{}, nil, ErrStructural(kind.ID, f.Key, "event list bound through args")
			}
			args.lists[f.Key] = node.Children[f.Key]
			continue
		}

		if _, ok := node.Children[f.Key]; ok {
			return Args{}, nil, ErrStructural(kind.ID, f.Key, "event list bound to scalar field")
		}

		def := f.DefaultValue()
		raw, present := node.Args[f.Key]
		if !present || raw == nil {
			args.values[f.Key] = def
			continue
		}
		if isCollection(raw) {
			return Args{}, nil, ErrStructural(kind.ID, f.Key, "collection bound to scalar field")
		}

		v, reason := coerce(f, raw)
		if reason != "" {
			adjustments = append(adjustments, Adjustment{Field: f.Key, Value: raw, Default: def, Reason: reason})
			v = def
		}
		args.values[f.Key] = v
	}

	return args, adjustments, nil
}

// DefaultValue returns the value used when the field is missing or invalid.
func (f Field) DefaultValue() any {
	switch f.Type {
	case TypeNumber:
		if f.Default != nil {
			if v, reason := coerce(f, f.Default); reason == "" {
				return v
			}
		}
		if f.Range != nil && !f.Range.Contains(0) {
			return f.Range.Min
		}
		return 0
	case TypeBoolean:
		v, _ := coerce(f, f.Default)
		b, _ := v.(bool)
		return b
	case TypeSelect:
		if f.Default != nil {
			return fmt.Sprint(f.Default)
		}
		if len(f.Options) > 0 {
			return f.Options[0]
		}
		return ""
	case TypeText, TypeRef:
		if f.Default == nil {
			return ""
		}
		return fmt.Sprint(f.Default)
	default:
		return nil
	}
}

func isCollection(v any) bool {
	switch v.(type) {
	case []any, []map[string]any, map[string]any, []script.Node, script.Node:
		return true
	}
	return false
}

// coerce converts raw to the field's Go type. A non-empty reason means the
// value is unusable.
func coerce(f Field, raw any) (any, string) {
	switch f.Type {
	case TypeNumber:
		n, ok := toInt(raw)
		if !ok {
			return nil, "not a whole number"
		}
		if f.Range != nil && !f.Range.Contains(n) {
			return nil, fmt.Sprintf("outside %d..%d", f.Range.Min, f.Range.Max)
		}
		return n, ""
	case TypeBoolean:
		switch v := raw.(type) {
		case bool:
			return v, ""
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, "not a boolean"
			}
			return b, ""
		case nil:
			return false, ""
		}
		if n, ok := toInt(raw); ok && (n == 0 || n == 1) {
			return n == 1, ""
		}
		return nil, "not a boolean"
	case TypeSelect:
		s := fmt.Sprint(raw)
		for _, opt := range f.Options {
			if opt == s {
				return s, ""
			}
		}
		return nil, "not one of " + strings.Join(f.Options, ", ")
	case TypeText, TypeRef:
		switch v := raw.(type) {
		case string:
			return v, ""
		case bool:
			return nil, "not text"
		}
		if n, ok := toInt(raw); ok {
			return strconv.Itoa(n), ""
		}
		return nil, "not text"
	}
	return nil, "unsupported field type"
}

func toInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
