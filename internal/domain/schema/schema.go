// Package schema validates decoded JSON values against a small structural
// descriptor language: a primitive type tag, a one-element list describing
// every item, or a mapping of required keys.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

type Kind int

const (
	KindAny Kind = iota
	KindPrimitive
	KindList
	KindObject
)

// Descriptor is a parsed schema node. Object fields keep declared order.
type Descriptor struct {
	Kind   Kind
	Type   string
	Item   *Descriptor
	Fields []Field
}

// Field is one required key of an object descriptor.
type Field struct {
	Key  string
	Desc Descriptor
}

// Field returns the descriptor for key and whether the object requires it.
func (d Descriptor) Field(key string) (Descriptor, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Desc, true
		}
	}
	return Descriptor{}, false
}

func Any() Descriptor { return Descriptor{Kind: KindAny} }

func Primitive(typ string) Descriptor { return Descriptor{Kind: KindPrimitive, Type: typ} }

// ListOf describes a homogeneous list. A nil item accepts any list.
func ListOf(item *Descriptor) Descriptor { return Descriptor{Kind: KindList, Item: item} }

func Key(name string, d Descriptor) Field { return Field{Key: name, Desc: d} }

// Object requires fields in the given order.
func Object(fields ...Field) Descriptor {
	return Descriptor{Kind: KindObject, Fields: fields}
}

// Parse builds a descriptor from a YAML node or a value decoded from YAML
// or JSON. Strings become primitive tags, a one-element list describes its
// items, an empty list accepts any list and a mapping lists required keys.
// Anything else is permissive. Only a node carries key order; keys of a
// decoded map are taken sorted.
func Parse(raw any) Descriptor {
	switch v := raw.(type) {
	case *yaml.Node:
		return parseNode(v)
	case yaml.Node:
		return parseNode(&v)
	case string:
		return Primitive(v)
	case []any:
		switch len(v) {
		case 0:
			return ListOf(nil)
		case 1:
			item := Parse(v[0])
			return ListOf(&item)
		default:
			return Any()
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Key(k, Parse(v[k])))
		}
		return Object(fields...)
	default:
		return Any()
	}
}

func parseNode(n *yaml.Node) Descriptor {
	if n == nil {
		return Any()
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Any()
		}
		return parseNode(n.Content[0])
	case yaml.AliasNode:
		return parseNode(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return Any()
		}
		return Primitive(n.Value)
	case yaml.SequenceNode:
		switch len(n.Content) {
		case 0:
			return ListOf(nil)
		case 1:
			item := parseNode(n.Content[0])
			return ListOf(&item)
		default:
			return Any()
		}
	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			fields = append(fields, Key(n.Content[i].Value, parseNode(n.Content[i+1])))
		}
		return Object(fields...)
	}
	return Any()
}

// Validate checks value against d. On failure the message names the first
// offending path, e.g. "item[1] -> 'id' -> Expected int, got str".
func Validate(value any, d Descriptor) (bool, string) {
	switch d.Kind {
	case KindPrimitive:
		if !matches(value, d.Type) {
			return false, fmt.Sprintf("Expected %s, got %s", d.Type, TypeName(value))
		}
		return true, ""

	case KindList:
		items, ok := value.([]any)
		if !ok {
			return false, fmt.Sprintf("Expected list, got %s", TypeName(value))
		}
		if d.Item == nil {
			return true, ""
		}
		for i, item := range items {
			if ok, msg := Validate(item, *d.Item); !ok {
				return false, fmt.Sprintf("item[%d] -> %s", i, msg)
			}
		}
		return true, ""

	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return false, fmt.Sprintf("Expected dict, got %s", TypeName(value))
		}
		for _, f := range d.Fields {
			v, present := obj[f.Key]
			if !present {
				return false, fmt.Sprintf("Missing required key: '%s'", f.Key)
			}
			if ok, msg := Validate(v, f.Desc); !ok {
				return false, fmt.Sprintf("'%s' -> %s", f.Key, msg)
			}
		}
		return true, ""
	}

	return true, ""
}

// TypeName names the JSON type of a decoded value.
func TypeName(v any) string {
	switch n := v.(type) {
	case nil:
		return "NoneType"
	case string:
		return "str"
	case bool:
		return "bool"
	case float64:
		if isIntegral(n) {
			return "int"
		}
		return "float"
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return "int"
		}
		return "float"
	case int, int64, int32, uint, uint64:
		return "int"
	case float32:
		return "float"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func matches(v any, typ string) bool {
	actual := TypeName(v)
	switch typ {
	case "any":
		return true
	case "float", "number":
		return actual == "float" || actual == "int"
	case "null", "none", "NoneType":
		return actual == "NoneType"
	case "object":
		return actual == "dict"
	case "array":
		return actual == "list"
	case "string":
		return actual == "str"
	case "integer":
		return actual == "int"
	case "boolean":
		return actual == "bool"
	default:
		return actual == typ
	}
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}
