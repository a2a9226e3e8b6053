package domain

import (
	"encoding/json"
	"fmt"

	"github.com/openkraft/prodcheck/internal/domain/schema"
	"gopkg.in/yaml.v3"
)

// StructuralSchema is an expected_schema value as written in configuration.
// Value holds the decoded form for reports; the YAML node keeps key order
// so the first declared failing key is the one reported.
type StructuralSchema struct {
	Value any
	node  *yaml.Node
}

// ParseStructuralSchema reads a schema from YAML or JSON source.
func ParseStructuralSchema(src string) (*StructuralSchema, error) {
	s := &StructuralSchema{}
	if err := s.UnmarshalJSON([]byte(src)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StructuralSchema) UnmarshalYAML(n *yaml.Node) error {
	if err := n.Decode(&s.Value); err != nil {
		return err
	}
	s.node = n
	return nil
}

// UnmarshalJSON goes through the YAML parser, which accepts JSON and keeps
// object key order.
func (s *StructuralSchema) UnmarshalJSON(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing expected_schema: %w", err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("parsing expected_schema: empty document")
	}
	return s.UnmarshalYAML(doc.Content[0])
}

func (s StructuralSchema) MarshalJSON() ([]byte, error) { return json.Marshal(s.Value) }

func (s StructuralSchema) MarshalYAML() (any, error) {
	if s.node != nil {
		return s.node, nil
	}
	return s.Value, nil
}

// Descriptor parses the schema, in declared key order when it came from source.
func (s *StructuralSchema) Descriptor() schema.Descriptor {
	if s.node != nil {
		return schema.Parse(s.node)
	}
	return schema.Parse(s.Value)
}
