// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var _ yaml.Marshaler = &Map{}
var _ yaml.Unmarshaler = &Map{}

// MarshalYAML produces a mapping node so that the encoder keeps key order.
func (m *Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, item := range m.Items() {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(item.Key); err != nil {
			return nil, err
		}

		valNode, err := encodeValue(item.Value)
		if err != nil {
			return nil, fmt.Errorf("Marshaling key '%s': %w", item.Key, err)
		}

		node.Content = append(node.Content, keyNode, valNode)
	}

	return node, nil
}

// encodeValue prints timestamp-like strings plain, matching how they are
// read back (see ValueFromYAMLNode).
func encodeValue(val interface{}) (*yaml.Node, error) {
	switch typedVal := val.(type) {
	case string:
		if isTimestamp(typedVal) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: timestampTag, Value: typedVal}, nil
		}
	case []interface{}:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range typedVal {
			itemNode, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, itemNode)
		}
		return node, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(val); err != nil {
		return nil, err
	}
	return node, nil
}

const timestampTag = "!!timestamp"

func isTimestamp(str string) bool {
	return (&yaml.Node{Kind: yaml.ScalarNode, Value: str}).ShortTag() == timestampTag
}

func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	val, err := ValueFromYAMLNode(node)
	if err != nil {
		return err
	}

	switch typedVal := val.(type) {
	case *Map:
		m.items = typedVal.items
		return nil
	case nil:
		m.items = nil
		return nil
	default:
		return fmt.Errorf("line %d: Expected YAML mapping, but was %T", node.Line, val)
	}
}

// ValueFromYAMLNode converts a decoded node tree into *Map, []interface{}
// and scalars. Aliases are resolved; mapping keys must be scalars.
func ValueFromYAMLNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return ValueFromYAMLNode(node.Content[0])

	case yaml.MappingNode:
		result := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: Expected mapping key to be a scalar", keyNode.Line)
			}
			if result.Has(keyNode.Value) {
				return nil, fmt.Errorf("line %d: Duplicate mapping key '%s'", keyNode.Line, keyNode.Value)
			}
			val, err := ValueFromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			result.Set(keyNode.Value, val)
		}
		return result, nil

	case yaml.SequenceNode:
		result := make([]interface{}, 0, len(node.Content))
		for _, itemNode := range node.Content {
			val, err := ValueFromYAMLNode(itemNode)
			if err != nil {
				return nil, err
			}
			result = append(result, val)
		}
		return result, nil

	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: Unresolved alias", node.Line)
		}
		return ValueFromYAMLNode(node.Alias)

	case yaml.ScalarNode:
		// Timestamps stay text so that they survive JSON and compare equal
		// after a round trip.
		if node.ShortTag() == timestampTag {
			return node.Value, nil
		}
		var val interface{}
		if err := node.Decode(&val); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return val, nil

	default:
		return nil, fmt.Errorf("line %d: Unknown YAML node kind %d", node.Line, node.Kind)
	}
}
