// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

var _ json.Marshaler = &Map{}
var _ json.Unmarshaler = &Map{}

// MarshalJSON encodes keys in their stored order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, item := range m.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(item.Value)
		if err != nil {
			return nil, fmt.Errorf("Marshaling key '%s': %w", item.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order. Nested objects become
// *Map and integral numbers become int.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	val, err := decodeJSONValue(dec)
	if err != nil {
		return err
	}

	typedVal, ok := val.(*Map)
	if !ok {
		return fmt.Errorf("Expected JSON object, but was %T", val)
	}
	m.items = typedVal.items
	return nil
}

// ValueFromJSON decodes any JSON value the same way UnmarshalJSON does.
func ValueFromJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeJSONValue(dec)
}

func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("Unexpected end of JSON input")
		}
		return nil, err
	}

	switch typedTok := tok.(type) {
	case json.Delim:
		switch typedTok {
		case '{':
			result := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("Expected JSON object key to be string, but was %T", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				result.Set(key, val)
			}
			_, err := dec.Token() // consume '}'
			return result, err

		case '[':
			result := []interface{}{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				result = append(result, val)
			}
			_, err := dec.Token() // consume ']'
			return result, err

		default:
			return nil, fmt.Errorf("Unexpected JSON delimiter '%s'", typedTok)
		}

	case json.Number:
		if intVal, err := strconv.Atoi(typedTok.String()); err == nil {
			return intVal, nil
		}
		return typedTok.Float64()

	default:
		// string, bool, nil
		return typedTok, nil
	}
}
