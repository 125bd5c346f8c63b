// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"encoding/json"
	"fmt"
	"sort"
)

type Conversion struct {
	Object interface{}
}

// AsUnorderedStringMaps returns a copy of Object where every *Map is
// replaced by map[string]interface{}. Object is not modified.
func (c Conversion) AsUnorderedStringMaps() interface{} {
	return c.asUnorderedStringMaps(c.Object)
}

func (c Conversion) asUnorderedStringMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[interface{}]interface{}:
		panic("Expected *orderedmap.Map instead of map[interface{}]interface{} in asUnorderedStringMaps")

	case map[string]interface{}:
		panic("Expected *orderedmap.Map instead of map[string]interface{} in asUnorderedStringMaps")

	case *Map:
		result := map[string]interface{}{}
		typedObj.Iterate(func(k string, v interface{}) {
			result[k] = c.asUnorderedStringMaps(v)
		})
		return result

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.asUnorderedStringMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

// FromUnorderedMaps returns a copy of Object where every native map is
// replaced by *Map with keys in sorted order. Object is not modified.
func (c Conversion) FromUnorderedMaps() interface{} {
	return c.fromUnorderedMaps(c.Object)
}

func (c Conversion) fromUnorderedMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[interface{}]interface{}:
		result := NewMap()
		for _, key := range c.sortedMapKeys(c.mapKeysFromInterfaceMap(typedObj)) {
			result.Set(fmt.Sprintf("%v", key), c.fromUnorderedMaps(typedObj[key]))
		}
		return result

	case map[string]interface{}:
		result := NewMap()
		for _, key := range c.sortedMapKeys(c.mapKeysFromStringMap(typedObj)) {
			result.Set(key.(string), c.fromUnorderedMaps(typedObj[key.(string)]))
		}
		return result

	case *Map:
		panic("Expected map[interface{}]interface{} instead of *orderedmap.Map in fromUnorderedMaps")

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.fromUnorderedMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

// CanonicalString renders Object as JSON with sorted keys. Two values that
// are Equal regardless of key order render identically.
func (c Conversion) CanonicalString() (string, error) {
	bs, err := json.Marshal(c.AsUnorderedStringMaps())
	if err != nil {
		return "", fmt.Errorf("Encoding canonical value: %w", err)
	}
	return string(bs), nil
}

func (Conversion) mapKeysFromInterfaceMap(m map[interface{}]interface{}) []interface{} {
	var keys []interface{}
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (Conversion) mapKeysFromStringMap(m map[string]interface{}) []interface{} {
	var keys []interface{}
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (Conversion) sortedMapKeys(keys []interface{}) []interface{} {
	sort.Slice(keys, func(i, j int) bool {
		iStr := fmt.Sprintf("%v", keys[i])
		jStr := fmt.Sprintf("%v", keys[j])
		return iStr < jStr
	})
	return keys
}
