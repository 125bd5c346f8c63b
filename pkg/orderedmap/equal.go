// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"reflect"
)

// Equal compares two values structurally. Map key order is ignored, slice
// order is not. nil, an empty *Map and an empty slice are all equal, and
// numbers compare by value regardless of their Go type.
func Equal(a, b interface{}) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}

	switch typedA := a.(type) {
	case *Map:
		typedB, ok := b.(*Map)
		if !ok || typedA.Len() != typedB.Len() {
			return false
		}
		for _, item := range typedA.items {
			val, found := typedB.Get(item.Key)
			if !found || !Equal(item.Value, val) {
				return false
			}
		}
		return true

	case []interface{}:
		typedB, ok := b.([]interface{})
		if !ok || len(typedA) != len(typedB) {
			return false
		}
		for i := range typedA {
			if !Equal(typedA[i], typedB[i]) {
				return false
			}
		}
		return true

	default:
		if numA, ok := asFloat(a); ok {
			numB, ok := asFloat(b)
			return ok && numA == numB
		}
		return reflect.DeepEqual(a, b)
	}
}

// EqualUnordered compares two slices as multisets using Equal for items.
func EqualUnordered(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	matched := make([]bool, len(b))
	for _, itemA := range a {
		found := false
		for j, itemB := range b {
			if !matched[j] && Equal(itemA, itemB) {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func isEmpty(val interface{}) bool {
	switch typedVal := val.(type) {
	case nil:
		return true
	case *Map:
		return typedVal.Len() == 0
	case []interface{}:
		return len(typedVal) == 0
	default:
		return false
	}
}

func asFloat(val interface{}) (float64, bool) {
	switch typedVal := val.(type) {
	case int:
		return float64(typedVal), true
	case int64:
		return float64(typedVal), true
	case uint64:
		return float64(typedVal), true
	case float64:
		return typedVal, true
	default:
		return 0, false
	}
}
