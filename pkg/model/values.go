// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"carvel.dev/inputmodel/pkg/orderedmap"
)

type valueKind string

const (
	nullKind     valueKind = "null"
	sequenceKind valueKind = "sequence"
	mappingKind  valueKind = "mapping"
	scalarKind   valueKind = "scalar"
)

func kindOf(val interface{}) valueKind {
	switch val.(type) {
	case nil:
		return nullKind
	case []interface{}:
		return sequenceKind
	case *orderedmap.Map:
		return mappingKind
	default:
		return scalarKind
	}
}

// sizeOf counts items of a sequence or keys of a mapping.
func sizeOf(val interface{}) int {
	switch typedVal := val.(type) {
	case nil:
		return 0
	case []interface{}:
		return len(typedVal)
	case *orderedmap.Map:
		return typedVal.Len()
	default:
		return 1
	}
}

// mergeValues adds residual content to an existing section value.
// Sequences are appended, mappings are merged key by key.
func mergeValues(dst, src interface{}) interface{} {
	switch typedDst := dst.(type) {
	case nil:
		return src

	case []interface{}:
		typedSrc, ok := src.([]interface{})
		if !ok {
			return src
		}
		return append(typedDst, typedSrc...)

	case *orderedmap.Map:
		typedSrc, ok := src.(*orderedmap.Map)
		if !ok {
			return src
		}
		typedSrc.Iterate(func(key string, val interface{}) {
			existing, found := typedDst.Get(key)
			if found {
				typedDst.Set(key, mergeValues(existing, val))
			} else {
				typedDst.Set(key, val)
			}
		})
		return typedDst

	default:
		return src
	}
}

// sectionsEqual compares two documents section by section ignoring the
// stamp, key order and the order of each section's top level items.
func sectionsEqual(a, b *orderedmap.Map, stampKey string) bool {
	sectionsA := withoutKey(a, stampKey)
	sectionsB := withoutKey(b, stampKey)

	if sectionsA.Len() != sectionsB.Len() {
		return false
	}

	for _, item := range sectionsA.Items() {
		valB, found := sectionsB.Get(item.Key)
		if !found {
			return false
		}

		seqA, okA := item.Value.([]interface{})
		seqB, okB := valB.([]interface{})
		if okA && okB {
			if !orderedmap.EqualUnordered(seqA, seqB) {
				return false
			}
			continue
		}

		if !orderedmap.Equal(item.Value, valB) {
			return false
		}
	}
	return true
}

func withoutKey(m *orderedmap.Map, key string) *orderedmap.Map {
	result := orderedmap.NewMap()
	m.Iterate(func(k string, v interface{}) {
		if k != key {
			result.Set(k, v)
		}
	})
	return result
}
