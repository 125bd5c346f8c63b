// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"

	"carvel.dev/inputmodel/pkg/orderedmap"
)

type identifier struct {
	fields []string
}

// Identity returns the value of the first identity field an item carries.
// Items without one are identified by their canonical encoding, so any
// edit to such an item turns it into a new item.
func (i identifier) Identity(item interface{}) (string, error) {
	if typedItem, ok := item.(*orderedmap.Map); ok {
		for _, field := range i.fields {
			val, found := typedItem.Get(field)
			if !found {
				continue
			}
			switch val.(type) {
			case *orderedmap.Map, []interface{}, nil:
				continue
			default:
				return fmt.Sprintf("%v", val), nil
			}
		}
	}

	str, err := orderedmap.Conversion{Object: item}.CanonicalString()
	if err != nil {
		return "", fmt.Errorf("Identifying list item: %w", err)
	}
	return str, nil
}
