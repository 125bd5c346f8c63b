// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

type Map struct {
	items []MapItem
}

type MapItem struct {
	Key   string
	Value interface{}
}

func NewMap() *Map {
	return &Map{}
}

func NewMapWithItems(items []MapItem) *Map {
	return &Map{items}
}

func (m *Map) Set(key string, value interface{}) {
	for i, item := range m.items {
		if item.Key == key {
			item.Value = value
			m.items[i] = item
			return
		}
	}
	m.items = append(m.items, MapItem{key, value})
}

func (m *Map) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	for _, item := range m.items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

func (m *Map) Has(key string) bool {
	_, found := m.Get(key)
	return found
}

func (m *Map) Delete(key string) bool {
	for i, item := range m.items {
		if item.Key == key {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Map) Keys() (keys []string) {
	m.Iterate(func(k string, _ interface{}) {
		keys = append(keys, k)
	})
	return
}

func (m *Map) Items() []MapItem {
	if m == nil {
		return nil
	}
	return append([]MapItem{}, m.items...)
}

func (m *Map) Iterate(iterFunc func(k string, v interface{})) {
	if m == nil {
		return
	}
	for _, item := range m.items {
		iterFunc(item.Key, item.Value)
	}
}

func (m *Map) IterateErr(iterFunc func(k string, v interface{}) error) error {
	if m == nil {
		return nil
	}
	for _, item := range m.items {
		err := iterFunc(item.Key, item.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// DeepCopy copies nested maps and slices; scalars are shared.
func (m *Map) DeepCopy() *Map {
	if m == nil {
		return nil
	}
	result := &Map{items: make([]MapItem, 0, len(m.items))}
	for _, item := range m.items {
		result.items = append(result.items, MapItem{item.Key, DeepCopyValue(item.Value)})
	}
	return result
}

func DeepCopyValue(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case *Map:
		return typedVal.DeepCopy()
	case []interface{}:
		result := make([]interface{}, len(typedVal))
		for i, item := range typedVal {
			result[i] = DeepCopyValue(item)
		}
		return result
	default:
		return typedVal
	}
}
