// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"carvel.dev/inputmodel/pkg/orderedmap"
)

// projector re-applies recorded descriptors to an edited tree.
type projector struct {
	tree     *orderedmap.Map
	fileInfo *FileInfo
	ident    identifier
}

// Project returns the sections file holds given the current tree.
// Sections whose recorded content is gone are left out.
func (p projector) Project(file string) (*orderedmap.Map, error) {
	result := orderedmap.NewMap()

	for _, desc := range p.fileInfo.FileSectionMap[file] {
		val, found, err := p.projectSection(file, desc)
		if err != nil {
			return nil, err
		}
		if found {
			result.Set(desc.Section, val)
		}
	}
	return result, nil
}

func (p projector) projectSection(file string, desc SectionDescriptor) (interface{}, bool, error) {
	val, found := p.tree.Get(desc.Section)
	if !found {
		return nil, false, nil
	}

	if desc.IsWhole() {
		return orderedmap.DeepCopyValue(val), true, nil
	}

	// placeholder for a section whose content lives elsewhere
	if len(desc.Fragments) == 0 {
		return nil, true, nil
	}

	switch typedVal := val.(type) {
	case []interface{}:
		ids := fragmentIdentities(desc.Fragments)

		var items []interface{}
		for _, item := range typedVal {
			id, err := p.ident.Identity(item)
			if err != nil {
				return nil, false, err
			}
			if _, found := ids[id]; found {
				items = append(items, orderedmap.DeepCopyValue(item))
			}
		}
		if len(items) == 0 {
			return nil, false, nil
		}
		return items, true, nil

	case *orderedmap.Map:
		restricted := p.mappingClaims(file, desc).restrict(typedVal)
		if restricted.Len() == 0 {
			return nil, false, nil
		}
		return restricted, true, nil

	default:
		return nil, false, nil
	}
}

// Residual returns the part of a section that none of the given
// descriptors claims.
func (p projector) Residual(section string, descs []SectionDescriptor) (interface{}, bool, error) {
	val, found := p.tree.Get(section)
	if !found {
		return nil, false, nil
	}

	if len(descs) == 0 {
		return orderedmap.DeepCopyValue(val), true, nil
	}

	var allFrags []Fragment
	for _, desc := range descs {
		if desc.IsWhole() {
			return nil, false, nil
		}
		allFrags = append(allFrags, desc.Fragments...)
	}

	switch typedVal := val.(type) {
	case nil:
		return nil, false, nil

	case []interface{}:
		ids := fragmentIdentities(allFrags)

		var items []interface{}
		for _, item := range typedVal {
			id, err := p.ident.Identity(item)
			if err != nil {
				return nil, false, err
			}
			if _, found := ids[id]; !found {
				items = append(items, orderedmap.DeepCopyValue(item))
			}
		}
		if len(items) == 0 {
			return nil, false, nil
		}
		return items, true, nil

	case *orderedmap.Map:
		unclaimed := newKeyTrie(allFrags).subtract(typedVal)
		if unclaimed.Len() == 0 {
			return nil, false, nil
		}
		return unclaimed, true, nil

	default:
		return orderedmap.DeepCopyValue(val), true, nil
	}
}

// mappingClaims builds the key paths file claims in a mapping section,
// narrowed by deeper paths other owners claim below them. When two files
// claim the same path, the later one keeps only an empty map.
func (p projector) mappingClaims(file string, desc SectionDescriptor) *keyTrie {
	trie := newKeyTrie(desc.Fragments)

	earlier := true
	for _, other := range p.fileInfo.Owners(desc.Section) {
		if other == file {
			earlier = false
			continue
		}
		otherDesc, _ := p.fileInfo.Descriptor(other, desc.Section)
		for _, frag := range otherDesc.Fragments {
			trie.exclude(frag, earlier)
		}
	}
	return trie
}

func fragmentIdentities(frags []Fragment) map[string]struct{} {
	result := map[string]struct{}{}
	for _, frag := range frags {
		if len(frag) == 1 {
			result[frag[0]] = struct{}{}
		}
	}
	return result
}

// keyTrie holds mapping key paths. A terminal node claims everything below,
// except what excluded holds. A shell terminal claims only an empty map.
type keyTrie struct {
	terminal bool
	shell    bool
	excluded *keyTrie
	children map[string]*keyTrie
}

func newKeyTrie(frags []Fragment) *keyTrie {
	root := &keyTrie{children: map[string]*keyTrie{}}
	for _, frag := range frags {
		root.add(frag)
	}
	return root
}

func (t *keyTrie) add(path []string) {
	if len(path) == 0 {
		return
	}
	node := t
	for _, key := range path {
		if node.terminal {
			return
		}
		child, found := node.children[key]
		if !found {
			child = &keyTrie{children: map[string]*keyTrie{}}
			node.children[key] = child
		}
		node = child
	}
	node.terminal = true
	node.children = map[string]*keyTrie{}
}

// exclude removes path from whatever terminal of t covers it. A path equal
// to a terminal turns it into a shell when claimed by an earlier file.
func (t *keyTrie) exclude(path []string, earlier bool) {
	node := t
	for i, key := range path {
		child, found := node.children[key]
		if !found {
			return
		}
		if child.terminal {
			rest := path[i+1:]
			if len(rest) == 0 {
				if earlier {
					child.shell = true
				}
				return
			}
			if child.excluded == nil {
				child.excluded = &keyTrie{children: map[string]*keyTrie{}}
			}
			child.excluded.add(rest)
			return
		}
		node = child
	}
}

// claimed returns the part of val held by terminal t.
func (t *keyTrie) claimed(val interface{}) (interface{}, bool) {
	typedVal, ok := val.(*orderedmap.Map)
	switch {
	case !ok && t.shell:
		return nil, false
	case !ok:
		return orderedmap.DeepCopyValue(val), true
	case t.shell:
		return orderedmap.NewMap(), true
	case t.excluded != nil:
		return t.excluded.subtract(typedVal), true
	default:
		return typedVal.DeepCopy(), true
	}
}

// restrict keeps the claimed part of m, in m's key order.
func (t *keyTrie) restrict(m *orderedmap.Map) *orderedmap.Map {
	result := orderedmap.NewMap()
	m.Iterate(func(key string, val interface{}) {
		child, found := t.children[key]
		if !found {
			return
		}
		if child.terminal {
			if claimed, ok := child.claimed(val); ok {
				result.Set(key, claimed)
			}
			return
		}
		if typedVal, ok := val.(*orderedmap.Map); ok {
			if sub := child.restrict(typedVal); sub.Len() > 0 {
				result.Set(key, sub)
			}
		}
	})
	return result
}

// subtract keeps the unclaimed part of m, in m's key order.
func (t *keyTrie) subtract(m *orderedmap.Map) *orderedmap.Map {
	result := orderedmap.NewMap()
	m.Iterate(func(key string, val interface{}) {
		child, found := t.children[key]
		switch {
		case !found:
			result.Set(key, orderedmap.DeepCopyValue(val))
		case child.terminal:
			// claimed
		default:
			typedVal, ok := val.(*orderedmap.Map)
			if !ok {
				result.Set(key, orderedmap.DeepCopyValue(val))
				return
			}
			if sub := child.subtract(typedVal); sub.Len() > 0 {
				result.Set(key, sub)
			}
		}
	})
	return result
}
