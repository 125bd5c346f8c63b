// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"carvel.dev/inputmodel/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

// Fragment is a key path inside a section. Sequence sections use a single
// element holding the item identity; mapping sections use sub-keys.
type Fragment []string

// SectionDescriptor records what part of a section a file contributed.
// Nil Fragments means the whole section.
type SectionDescriptor struct {
	Section   string
	Fragments []Fragment
}

func (d SectionDescriptor) IsWhole() bool { return d.Fragments == nil }

// FileInfo describes the on-disk layout of a model as last read.
type FileInfo struct {
	Files          []string
	Sections       map[string][]string
	FileSectionMap map[string][]SectionDescriptor
}

func NewFileInfo() *FileInfo {
	return &FileInfo{
		Sections:       map[string][]string{},
		FileSectionMap: map[string][]SectionDescriptor{},
	}
}

func (fi *FileInfo) HasFile(name string) bool {
	for _, file := range fi.Files {
		if file == name {
			return true
		}
	}
	return false
}

// Owners returns files (in Files order) carrying a descriptor for section.
func (fi *FileInfo) Owners(section string) []string {
	var result []string
	for _, file := range fi.Files {
		if _, found := fi.Descriptor(file, section); found {
			result = append(result, file)
		}
	}
	return result
}

func (fi *FileInfo) Descriptor(file, section string) (SectionDescriptor, bool) {
	for _, desc := range fi.FileSectionMap[file] {
		if desc.Section == section {
			return desc, true
		}
	}
	return SectionDescriptor{}, false
}

func (fi *FileInfo) DeepCopy() *FileInfo {
	result := NewFileInfo()
	result.Files = append([]string{}, fi.Files...)
	for section, files := range fi.Sections {
		result.Sections[section] = append([]string{}, files...)
	}
	for file, descs := range fi.FileSectionMap {
		var copied []SectionDescriptor
		for _, desc := range descs {
			newDesc := SectionDescriptor{Section: desc.Section}
			if desc.Fragments != nil {
				newDesc.Fragments = []Fragment{}
				for _, frag := range desc.Fragments {
					newDesc.Fragments = append(newDesc.Fragments, append(Fragment{}, frag...))
				}
			}
			copied = append(copied, newDesc)
		}
		result.FileSectionMap[file] = copied
	}
	return result
}

// AsValue encodes FileInfo as a document value. Whole descriptors are
// bare section names, refined ones are single-key maps of fragments.
func (fi *FileInfo) AsValue() *orderedmap.Map {
	files := []interface{}{}
	for _, file := range fi.Files {
		files = append(files, file)
	}

	var sectionNames []string
	for section := range fi.Sections {
		sectionNames = append(sectionNames, section)
	}
	sort.Strings(sectionNames)

	sections := orderedmap.NewMap()
	for _, section := range sectionNames {
		owners := []interface{}{}
		for _, file := range fi.Sections[section] {
			owners = append(owners, file)
		}
		sections.Set(section, owners)
	}

	fileSectionMap := orderedmap.NewMap()
	for _, file := range fi.fileSectionMapKeys() {
		descs := []interface{}{}
		for _, desc := range fi.FileSectionMap[file] {
			descs = append(descs, desc.asValue())
		}
		fileSectionMap.Set(file, descs)
	}

	return orderedmap.NewMapWithItems([]orderedmap.MapItem{
		{Key: "files", Value: files},
		{Key: "sections", Value: sections},
		{Key: "fileSectionMap", Value: fileSectionMap},
	})
}

// fileSectionMapKeys lists known files first and then any extra entries.
func (fi *FileInfo) fileSectionMapKeys() []string {
	var result []string
	seen := map[string]struct{}{}
	for _, file := range fi.Files {
		if _, found := fi.FileSectionMap[file]; found {
			result = append(result, file)
			seen[file] = struct{}{}
		}
	}
	var extra []string
	for file := range fi.FileSectionMap {
		if _, found := seen[file]; !found {
			extra = append(extra, file)
		}
	}
	sort.Strings(extra)
	return append(result, extra...)
}

func (d SectionDescriptor) asValue() interface{} {
	if d.IsWhole() {
		return d.Section
	}
	frags := []interface{}{}
	for _, frag := range d.Fragments {
		if len(frag) == 1 {
			frags = append(frags, frag[0])
			continue
		}
		path := []interface{}{}
		for _, key := range frag {
			path = append(path, key)
		}
		frags = append(frags, path)
	}
	return orderedmap.NewMapWithItems([]orderedmap.MapItem{{Key: d.Section, Value: frags}})
}

func FileInfoFromValue(val interface{}) (*FileInfo, error) {
	typedVal, ok := val.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected file info to be a map, but was %T", val)
	}

	result := NewFileInfo()

	files, err := stringsFromValue(mapValue(typedVal, "files"), "files")
	if err != nil {
		return nil, err
	}
	result.Files = files

	if sections, found := typedVal.Get("sections"); found && sections != nil {
		typedSections, ok := sections.(*orderedmap.Map)
		if !ok {
			return nil, fmt.Errorf("Expected file info sections to be a map, but was %T", sections)
		}
		err := typedSections.IterateErr(func(section string, owners interface{}) error {
			ownerFiles, err := stringsFromValue(owners, "sections."+section)
			if err != nil {
				return err
			}
			result.Sections[section] = ownerFiles
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if fsm, found := typedVal.Get("fileSectionMap"); found && fsm != nil {
		typedFSM, ok := fsm.(*orderedmap.Map)
		if !ok {
			return nil, fmt.Errorf("Expected file info fileSectionMap to be a map, but was %T", fsm)
		}
		err := typedFSM.IterateErr(func(file string, descs interface{}) error {
			typedDescs, ok := descs.([]interface{})
			if !ok && descs != nil {
				return fmt.Errorf("Expected fileSectionMap.%s to be a list, but was %T", file, descs)
			}
			parsed := []SectionDescriptor{}
			for _, desc := range typedDescs {
				parsedDesc, err := descriptorFromValue(desc)
				if err != nil {
					return fmt.Errorf("Parsing fileSectionMap.%s: %w", file, err)
				}
				parsed = append(parsed, parsedDesc)
			}
			result.FileSectionMap[file] = parsed
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func descriptorFromValue(val interface{}) (SectionDescriptor, error) {
	switch typedVal := val.(type) {
	case string:
		return SectionDescriptor{Section: typedVal}, nil

	case *orderedmap.Map:
		if typedVal.Len() != 1 {
			return SectionDescriptor{}, fmt.Errorf("Expected section descriptor to have exactly one key, but had %d", typedVal.Len())
		}
		item := typedVal.Items()[0]
		desc := SectionDescriptor{Section: item.Key, Fragments: []Fragment{}}

		frags, ok := item.Value.([]interface{})
		if !ok && item.Value != nil {
			return SectionDescriptor{}, fmt.Errorf("Expected fragments of section '%s' to be a list, but was %T", item.Key, item.Value)
		}
		for _, frag := range frags {
			switch typedFrag := frag.(type) {
			case []interface{}:
				path, err := stringsFromValue(typedFrag, item.Key)
				if err != nil {
					return SectionDescriptor{}, err
				}
				desc.Fragments = append(desc.Fragments, Fragment(path))
			case *orderedmap.Map, nil:
				return SectionDescriptor{}, fmt.Errorf("Expected fragment of section '%s' to be a scalar or a list, but was %T", item.Key, frag)
			default:
				desc.Fragments = append(desc.Fragments, Fragment{fmt.Sprintf("%v", typedFrag)})
			}
		}
		return desc, nil

	default:
		return SectionDescriptor{}, fmt.Errorf("Expected section descriptor to be a string or a map, but was %T", val)
	}
}

func mapValue(m *orderedmap.Map, key string) interface{} {
	val, _ := m.Get(key)
	return val
}

func stringsFromValue(val interface{}, desc string) ([]string, error) {
	if val == nil {
		return nil, nil
	}
	typedVal, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("Expected %s to be a list, but was %T", desc, val)
	}
	var result []string
	for _, item := range typedVal {
		switch item.(type) {
		case *orderedmap.Map, []interface{}, nil:
			return nil, fmt.Errorf("Expected %s to contain scalars, but found %T", desc, item)
		default:
			result = append(result, fmt.Sprintf("%v", item))
		}
	}
	return result, nil
}

var _ json.Marshaler = &FileInfo{}
var _ json.Unmarshaler = &FileInfo{}

func (fi *FileInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(fi.AsValue())
}

func (fi *FileInfo) UnmarshalJSON(data []byte) error {
	val, err := orderedmap.ValueFromJSON(data)
	if err != nil {
		return err
	}
	parsed, err := FileInfoFromValue(val)
	if err != nil {
		return err
	}
	*fi = *parsed
	return nil
}

func (fi *FileInfo) MarshalYAML() (interface{}, error) {
	return fi.AsValue(), nil
}

func (fi *FileInfo) UnmarshalYAML(node *yaml.Node) error {
	val, err := orderedmap.ValueFromYAMLNode(node)
	if err != nil {
		return err
	}
	parsed, err := FileInfoFromValue(val)
	if err != nil {
		return err
	}
	*fi = *parsed
	return nil
}
