// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"fmt"

	"carvel.dev/inputmodel/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

const (
	inputModelKey = "inputModel"
	fileInfoKey   = "fileInfo"
)

// Model is a logical input model together with the layout it was read from.
// Callers edit InputModel in place; FileInfo is left untouched until the
// next Load.
type Model struct {
	InputModel *orderedmap.Map
	FileInfo   *FileInfo
}

func (m *Model) AsValue() *orderedmap.Map {
	inputModel := m.InputModel
	if inputModel == nil {
		inputModel = orderedmap.NewMap()
	}
	fileInfo := m.FileInfo
	if fileInfo == nil {
		fileInfo = NewFileInfo()
	}
	return orderedmap.NewMapWithItems([]orderedmap.MapItem{
		{Key: inputModelKey, Value: inputModel},
		{Key: fileInfoKey, Value: fileInfo.AsValue()},
	})
}

// FromValue reads the combined {inputModel, fileInfo} document.
func FromValue(val interface{}) (*Model, error) {
	typedVal, ok := val.(*orderedmap.Map)
	if !ok {
		return nil, fmt.Errorf("Expected model to be a map, but was %T", val)
	}

	inputModel, found := typedVal.Get(inputModelKey)
	if !found {
		return nil, fmt.Errorf("Expected model to have key '%s'", inputModelKey)
	}
	typedInputModel, ok := inputModel.(*orderedmap.Map)
	if !ok && inputModel != nil {
		return nil, fmt.Errorf("Expected '%s' to be a map, but was %T", inputModelKey, inputModel)
	}
	if typedInputModel == nil {
		typedInputModel = orderedmap.NewMap()
	}

	fileInfo := NewFileInfo()
	if fileInfoVal, found := typedVal.Get(fileInfoKey); found && fileInfoVal != nil {
		var err error
		fileInfo, err = FileInfoFromValue(fileInfoVal)
		if err != nil {
			return nil, fmt.Errorf("Reading '%s': %w", fileInfoKey, err)
		}
	}

	return &Model{InputModel: typedInputModel, FileInfo: fileInfo}, nil
}

func (m *Model) DeepCopy() *Model {
	result := &Model{InputModel: m.InputModel.DeepCopy()}
	if m.FileInfo != nil {
		result.FileInfo = m.FileInfo.DeepCopy()
	}
	return result
}

var _ json.Marshaler = &Model{}
var _ json.Unmarshaler = &Model{}

func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.AsValue())
}

func (m *Model) UnmarshalJSON(data []byte) error {
	val, err := orderedmap.ValueFromJSON(data)
	if err != nil {
		return err
	}
	parsed, err := FromValue(val)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

func (m *Model) MarshalYAML() (interface{}, error) {
	return m.AsValue(), nil
}

func (m *Model) UnmarshalYAML(node *yaml.Node) error {
	val, err := orderedmap.ValueFromYAMLNode(node)
	if err != nil {
		return err
	}
	parsed, err := FromValue(val)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
