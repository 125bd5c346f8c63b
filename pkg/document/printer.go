// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"fmt"
	"io"

	"carvel.dev/inputmodel/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

const printIndent = 2

type Printer struct {
	writer io.Writer
}

func NewPrinter(writer io.Writer) Printer {
	return Printer{writer}
}

// Print writes any model value (typically *orderedmap.Map) as YAML.
func (p Printer) Print(val interface{}) error {
	enc := yaml.NewEncoder(p.writer)
	enc.SetIndent(printIndent)

	err := enc.Encode(val)
	if err != nil {
		return fmt.Errorf("Marshaling document: %w", err)
	}
	return enc.Close()
}

// Marshal renders a document root as YAML bytes.
func Marshal(root *orderedmap.Map) ([]byte, error) {
	if root == nil {
		root = orderedmap.NewMap()
	}

	var buf bytes.Buffer

	err := NewPrinter(&buf).Print(root)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
