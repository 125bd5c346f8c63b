// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"carvel.dev/inputmodel/pkg/orderedmap"
	"gopkg.in/yaml.v3"
)

// ErrMalformed is returned for documents that are not valid YAML or whose
// root is not a mapping.
var ErrMalformed = errors.New("malformed document")

type ParserOpts struct {
	// AllowMultipleDocs merges the roots of several '---' separated
	// documents in one file; otherwise a second document is an error.
	AllowMultipleDocs bool
}

type Parser struct {
	opts ParserOpts
}

func NewParser(opts ParserOpts) *Parser {
	return &Parser{opts}
}

// ParseBytes parses data into a root mapping. associatedName is only used
// in error messages. An empty document yields an empty map.
func (p *Parser) ParseBytes(data []byte, associatedName string) (*orderedmap.Map, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	result := orderedmap.NewMap()

	for docIdx := 0; ; docIdx++ {
		var node yaml.Node

		err := dec.Decode(&node)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("Parsing '%s': %s: %w", associatedName, err, ErrMalformed)
		}

		if docIdx > 0 && !p.opts.AllowMultipleDocs {
			return nil, fmt.Errorf("Parsing '%s': expected a single YAML document: %w", associatedName, ErrMalformed)
		}

		val, err := orderedmap.ValueFromYAMLNode(&node)
		if err != nil {
			return nil, fmt.Errorf("Parsing '%s': %s: %w", associatedName, err, ErrMalformed)
		}

		switch typedVal := val.(type) {
		case nil:
			// empty document
		case *orderedmap.Map:
			for _, item := range typedVal.Items() {
				if result.Has(item.Key) {
					return nil, fmt.Errorf("Parsing '%s': key '%s' repeated across documents: %w",
						associatedName, item.Key, ErrMalformed)
				}
				result.Set(item.Key, item.Value)
			}
		default:
			return nil, fmt.Errorf("Parsing '%s': expected document root to be a mapping, but was %T: %w",
				associatedName, val, ErrMalformed)
		}
	}

	return result, nil
}
