// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"io"

	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/files"
)

const (
	DefaultStampKey   = "product"
	DefaultNewFileDir = "data"
)

var DefaultIdentityFields = []string{"id", "name", "region-name"}

// Conventions describe the shape of a model that both the read and the
// write path rely on.
type Conventions struct {
	// StampKey names the metadata stamp present in every document.
	StampKey string
	// IdentityFields are tried in order to identify list items.
	IdentityFields []string
	// AllowMultipleDocs accepts '---' separated documents in one file
	// and merges their roots.
	AllowMultipleDocs bool
}

func (c Conventions) parserOpts() document.ParserOpts {
	return document.ParserOpts{AllowMultipleDocs: c.AllowMultipleDocs}
}

func (c Conventions) withDefaults() Conventions {
	if c.StampKey == "" {
		c.StampKey = DefaultStampKey
	}
	if len(c.IdentityFields) == 0 {
		c.IdentityFields = DefaultIdentityFields
	}
	return c
}

type LoadOpts struct {
	Conventions

	Patterns []string
	Required []string
	// VersionConstraint (e.g. ">= 2") is checked against the version
	// field of every document's stamp when set.
	VersionConstraint string

	UI files.UI
}

func (o LoadOpts) withDefaults() LoadOpts {
	o.Conventions = o.Conventions.withDefaults()
	if o.UI == nil {
		o.UI = noopUI{}
	}
	return o
}

type WriteOpts struct {
	Conventions

	// NewFileDir receives new documents for sections no file owns.
	NewFileDir string
	Policy     PlacementPolicy
	Names      NameGenerator
	DryRun     bool

	UI files.UI
}

func (o WriteOpts) withDefaults() WriteOpts {
	o.Conventions = o.Conventions.withDefaults()
	if o.NewFileDir == "" {
		o.NewFileDir = DefaultNewFileDir
	}
	if o.Policy == nil {
		o.Policy = ConventionPolicy{}
	}
	if o.Names == nil {
		o.Names = RandomNames{}
	}
	if o.UI == nil {
		o.UI = noopUI{}
	}
	return o
}

type noopUI struct{}

var _ files.UI = noopUI{}

func (noopUI) Printf(string, ...interface{}) {}
func (noopUI) Debugf(string, ...interface{}) {}
func (noopUI) DebugWriter() io.Writer        { return io.Discard }
