// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"errors"
	"fmt"
	"os"

	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/orderedmap"
)

// Write reconciles an edited model with dir. With opts.DryRun the change
// set is returned and nothing on disk is touched.
func Write(m *Model, dir string, opts WriteOpts) (ChangeSet, error) {
	opts = opts.withDefaults()

	dirInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Model directory '%s': %w", dir, files.ErrNotFound)
		}
		return nil, err
	}
	if !dirInfo.IsDir() {
		return nil, fmt.Errorf("Expected '%s' to be a directory: %w", dir, files.ErrNotFound)
	}

	plan, err := NewPlanner(opts).Plan(m)
	if err != nil {
		return nil, err
	}

	originals, err := readOriginals(dir, plan, opts.Conventions)
	if err != nil {
		return nil, err
	}

	changes := BuildChangeSet(plan, originals, opts)

	if opts.DryRun {
		return changes, nil
	}

	return changes, Apply(dir, changes, opts.UI)
}

func readOriginals(dir string, plan *Plan, conventions Conventions) (map[string]*orderedmap.Map, error) {
	parser := document.NewParser(conventions.parserOpts())
	result := map[string]*orderedmap.Map{}

	for _, filePlan := range plan.Projections {
		err := files.ValidateRelativePath(filePlan.Name)
		if err != nil {
			return nil, err
		}

		bs, err := files.NewLocalSource(filePlan.Name, dir).Bytes()
		if err != nil {
			if errors.Is(err, files.ErrNotFound) {
				continue
			}
			return nil, err
		}

		root, err := parser.ParseBytes(bs, filePlan.Name)
		if err != nil {
			return nil, err
		}
		result[filePlan.Name] = root
	}

	return result, nil
}

// Apply writes ADDED and CHANGED documents and removes DELETED ones.
// All documents are serialized before the directory is touched.
func Apply(dir string, changes ChangeSet, ui files.UI) error {
	if ui == nil {
		ui = noopUI{}
	}

	var outputs []files.OutputFile
	var removals []string

	for _, name := range changes.Filenames() {
		change := changes[name]

		switch change.Status {
		case StatusAdded, StatusChanged:
			bs, err := document.Marshal(change.Data)
			if err != nil {
				return fmt.Errorf("Serializing '%s': %w", name, err)
			}
			outputs = append(outputs, files.NewOutputFile(name, bs))

		case StatusDeleted:
			removals = append(removals, name)

		case StatusIgnored:

		default:
			return fmt.Errorf("Unknown change status '%s' for '%s'", change.Status, name)
		}
	}

	return files.NewOutputDirectory(dir, outputs, removals, ui).Write()
}
