// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"path"

	"carvel.dev/inputmodel/pkg/orderedmap"
)

// FilePlan is the expected set of sections of one file. The stamp is not
// included; it is added when building the change set.
type FilePlan struct {
	Name     string
	Sections *orderedmap.Map
}

type Plan struct {
	Stamp    interface{}
	HasStamp bool

	// Projections has one entry per original file, in load order,
	// including files whose projection is empty.
	Projections []FilePlan
	NewFiles    []FilePlan
}

type Planner struct {
	opts WriteOpts
}

func NewPlanner(opts WriteOpts) *Planner {
	return &Planner{opts.withDefaults()}
}

// Plan projects every original file against the edited tree and places
// whatever content no file claims.
func (p *Planner) Plan(m *Model) (*Plan, error) {
	tree := m.InputModel.DeepCopy()
	if tree == nil {
		tree = orderedmap.NewMap()
	}
	fileInfo := m.FileInfo
	if fileInfo == nil {
		fileInfo = NewFileInfo()
	}

	proj := projector{tree: tree, fileInfo: fileInfo, ident: identifier{p.opts.IdentityFields}}

	plan := &Plan{}
	plan.Stamp, plan.HasStamp = tree.Get(p.opts.StampKey)

	projections := map[string]*orderedmap.Map{}

	for _, file := range fileInfo.Files {
		sections, err := proj.Project(file)
		if err != nil {
			return nil, fmt.Errorf("Projecting '%s': %w", file, err)
		}
		projections[file] = sections
		plan.Projections = append(plan.Projections, FilePlan{Name: file, Sections: sections})
	}

	names := newNameAllocator(p.opts.Names, fileInfo.Files)

	err := tree.IterateErr(func(section string, _ interface{}) error {
		if section == p.opts.StampKey {
			return nil
		}

		owners := fileInfo.Owners(section)

		var descs []SectionDescriptor
		for _, owner := range owners {
			desc, _ := fileInfo.Descriptor(owner, section)
			descs = append(descs, desc)
		}

		residual, found, err := proj.Residual(section, descs)
		if err != nil {
			return fmt.Errorf("Calculating new content of section '%s': %w", section, err)
		}
		if !found {
			return nil
		}

		holders := contentOwners(owners, descs)

		if len(holders) > 2 {
			p.opts.UI.Debugf("section '%s' is split across %d files, following layout of '%s'\n",
				section, len(holders), holders[len(holders)-1])
		}

		res := Residual{Section: section, Value: residual}
		for _, owner := range holders {
			val, _ := projections[owner].Get(section)
			res.Owners = append(res.Owners, OwnerState{File: owner, Retained: sizeOf(val)})
		}

		placement := p.opts.Policy.Place(res)

		if len(placement.Into) > 0 {
			target, found := projections[placement.Into]
			if !found {
				return fmt.Errorf("Expected section '%s' to be placed into a known file, but was '%s'",
					section, placement.Into)
			}
			p.opts.UI.Debugf("placing new content of section '%s' into %s\n", section, placement.Into)

			existing, _ := target.Get(section)
			target.Set(section, mergeValues(existing, residual))
			return nil
		}

		dir := p.newFileDir(holders)

		for _, chunk := range placement.Chunks {
			name := names.Allocate(dir, section)
			p.opts.UI.Debugf("placing new content of section '%s' into new file %s\n", section, name)

			sections := orderedmap.NewMap()
			sections.Set(section, chunk)
			plan.NewFiles = append(plan.NewFiles, FilePlan{Name: name, Sections: sections})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// contentOwners leaves out files that only carry an empty placeholder for
// the section, unless every owner does.
func contentOwners(owners []string, descs []SectionDescriptor) []string {
	var result []string
	for i, owner := range owners {
		if descs[i].IsWhole() || len(descs[i].Fragments) > 0 {
			result = append(result, owner)
		}
	}
	if len(result) == 0 {
		return owners
	}
	return result
}

// newFileDir keeps new files next to the section's last owner unless that
// owner sits at the top of the model directory.
func (p *Planner) newFileDir(owners []string) string {
	if len(owners) > 0 {
		dir := path.Dir(owners[len(owners)-1])
		if dir != "." {
			return dir
		}
	}
	return p.opts.NewFileDir
}
