// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"sort"

	"carvel.dev/inputmodel/pkg/orderedmap"
)

type Status string

const (
	StatusAdded   Status = "ADDED"
	StatusChanged Status = "CHANGED"
	StatusDeleted Status = "DELETED"
	StatusIgnored Status = "IGNORED"
)

// Change is the decision for one file. Data holds the full document
// (stamp included) for every status except DELETED.
type Change struct {
	Status Status          `json:"status"`
	Data   *orderedmap.Map `json:"data,omitempty"`
}

// ChangeSet maps relative file names to their change.
type ChangeSet map[string]Change

func (cs ChangeSet) Filenames() []string {
	var result []string
	for name := range cs {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (cs ChangeSet) WithStatus(status Status) []string {
	var result []string
	for _, name := range cs.Filenames() {
		if cs[name].Status == status {
			result = append(result, name)
		}
	}
	return result
}

// Affected lists files that would be written or removed.
func (cs ChangeSet) Affected() []string {
	var result []string
	for _, name := range cs.Filenames() {
		if cs[name].Status != StatusIgnored {
			result = append(result, name)
		}
	}
	return result
}

// BuildChangeSet classifies planned files against their on-disk content.
// A file missing from originals is treated as empty.
func BuildChangeSet(plan *Plan, originals map[string]*orderedmap.Map, opts WriteOpts) ChangeSet {
	opts = opts.withDefaults()
	result := ChangeSet{}

	for _, filePlan := range plan.Projections {
		original := originals[filePlan.Name]
		if original == nil {
			original = orderedmap.NewMap()
		}

		switch {
		case filePlan.Sections.Len() == 0:
			if withoutKey(original, opts.StampKey).Len() > 0 {
				result[filePlan.Name] = Change{Status: StatusDeleted}
			} else {
				result[filePlan.Name] = Change{Status: StatusIgnored, Data: original}
			}

		case sectionsEqual(original, filePlan.Sections, opts.StampKey):
			result[filePlan.Name] = Change{Status: StatusIgnored, Data: original}

		default:
			stamp, hasStamp := original.Get(opts.StampKey)
			if !hasStamp {
				stamp, hasStamp = plan.Stamp, plan.HasStamp
			}
			result[filePlan.Name] = Change{
				Status: StatusChanged,
				Data:   withStamp(filePlan.Sections, opts.StampKey, stamp, hasStamp),
			}
		}
	}

	for _, filePlan := range plan.NewFiles {
		result[filePlan.Name] = Change{
			Status: StatusAdded,
			Data:   withStamp(filePlan.Sections, opts.StampKey, plan.Stamp, plan.HasStamp),
		}
	}

	return result
}

func withStamp(sections *orderedmap.Map, stampKey string, stamp interface{}, hasStamp bool) *orderedmap.Map {
	result := orderedmap.NewMap()
	if hasStamp {
		result.Set(stampKey, orderedmap.DeepCopyValue(stamp))
	}
	sections.Iterate(func(key string, val interface{}) {
		if key != stampKey {
			result.Set(key, val)
		}
	})
	return result
}
