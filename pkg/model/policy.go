// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

// Residual is section content that no recorded descriptor claims.
type Residual struct {
	Section string
	Value   interface{}
	// Owners are the files holding content of the section, in load order.
	// Files carrying only an empty placeholder are left out.
	Owners []OwnerState
}

type OwnerState struct {
	File string
	// Retained counts items (or keys) the file still holds for the
	// section after edits.
	Retained int
}

// Placement names an existing file to merge the residual into, or lists
// chunks of the residual that each become a new file.
type Placement struct {
	Into   string
	Chunks []interface{}
}

type PlacementPolicy interface {
	Place(Residual) Placement
}

// ConventionPolicy mirrors the layout already used for a section:
//
//   - a single owner receives the residual;
//   - a sequence split across files is continued in new files sized like
//     the last owner (one item each when it holds at most one);
//   - anything else goes to one new file.
type ConventionPolicy struct{}

var _ PlacementPolicy = ConventionPolicy{}

func (ConventionPolicy) Place(res Residual) Placement {
	if len(res.Owners) == 1 {
		return Placement{Into: res.Owners[0].File}
	}

	items, isSeq := res.Value.([]interface{})
	if len(res.Owners) == 0 || !isSeq {
		return Placement{Chunks: []interface{}{res.Value}}
	}

	chunkSize := res.Owners[len(res.Owners)-1].Retained
	if chunkSize < 1 {
		chunkSize = 1
	}

	var chunks []interface{}
	for start := 0; start < len(items); start += chunkSize {
		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, append([]interface{}{}, items[start:end]...))
	}
	return Placement{Chunks: chunks}
}

// SingleFilePolicy places every residual into one new file per section,
// regardless of how the section is laid out.
type SingleFilePolicy struct{}

var _ PlacementPolicy = SingleFilePolicy{}

func (SingleFilePolicy) Place(res Residual) Placement {
	return Placement{Chunks: []interface{}{res.Value}}
}
