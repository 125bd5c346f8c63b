// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package model reconciles a cloud input model that is split across many
documents with the single logical tree operators edit.

The read path (Load) merges every document of a model directory into one
InputModel and records, in a FileInfo side table, which file contributed
which section, list item or sub-key. Nothing in the tree points back to a
file; the tree can be edited freely.

The write path (Write) projects each original file against the edited
tree, collects the residual content no file owns, hands it to a
PlacementPolicy, and classifies every file as ADDED, CHANGED, DELETED or
IGNORED. The resulting ChangeSet is either returned for inspection (dry
run) or applied to the directory.

	m, err := model.Load(dir, model.LoadOpts{})
	...
	m.InputModel.Set("foo", value)
	changes, err := model.Write(m, dir, model.WriteOpts{DryRun: true})
*/
package model
