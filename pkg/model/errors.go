// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import "errors"

var (
	// ErrLoadConflict is returned when two documents claim the same part
	// of a section (the same mapping key or the same list item identity)
	// or contribute a section with different shapes.
	ErrLoadConflict = errors.New("load conflict")

	// ErrUnsupportedVersion is returned when a document's metadata stamp
	// does not satisfy the configured version constraint.
	ErrUnsupportedVersion = errors.New("unsupported model version")
)
