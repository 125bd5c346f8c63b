// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import "errors"

// ErrNotFound is returned when a model directory or a required document
// does not exist, or when a directory holds no documents.
var ErrNotFound = errors.New("not found")
