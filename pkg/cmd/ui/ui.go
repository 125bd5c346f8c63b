// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"carvel.dev/inputmodel/pkg/files"
)

// UI is what commands, the server and the watcher write through. The
// model engine only needs the embedded files.UI.
type UI interface {
	files.UI
	Warnf(str string, args ...interface{})
}
