// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"io"
)

type noopUI struct{}

func (noopUI) Printf(string, ...interface{}) {}
func (noopUI) Debugf(string, ...interface{}) {}
func (noopUI) DebugWriter() io.Writer        { return io.Discard }
