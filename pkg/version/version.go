// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the build version, set with -ldflags at release time.
package version

var (
	// Version is overridden via -ldflags "-X carvel.dev/inputmodel/pkg/version.Version=..."
	Version = "develop"
)
