// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui provides a thin abstraction over user output (typically, a tty
device).
*/
package ui
