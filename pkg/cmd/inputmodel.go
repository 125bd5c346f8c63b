// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/inputmodel/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type InputModelOptions struct{}

func NewDefaultInputModelOptions() *InputModelOptions {
	return &InputModelOptions{}
}

func NewDefaultInputModelCmd() *cobra.Command {
	return NewInputModelCmd(NewDefaultInputModelOptions())
}

func NewInputModelCmd(o *InputModelOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inputmodel",
		Version: version.Version,
		Short:   "inputmodel reads and writes a cloud input model split across YAML files",
		Long: `inputmodel reads and writes a cloud input model split across YAML files.

Every document in the model directory contributes top level sections to one
logical model. Edits to the model are written back into the files the content
came from, new content is placed next to its peers.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewShowCmd(NewShowOptions()))
	cmd.AddCommand(NewSectionsCmd(NewSectionsOptions()))
	cmd.AddCommand(NewWriteCmd(NewWriteOptions()))
	cmd.AddCommand(NewServeCmd(NewServeOptions()))
	cmd.AddCommand(NewWatchCmd(NewWatchOptions()))
	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
