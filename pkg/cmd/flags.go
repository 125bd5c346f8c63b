// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/config"
	"github.com/spf13/cobra"
)

// ModelFlags locate the model directory and the settings applied to it.
type ModelFlags struct {
	Dir        string
	ConfigPath string
	EnvFiles   []string
	Debug      bool
}

func (f *ModelFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Dir, "dir", "d", "", "Model directory (overrides config)")
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "Path to TOML settings (default inputmodel.toml if present)")
	cmd.Flags().StringSliceVar(&f.EnvFiles, "env-file", nil, "Env file to load before reading INPUTMODEL_* variables (can be specified multiple times)")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "Enable debug output")
}

func (f *ModelFlags) Config() (config.Config, error) {
	cfg, err := config.Load(config.LoadOpts{Path: f.ConfigPath, EnvFiles: f.EnvFiles})
	if err != nil {
		return config.Config{}, err
	}
	if len(f.Dir) > 0 {
		cfg.ModelDir = f.Dir
	}
	return cfg, nil
}

func (f *ModelFlags) UI() ui.UI {
	return ui.NewTTY(f.Debug)
}
