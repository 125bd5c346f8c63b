// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/spf13/cobra"
)

const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

type ShowOptions struct {
	ModelFlags

	Output     string
	Provenance bool
}

func NewShowOptions() *ShowOptions {
	return &ShowOptions{}
}

func NewShowCmd(o *ShowOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Load a model directory and print the model",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.ModelFlags.Set(cmd)
	cmd.Flags().StringVarP(&o.Output, "output", "o", OutputYAML, "Output format (yaml, json)")
	cmd.Flags().BoolVar(&o.Provenance, "provenance", false, "Print the combined {inputModel, fileInfo} document accepted by 'write'")
	return cmd
}

func (o *ShowOptions) Run() error {
	return o.RunWithUI(o.UI())
}

func (o *ShowOptions) RunWithUI(ui ui.UI) error {
	t1 := time.Now()
	defer func() {
		ui.Debugf("total: %s\n", time.Since(t1))
	}()

	cfg, err := o.Config()
	if err != nil {
		return err
	}

	m, err := model.Load(cfg.ModelDir, cfg.LoadOpts(ui))
	if err != nil {
		return err
	}

	var val interface{} = m.InputModel
	if o.Provenance {
		val = m.AsValue()
	}

	out, err := render(val, o.Output)
	if err != nil {
		return err
	}

	ui.Printf("%s", out)
	return nil
}

func render(val interface{}, format string) ([]byte, error) {
	switch format {
	case OutputYAML:
		var buf bytes.Buffer
		err := document.NewPrinter(&buf).Print(val)
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case OutputJSON:
		bs, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		err = json.Indent(&buf, bs, "", "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n")
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("Unknown output format '%s' (expected '%s' or '%s')", format, OutputYAML, OutputJSON)
	}
}
