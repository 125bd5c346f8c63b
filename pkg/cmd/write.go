// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/k14s/difflib"
	"github.com/spf13/cobra"
)

type WriteOptions struct {
	ModelFlags

	ModelFile string
	DryRun    bool
	Diff      bool
}

func NewWriteOptions() *WriteOptions {
	return &WriteOptions{}
}

func NewWriteCmd(o *WriteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write an edited model back into its directory",
		Long: `Write an edited model back into its directory.

The model is the combined {inputModel, fileInfo} document printed by
'inputmodel show --provenance' (YAML or JSON), read from a file or stdin ('-').`,
		RunE: func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.ModelFlags.Set(cmd)
	cmd.Flags().StringVarP(&o.ModelFile, "file", "f", "", "Combined model document (use '-' for stdin)")
	cmd.Flags().BoolVar(&o.DryRun, "dry-run", false, "Report the change set without touching any file")
	cmd.Flags().BoolVar(&o.Diff, "diff", false, "Show a diff for every affected file")
	return cmd
}

func (o *WriteOptions) Run() error {
	return o.RunWithUI(o.UI())
}

func (o *WriteOptions) RunWithUI(ui ui.UI) error {
	t1 := time.Now()
	defer func() {
		ui.Debugf("total: %s\n", time.Since(t1))
	}()

	if len(o.ModelFile) == 0 {
		return fmt.Errorf("Expected model file to be specified via --file")
	}

	cfg, err := o.Config()
	if err != nil {
		return err
	}

	modelFile, err := files.NewFileFromPathOrStdin(o.ModelFile)
	if err != nil {
		return err
	}

	bs, err := modelFile.Bytes()
	if err != nil {
		return err
	}

	root, err := document.NewParser(document.ParserOpts{}).ParseBytes(bs, modelFile.Description())
	if err != nil {
		return err
	}

	m, err := model.FromValue(root)
	if err != nil {
		return fmt.Errorf("Reading model from %s: %w", modelFile.Description(), err)
	}

	// Plan without touching disk so that diffs are taken against the
	// original documents.
	changes, err := model.Write(m, cfg.ModelDir, cfg.WriteOpts(true, ui))
	if err != nil {
		return err
	}

	for _, name := range changes.Filenames() {
		change := changes[name]
		if change.Status == model.StatusIgnored {
			ui.Debugf("%s %s\n", change.Status, name)
			continue
		}

		ui.Printf("%s %s\n", change.Status, name)

		if o.Diff {
			diff, err := changeDiff(cfg.ModelDir, name, change)
			if err != nil {
				return err
			}
			ui.Printf("%s\n", diff)
		}
	}

	affected := changes.Affected()

	if o.DryRun {
		ui.Printf("\n%d files would be affected (dry run)\n", len(affected))
		return nil
	}

	err = model.Apply(cfg.ModelDir, changes, ui)
	if err != nil {
		return err
	}

	ui.Printf("\n%d files affected\n", len(affected))
	return nil
}

func changeDiff(dir, name string, change model.Change) (string, error) {
	var before, after string

	bs, err := files.NewLocalSource(name, dir).Bytes()
	switch {
	case err == nil:
		before = string(bs)
	case errors.Is(err, files.ErrNotFound):
	default:
		return "", err
	}

	if change.Status != model.StatusDeleted {
		bs, err := document.Marshal(change.Data)
		if err != nil {
			return "", err
		}
		after = string(bs)
	}

	return difflib.PPDiff(strings.Split(before, "\n"), strings.Split(after, "\n")), nil
}
