// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/model"
	"carvel.dev/inputmodel/pkg/watch"
	"github.com/spf13/cobra"
)

type WatchOptions struct {
	ModelFlags
}

func NewWatchOptions() *WatchOptions {
	return &WatchOptions{}
}

func NewWatchCmd(o *WatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload a model directory whenever its documents change",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.ModelFlags.Set(cmd)
	return cmd
}

func (o *WatchOptions) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return o.RunWithUI(ctx, o.UI())
}

func (o *WatchOptions) RunWithUI(ctx context.Context, ui ui.UI) error {
	cfg, err := o.Config()
	if err != nil {
		return err
	}

	loadOpts := cfg.LoadOpts(ui)

	m, err := model.Load(cfg.ModelDir, loadOpts)
	if err != nil {
		ui.Warnf("%s\n", err)
	} else {
		o.report(ui, m)
	}

	w, err := watch.NewWatcher(watch.WatcherOpts{
		Dir:      cfg.ModelDir,
		Debounce: cfg.WatchDebounce,
		LoadOpts: loadOpts,
		OnChange: func(event watch.Event) {
			ui.Printf("changed: %s\n", strings.Join(event.Changed, ", "))
			if event.Err != nil {
				ui.Warnf("%s\n", event.Err)
				return
			}
			o.report(ui, event.Model)
		},
	})
	if err != nil {
		return err
	}

	return w.Run(ctx)
}

func (o *WatchOptions) report(ui ui.UI, m *model.Model) {
	ui.Printf("loaded %d sections from %d files\n", len(m.FileInfo.Sections), len(m.FileInfo.Files))
}
