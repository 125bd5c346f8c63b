// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carvel.dev/inputmodel/pkg/server"
	"github.com/spf13/cobra"
)

type ServeOptions struct {
	ModelFlags

	ListenAddr string
}

func NewServeOptions() *ServeOptions {
	return &ServeOptions{}
}

func NewServeCmd(o *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a model directory over HTTP",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.ModelFlags.Set(cmd)
	cmd.Flags().StringVar(&o.ListenAddr, "listen-addr", "", "Listen address (overrides config)")
	return cmd
}

func (o *ServeOptions) Server() (*server.Server, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}

	listenAddr := cfg.ListenAddr
	if len(o.ListenAddr) > 0 {
		listenAddr = o.ListenAddr
	}

	ui := o.UI()

	opts := server.ServerOpts{
		ListenAddr:     listenAddr,
		ModelDir:       cfg.ModelDir,
		RequestTimeout: cfg.RequestTimeout,
		LoadOpts:       cfg.LoadOpts(ui),
		WriteOpts:      cfg.WriteOpts(false, ui),
		UI:             ui,
	}
	return server.NewServer(opts), nil
}

func (o *ServeOptions) Run() error {
	srv, err := o.Server()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
