// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"sort"
	"strings"
	"text/tabwriter"

	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/spf13/cobra"
)

type SectionsOptions struct {
	ModelFlags
}

func NewSectionsOptions() *SectionsOptions {
	return &SectionsOptions{}
}

func NewSectionsCmd(o *SectionsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List model sections with the files that contribute them",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	o.ModelFlags.Set(cmd)
	return cmd
}

func (o *SectionsOptions) Run() error {
	return o.RunWithUI(o.UI())
}

func (o *SectionsOptions) RunWithUI(ui ui.UI) error {
	cfg, err := o.Config()
	if err != nil {
		return err
	}

	m, err := model.Load(cfg.ModelDir, cfg.LoadOpts(ui))
	if err != nil {
		return err
	}

	var sections []string
	for section := range m.FileInfo.Sections {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	w.Write([]byte("Section\tFile\tContent\n"))

	for _, section := range sections {
		for _, file := range m.FileInfo.Sections[section] {
			desc, _ := m.FileInfo.Descriptor(file, section)
			w.Write([]byte(section + "\t" + file + "\t" + describeGrain(desc) + "\n"))
		}
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	ui.Printf("%s\n%d sections in %d files\n", buf.String(), len(sections), len(m.FileInfo.Files))
	return nil
}

func describeGrain(desc model.SectionDescriptor) string {
	if desc.IsWhole() {
		return "whole"
	}
	if len(desc.Fragments) == 0 {
		return "placeholder"
	}
	var frags []string
	for _, frag := range desc.Fragments {
		frags = append(frags, strings.Join(frag, "."))
	}
	return strings.Join(frags, ", ")
}
