// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"path"
	"strings"
)

var (
	suspiciousOutputDirectoryPaths = []string{"/", ""}
)

// OutputDirectory applies a set of document writes and removals to an
// existing model directory. Documents not named are left untouched.
type OutputDirectory struct {
	path     string
	files    []OutputFile
	removals []string
	ui       UI
}

func NewOutputDirectory(path string, files []OutputFile, removals []string, ui UI) *OutputDirectory {
	return &OutputDirectory{path, files, removals, ui}
}

func (d *OutputDirectory) Files() []OutputFile { return d.files }
func (d *OutputDirectory) Removals() []string  { return d.removals }

func (d *OutputDirectory) Write() error {
	err := d.validate()
	if err != nil {
		return err
	}

	for _, file := range d.files {
		d.ui.Debugf("writing: %s\n", file.Path(d.path))

		err := file.Create(d.path)
		if err != nil {
			return err
		}
	}

	for _, relPath := range d.removals {
		d.ui.Debugf("removing: %s\n", relPath)

		err := RemoveFile(d.path, relPath)
		if err != nil {
			return err
		}
	}

	return nil
}

func (d *OutputDirectory) validate() error {
	for _, suspicious := range suspiciousOutputDirectoryPaths {
		if d.path == suspicious {
			return fmt.Errorf("Expected output directory path to not be one of '%s'",
				strings.Join(suspiciousOutputDirectoryPaths, "', '"))
		}
	}

	filePaths := map[string]struct{}{}

	check := func(relPath string) error {
		if err := ValidateRelativePath(relPath); err != nil {
			return err
		}
		if _, found := filePaths[relPath]; found {
			return fmt.Errorf("Multiple changes have same destination path: %s", relPath)
		}
		filePaths[relPath] = struct{}{}
		return nil
	}

	for _, file := range d.files {
		if err := check(file.RelativePath()); err != nil {
			return err
		}
	}
	for _, relPath := range d.removals {
		if err := check(relPath); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRelativePath rejects paths that would resolve outside of the
// model directory.
func ValidateRelativePath(relPath string) error {
	if relPath == "" || path.IsAbs(relPath) || strings.HasPrefix(relPath, "\\") {
		return fmt.Errorf("Expected document path '%s' to be relative", relPath)
	}
	cleaned := path.Clean(relPath)
	if cleaned != relPath || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("Expected document path '%s' to be clean and inside the model directory", relPath)
	}
	return nil
}
