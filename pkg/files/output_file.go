// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
)

type OutputFile struct {
	relativePath string
	data         []byte
}

func NewOutputFile(relativePath string, data []byte) OutputFile {
	return OutputFile{relativePath, data}
}

func (f OutputFile) RelativePath() string { return f.relativePath }
func (f OutputFile) Bytes() []byte        { return f.data }

func (f OutputFile) Path(dirPath string) string {
	return filepath.Join(dirPath, filepath.FromSlash(f.relativePath))
}

// Create writes the file through a temporary sibling and renames it into
// place so that readers never observe a half written document.
func (f OutputFile) Create(dirPath string) error {
	resultPath := f.Path(dirPath)

	err := os.MkdirAll(filepath.Dir(resultPath), 0755)
	if err != nil {
		return err
	}

	fd, err := os.CreateTemp(filepath.Dir(resultPath), "."+filepath.Base(resultPath)+".*")
	if err != nil {
		return err
	}

	tmpPath := fd.Name()
	defer os.Remove(tmpPath)

	_, err = fd.Write(f.data)
	if closeErr := fd.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("Writing '%s': %w", resultPath, err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}

	return os.Rename(tmpPath, resultPath)
}

// RemoveFile deletes the document at relativePath under dirPath.
func RemoveFile(dirPath, relativePath string) error {
	err := os.Remove(filepath.Join(dirPath, filepath.FromSlash(relativePath)))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("Removing '%s': %w", relativePath, ErrNotFound)
		}
		return fmt.Errorf("Removing '%s': %w", relativePath, err)
	}
	return nil
}
