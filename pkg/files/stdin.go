// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var hasStdinBeenRead bool

// ReadStdin only read stdin once
func ReadStdin() ([]byte, error) {
	if hasStdinBeenRead {
		return nil, fmt.Errorf("Standard input has already been read, has the '-' argument been used in more than one flag?")
	}
	hasStdinBeenRead = true
	return io.ReadAll(os.Stdin)
}

// NewFileFromPathOrStdin returns a File for a local path, or for standard
// input when path is "-".
func NewFileFromPathOrStdin(path string) (*File, error) {
	if path == "-" {
		bs, err := ReadStdin()
		if err != nil {
			return nil, err
		}
		return NewFileFromSource(NewBytesSource("stdin", bs))
	}
	return NewFileFromSource(NewLocalSource(filepath.Base(path), filepath.Dir(path)))
}
