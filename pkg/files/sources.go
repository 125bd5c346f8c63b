// Copyright 2020 VMware, Inc.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
)

type Source interface {
	Description() string
	RelativePath() (string, error)
	Bytes() ([]byte, error)
}

var _ []Source = []Source{BytesSource{}, LocalSource{}}

type BytesSource struct {
	path string
	data []byte
}

func NewBytesSource(path string, data []byte) BytesSource { return BytesSource{path, data} }

func (s BytesSource) Description() string           { return s.path }
func (s BytesSource) RelativePath() (string, error) { return s.path, nil }
func (s BytesSource) Bytes() ([]byte, error)        { return s.data, nil }

// LocalSource reads a document addressed by its slash-separated path
// relative to dir.
type LocalSource struct {
	relPath string
	dir     string
}

func NewLocalSource(relPath, dir string) LocalSource { return LocalSource{relPath, dir} }

func (s LocalSource) Description() string {
	return fmt.Sprintf("file '%s'", s.path())
}

func (s LocalSource) RelativePath() (string, error) { return s.relPath, nil }

func (s LocalSource) Bytes() ([]byte, error) {
	bs, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Reading %s: %w", s.Description(), ErrNotFound)
		}
		return nil, fmt.Errorf("Reading %s: %w", s.Description(), err)
	}
	return bs, nil
}

func (s LocalSource) path() string {
	return filepath.Join(s.dir, filepath.FromSlash(s.relPath))
}
