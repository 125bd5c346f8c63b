// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

var DefaultDocumentPatterns = []string{"**/*.yml", "**/*.yaml"}

type DocumentOpts struct {
	// Patterns are doublestar patterns relative to the model directory.
	Patterns []string
	// Required documents must be present among the matched documents.
	Required []string
}

type File struct {
	src     Source
	relPath string
}

// NewDocumentFiles lists documents under dir that match opts.Patterns,
// sorted by relative path. The sort order is the order in which the model
// loader sees documents.
func NewDocumentFiles(dir string, opts DocumentOpts) ([]*File, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Model directory '%s': %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("Checking model directory '%s': %w", dir, err)
	}
	if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Expected '%s' to be a directory: %w", dir, ErrNotFound)
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultDocumentPatterns
	}

	fsys := os.DirFS(dir)
	selected := map[string]struct{}{}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("Invalid document pattern '%s'", pattern)
		}

		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("Listing documents '%s' in '%s': %w", pattern, dir, err)
		}

		for _, match := range matches {
			entry, err := fs.Stat(fsys, match)
			if err != nil {
				return nil, fmt.Errorf("Checking document '%s': %w", match, err)
			}
			if entry.IsDir() {
				continue
			}
			selected[match] = struct{}{}
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("Expected model directory '%s' to contain documents: %w", dir, ErrNotFound)
	}

	for _, required := range opts.Required {
		if _, found := selected[path.Clean(required)]; !found {
			return nil, fmt.Errorf("Required document '%s' in '%s': %w", required, dir, ErrNotFound)
		}
	}

	var selectedPaths []string
	for relPath := range selected {
		selectedPaths = append(selectedPaths, relPath)
	}
	sort.Strings(selectedPaths)

	var result []*File
	for _, relPath := range selectedPaths {
		file, err := NewFileFromSource(NewLocalSource(relPath, dir))
		if err != nil {
			return nil, err
		}
		result = append(result, file)
	}

	return result, nil
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func (r *File) Description() string    { return r.src.Description() }
func (r *File) RelativePath() string   { return r.relPath }
func (r *File) Bytes() ([]byte, error) { return r.src.Bytes() }

