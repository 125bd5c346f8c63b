// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/model"
	"carvel.dev/inputmodel/pkg/orderedmap"
	"github.com/stretchr/testify/require"
)

var fixtureVariants = []string{"no_passthrough", "one_passthrough", "two_passthroughs"}

// loadFixture copies the shared fixture plus a variant overlay into a
// temporary directory and loads it.
func loadFixture(t *testing.T, variant string) (string, *model.Model) {
	t.Helper()

	dir := t.TempDir()
	copyDir(t, filepath.Join("testdata", "base"), dir)
	if variant != "no_passthrough" {
		copyDir(t, filepath.Join("testdata", variant), dir)
	}

	m, err := model.Load(dir, model.LoadOpts{Required: []string{"cloudConfig.yml"}})
	require.NoError(t, err)
	return dir, m
}

func copyDir(t *testing.T, src, dst string) {
	t.Helper()

	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return os.MkdirAll(filepath.Join(dst, relPath), 0755)
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dst, relPath), bs, 0644)
	})
	require.NoError(t, err)
}

// writeModelDir writes name/content pairs into a temporary directory.
func writeModelDir(t *testing.T, nameAndContents ...string) string {
	t.Helper()
	require.True(t, len(nameAndContents)%2 == 0)

	dir := t.TempDir()
	for i := 0; i < len(nameAndContents); i += 2 {
		path := filepath.Join(dir, filepath.FromSlash(nameAndContents[i]))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(strings.TrimLeft(nameAndContents[i+1], "\n")), 0644))
	}
	return dir
}

// snapshotDir returns every file's content keyed by slash path.
func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()

	result := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		result[filepath.ToSlash(relPath)] = string(bs)
		return nil
	})
	require.NoError(t, err)
	return result
}

func parseDocs(t *testing.T, nameAndContents ...string) []model.Document {
	t.Helper()
	require.True(t, len(nameAndContents)%2 == 0)

	parser := document.NewParser(document.ParserOpts{})

	var result []model.Document
	for i := 0; i < len(nameAndContents); i += 2 {
		root, err := parser.ParseBytes([]byte(strings.TrimLeft(nameAndContents[i+1], "\n")), nameAndContents[i])
		require.NoError(t, err)
		result = append(result, model.Document{Name: nameAndContents[i], Root: root})
	}
	return result
}

func parseValue(t *testing.T, yamlStr string) interface{} {
	t.Helper()

	root, err := document.NewParser(document.ParserOpts{}).ParseBytes([]byte(yamlStr), "value.yml")
	require.NoError(t, err)

	val, found := root.Get("value")
	require.True(t, found)
	return val
}

func sectionItems(t *testing.T, m *orderedmap.Map, section string) []interface{} {
	t.Helper()

	val, found := m.Get(section)
	require.True(t, found, "section %s", section)
	items, ok := val.([]interface{})
	require.True(t, ok, "section %s is %T", section, val)
	return items
}

func sectionMap(t *testing.T, m *orderedmap.Map, section string) *orderedmap.Map {
	t.Helper()

	val, found := m.Get(section)
	require.True(t, found, "section %s", section)
	typedVal, ok := val.(*orderedmap.Map)
	require.True(t, ok, "section %s is %T", section, val)
	return typedVal
}

func itemField(t *testing.T, item interface{}, field string) interface{} {
	t.Helper()

	typedItem, ok := item.(*orderedmap.Map)
	require.True(t, ok, "item is %T", item)
	val, _ := typedItem.Get(field)
	return val
}
