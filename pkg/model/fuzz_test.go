// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"sort"
	"testing"

	"carvel.dev/inputmodel/pkg/model"
	"carvel.dev/inputmodel/pkg/orderedmap"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

func TestWriteThenLoadIsStable(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 4).Funcs(
		func(s *string, c fuzz.Continue) {
			const letters = "abcdefghij"
			word := make([]byte, 1+c.Intn(6))
			for i := range word {
				word[i] = letters[c.Intn(len(letters))]
			}
			*s = string(word)
		},
	)

	for i := 0; i < 25; i++ {
		var mappings map[string]map[string]string
		var sequences map[string][]string
		f.Fuzz(&mappings)
		f.Fuzz(&sequences)

		tree := orderedmap.NewMap()
		tree.Set("product", parseValue(t, "value: {version: 2}"))

		for _, section := range sortedKeys(mappings) {
			sectionVal := orderedmap.NewMap()
			for key, val := range mappings[section] {
				sectionVal.Set(key, val)
			}
			tree.Set("m-"+section, sectionVal)
		}
		for _, section := range sortedKeys(sequences) {
			var items []interface{}
			for _, name := range sequences[section] {
				items = append(items, orderedmap.NewMapWithItems([]orderedmap.MapItem{{Key: "name", Value: name}}))
			}
			tree.Set("s-"+section, items)
		}

		dir := t.TempDir()

		changes, err := model.Write(&model.Model{InputModel: tree.DeepCopy()}, dir, model.WriteOpts{})
		require.NoError(t, err)
		require.Len(t, changes.WithStatus(model.StatusAdded), len(mappings)+len(sequences))
		require.Equal(t, changes.WithStatus(model.StatusAdded), changes.Affected())

		loaded, err := model.Load(dir, model.LoadOpts{})
		require.NoError(t, err)
		require.True(t, orderedmap.Equal(tree, loaded.InputModel))

		changes, err = model.Write(loaded, dir, model.WriteOpts{DryRun: true})
		require.NoError(t, err)
		require.Empty(t, changes.Affected())
	}
}

func sortedKeys[T any](m map[string]T) []string {
	var result []string
	for key := range m {
		result = append(result, key)
	}
	sort.Strings(result)
	return result
}
