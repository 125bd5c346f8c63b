// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"encoding/json"
	"strings"
	"testing"

	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/model"
	"carvel.dev/inputmodel/pkg/orderedmap"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestModelJSONRoundTrip(t *testing.T) {
	_, m := loadFixture(t, "two_passthroughs")

	bs, err := json.Marshal(m)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(string(bs), `{"inputModel":{"product":{"version":2},"cloud":`), string(bs))
	require.Contains(t, string(bs), `"data/neutron_passthrough.yml":[{"pass-through":[["global","esx_cloud2"]]}]`)
	require.Contains(t, string(bs), `"data/servers.yml":["servers"]`)
	require.Contains(t, string(bs), `"data/disks_osd.yml":[{"disk-models":["OSD-DISKS"]}]`)

	var decoded model.Model
	require.NoError(t, json.Unmarshal(bs, &decoded))

	require.Equal(t, m.FileInfo, decoded.FileInfo)
	require.True(t, orderedmap.Equal(m.InputModel, decoded.InputModel))
	require.Equal(t, m.InputModel.Keys(), decoded.InputModel.Keys())
}

func TestModelJSONRoundTripKeepsDates(t *testing.T) {
	dir := writeModelDir(t, "cloudConfig.yml", `
product:
  version: 2
cloud:
  name: c
  created: 2020-01-01
`)

	m, err := model.Load(dir, model.LoadOpts{})
	require.NoError(t, err)

	bs, err := json.Marshal(m)
	require.NoError(t, err)
	require.Contains(t, string(bs), `"created":"2020-01-01"`)

	var decoded model.Model
	require.NoError(t, json.Unmarshal(bs, &decoded))

	changes, err := model.Write(&decoded, dir, model.WriteOpts{DryRun: true})
	require.NoError(t, err)
	require.Empty(t, changes.Affected())
}

func TestModelYAMLRoundTrip(t *testing.T) {
	_, m := loadFixture(t, "one_passthrough")

	bs, err := yaml.Marshal(m)
	require.NoError(t, err)
	require.Contains(t, string(bs), "fileSectionMap:")

	var decoded model.Model
	require.NoError(t, yaml.Unmarshal(bs, &decoded))

	require.Equal(t, m.FileInfo, decoded.FileInfo)
	require.True(t, orderedmap.Equal(m.InputModel, decoded.InputModel))
}

func TestModelFromDocument(t *testing.T) {
	root, err := document.NewParser(document.ParserOpts{}).ParseBytes([]byte(`
inputModel:
  product: {version: 2}
  servers:
  - id: s1
  - id: s2
fileInfo:
  files: [a.yml, b.yml]
  sections:
    servers: [a.yml, b.yml]
  fileSectionMap:
    a.yml:
    - servers: [s1]
    b.yml:
    - servers: [s2]
    - cloud
`), "model.yml")
	require.NoError(t, err)

	m, err := model.FromValue(root)
	require.NoError(t, err)

	require.Equal(t, []string{"a.yml", "b.yml"}, m.FileInfo.Files)
	require.Equal(t, []model.SectionDescriptor{
		{Section: "servers", Fragments: []model.Fragment{{"s2"}}},
		{Section: "cloud"},
	}, m.FileInfo.FileSectionMap["b.yml"])
	require.Equal(t, []string{"a.yml", "b.yml"}, m.FileInfo.Owners("servers"))
	require.Equal(t, []string{"b.yml"}, m.FileInfo.Owners("cloud"))
}

func TestModelFromValueErrors(t *testing.T) {
	cases := []struct {
		desc   string
		yaml   string
		errMsg string
	}{
		{"not a map", "value: [1]", "Expected model to be a map"},
		{"missing input model", "value: {fileInfo: {}}", "Expected model to have key 'inputModel'"},
		{"bad files", "value: {inputModel: {}, fileInfo: {files: a.yml}}", "Expected files to be a list"},
		{"bad descriptor", "value: {inputModel: {}, fileInfo: {fileSectionMap: {a.yml: [{x: [a], y: [b]}]}}}",
			"Expected section descriptor to have exactly one key"},
		{"bad fragment", "value: {inputModel: {}, fileInfo: {fileSectionMap: {a.yml: [{x: [{a: b}]}]}}}",
			"Expected fragment of section 'x' to be a scalar or a list"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := model.FromValue(parseValue(t, tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestFileInfoDeepCopyIsIndependent(t *testing.T) {
	_, m := loadFixture(t, "two_passthroughs")

	copied := m.FileInfo.DeepCopy()
	require.Equal(t, m.FileInfo, copied)

	copied.Files[0] = "changed.yml"
	copied.FileSectionMap["data/neutron_passthrough.yml"][0].Fragments[0][1] = "changed"

	require.Equal(t, "cloudConfig.yml", m.FileInfo.Files[0])
	require.Equal(t, model.Fragment{"global", "esx_cloud2"},
		m.FileInfo.FileSectionMap["data/neutron_passthrough.yml"][0].Fragments[0])
}
