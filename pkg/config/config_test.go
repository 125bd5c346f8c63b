// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carvel.dev/inputmodel/pkg/config"
	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "product", cfg.StampKey)
	require.Equal(t, []string{"cloudConfig.yml"}, cfg.Required)
	require.Equal(t, "data", cfg.NewFileDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, `
model_dir = "/srv/model"
identity_fields = ["zone", " id "]
patterns = ["**/*.yml"]
new_file_dir = "generated"
names = "sequential"
request_timeout = "5s"
`)

	cfg, err := config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.NoError(t, err)

	require.Equal(t, "/srv/model", cfg.ModelDir)
	require.Equal(t, []string{"zone", "id"}, cfg.IdentityFields)
	require.Equal(t, []string{"**/*.yml"}, cfg.Patterns)
	require.Equal(t, "generated", cfg.NewFileDir)
	require.Equal(t, config.NamesSequential, cfg.Names)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)

	// untouched keys keep defaults
	require.Equal(t, "product", cfg.StampKey)
	require.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := config.Load(config.LoadOpts{Path: filepath.Join(dir, "missing.toml"), EnvFiles: emptyEnvFile(t)})
	require.True(t, errors.Is(err, files.ErrNotFound), "got %v", err)

	path := filepath.Join(dir, "unknown.toml")
	writeFile(t, path, "stamp = \"meta\"\n")
	_, err = config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.ErrorContains(t, err, "unknown keys: stamp")

	path = filepath.Join(dir, "duration.toml")
	writeFile(t, path, "watch_debounce = \"soon\"\n")
	_, err = config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.ErrorContains(t, err, "Parsing watch_debounce")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, "stamp_key = \"meta\"\nlisten_addr = \"localhost:1\"\n")

	t.Setenv("INPUTMODEL_STAMP_KEY", "header")
	t.Setenv("INPUTMODEL_REQUIRED", "a.yml, b.yml,")
	t.Setenv("INPUTMODEL_VERSION_CONSTRAINT", ">= 2")

	cfg, err := config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.NoError(t, err)

	require.Equal(t, "header", cfg.StampKey)
	require.Equal(t, "localhost:1", cfg.ListenAddr)
	require.Equal(t, []string{"a.yml", "b.yml"}, cfg.Required)
	require.Equal(t, ">= 2", cfg.VersionConstraint)
}

func TestEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	writeFile(t, envPath, "INPUTMODEL_DIR=/from/env/file\nINPUTMODEL_WATCH_DEBOUNCE=2s\n")

	// godotenv does not override variables already set
	t.Setenv("INPUTMODEL_DIR", "")
	os.Unsetenv("INPUTMODEL_DIR")
	t.Setenv("INPUTMODEL_WATCH_DEBOUNCE", "1s")

	cfg, err := config.Load(config.LoadOpts{Path: emptyConfigFile(t), EnvFiles: []string{envPath}})
	require.NoError(t, err)

	require.Equal(t, "/from/env/file", cfg.ModelDir)
	require.Equal(t, time.Second, cfg.WatchDebounce)

	_, err = config.Load(config.LoadOpts{EnvFiles: []string{filepath.Join(dir, "missing.env")}})
	require.ErrorContains(t, err, "Loading env files")
}

func TestConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, "new_file_dir = \"extra\"\n")

	t.Setenv("INPUTMODEL_CONFIG", path)

	cfg, err := config.Load(config.LoadOpts{EnvFiles: emptyEnvFile(t)})
	require.NoError(t, err)
	require.Equal(t, "extra", cfg.NewFileDir)
}

func TestAllowMultipleDocs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, "allow_multiple_docs = true\n")

	cfg, err := config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.NoError(t, err)
	require.True(t, cfg.AllowMultipleDocs)
	require.True(t, cfg.LoadOpts(nil).AllowMultipleDocs)
	require.True(t, cfg.WriteOpts(true, nil).AllowMultipleDocs)

	t.Setenv("INPUTMODEL_ALLOW_MULTIPLE_DOCS", "false")
	cfg, err = config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.NoError(t, err)
	require.False(t, cfg.AllowMultipleDocs)

	t.Setenv("INPUTMODEL_ALLOW_MULTIPLE_DOCS", "sometimes")
	_, err = config.Load(config.LoadOpts{Path: path, EnvFiles: emptyEnvFile(t)})
	require.ErrorContains(t, err, "Parsing INPUTMODEL_ALLOW_MULTIPLE_DOCS")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		desc   string
		modify func(*config.Config)
		errMsg string
	}{
		{"empty stamp", func(c *config.Config) { c.StampKey = "" }, "stamp key"},
		{"no identity fields", func(c *config.Config) { c.IdentityFields = nil }, "identity field"},
		{"bad pattern", func(c *config.Config) { c.Patterns = []string{"[a-"} }, "Invalid document pattern '[a-'"},
		{"bad constraint", func(c *config.Config) { c.VersionConstraint = "two" }, "Invalid version constraint 'two'"},
		{"escaping new file dir", func(c *config.Config) { c.NewFileDir = "../out" }, "../out"},
		{"unknown names", func(c *config.Config) { c.Names = "uuid" }, "Expected names to be"},
		{"zero timeout", func(c *config.Config) { c.RequestTimeout = 0 }, "request timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := config.Default()
			tc.modify(&cfg)
			require.ErrorContains(t, cfg.Validate(), tc.errMsg)
		})
	}
}

func TestModelOpts(t *testing.T) {
	cfg := config.Default()
	cfg.VersionConstraint = ">= 2"

	loadOpts := cfg.LoadOpts(nil)
	require.Equal(t, "product", loadOpts.StampKey)
	require.Equal(t, []string{"cloudConfig.yml"}, loadOpts.Required)
	require.Equal(t, ">= 2", loadOpts.VersionConstraint)

	writeOpts := cfg.WriteOpts(true, nil)
	require.True(t, writeOpts.DryRun)
	require.Equal(t, "data", writeOpts.NewFileDir)
	require.Nil(t, writeOpts.Names)

	cfg.Names = config.NamesSequential
	require.Equal(t, model.SequentialNames{}, cfg.WriteOpts(false, nil).Names)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func emptyEnvFile(t *testing.T) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.env")
	writeFile(t, path, "")
	return []string{path}
}

func emptyConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.toml")
	writeFile(t, path, "")
	return path
}
