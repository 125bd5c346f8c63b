// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-version"
	"github.com/joho/godotenv"
)

const (
	DefaultFile = "inputmodel.toml"
	EnvPrefix   = "INPUTMODEL_"

	NamesRandom     = "random"
	NamesSequential = "sequential"
)

type Config struct {
	ModelDir          string
	StampKey          string
	IdentityFields    []string
	Patterns          []string
	Required          []string
	VersionConstraint string
	NewFileDir        string
	Names             string
	AllowMultipleDocs bool

	ListenAddr     string
	RequestTimeout time.Duration
	WatchDebounce  time.Duration
}

func Default() Config {
	return Config{
		ModelDir:       ".",
		StampKey:       model.DefaultStampKey,
		IdentityFields: append([]string{}, model.DefaultIdentityFields...),
		Patterns:       append([]string{}, files.DefaultDocumentPatterns...),
		Required:       []string{"cloudConfig.yml"},
		NewFileDir:     model.DefaultNewFileDir,
		Names:          NamesRandom,
		ListenAddr:     "localhost:9085",
		RequestTimeout: 30 * time.Second,
		WatchDebounce:  500 * time.Millisecond,
	}
}

type LoadOpts struct {
	// Path of the TOML file. Empty means INPUTMODEL_CONFIG, then
	// DefaultFile if it exists.
	Path string
	// EnvFiles are loaded with godotenv; empty means ".env" if present.
	EnvFiles []string
}

func Load(opts LoadOpts) (Config, error) {
	err := loadEnvFiles(opts.EnvFiles)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	path := opts.Path
	if len(path) == 0 {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if len(path) == 0 {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if len(path) > 0 {
		cfg, err = cfg.applyFile(path)
		if err != nil {
			return Config{}, err
		}
	}

	cfg, err = cfg.applyEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func loadEnvFiles(paths []string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("Loading .env: %w", err)
		}
		return nil
	}
	err := godotenv.Load(paths...)
	if err != nil {
		return fmt.Errorf("Loading env files: %w", err)
	}
	return nil
}

type fileConfig struct {
	ModelDir          string   `toml:"model_dir"`
	StampKey          string   `toml:"stamp_key"`
	IdentityFields    []string `toml:"identity_fields"`
	Patterns          []string `toml:"patterns"`
	Required          []string `toml:"required"`
	VersionConstraint string   `toml:"version_constraint"`
	NewFileDir        string   `toml:"new_file_dir"`
	Names             string   `toml:"names"`
	AllowMultipleDocs bool     `toml:"allow_multiple_docs"`
	ListenAddr        string   `toml:"listen_addr"`
	RequestTimeout    string   `toml:"request_timeout"`
	WatchDebounce     string   `toml:"watch_debounce"`
}

func (c Config) applyFile(path string) (Config, error) {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if os.IsNotExist(err) {
			return c, fmt.Errorf("Reading config '%s': %w", path, files.ErrNotFound)
		}
		return c, fmt.Errorf("Reading config '%s': %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return c, fmt.Errorf("Reading config '%s': unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("model_dir") {
		c.ModelDir = strings.TrimSpace(raw.ModelDir)
	}
	if meta.IsDefined("stamp_key") {
		c.StampKey = strings.TrimSpace(raw.StampKey)
	}
	if meta.IsDefined("identity_fields") {
		c.IdentityFields = normalizeList(raw.IdentityFields)
	}
	if meta.IsDefined("patterns") {
		c.Patterns = normalizeList(raw.Patterns)
	}
	if meta.IsDefined("required") {
		c.Required = normalizeList(raw.Required)
	}
	if meta.IsDefined("version_constraint") {
		c.VersionConstraint = strings.TrimSpace(raw.VersionConstraint)
	}
	if meta.IsDefined("new_file_dir") {
		c.NewFileDir = strings.TrimSpace(raw.NewFileDir)
	}
	if meta.IsDefined("names") {
		c.Names = strings.TrimSpace(raw.Names)
	}
	if meta.IsDefined("allow_multiple_docs") {
		c.AllowMultipleDocs = raw.AllowMultipleDocs
	}
	if meta.IsDefined("listen_addr") {
		c.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("request_timeout") {
		c.RequestTimeout, err = time.ParseDuration(strings.TrimSpace(raw.RequestTimeout))
		if err != nil {
			return c, fmt.Errorf("Parsing request_timeout: %w", err)
		}
	}
	if meta.IsDefined("watch_debounce") {
		c.WatchDebounce, err = time.ParseDuration(strings.TrimSpace(raw.WatchDebounce))
		if err != nil {
			return c, fmt.Errorf("Parsing watch_debounce: %w", err)
		}
	}

	return c, nil
}

func (c Config) applyEnv(lookupEnv func(string) (string, bool)) (Config, error) {
	str := func(name string, dst *string) {
		if val, found := lookupEnv(EnvPrefix + name); found {
			*dst = strings.TrimSpace(val)
		}
	}
	list := func(name string, dst *[]string) {
		if val, found := lookupEnv(EnvPrefix + name); found {
			*dst = normalizeList(strings.Split(val, ","))
		}
	}
	boolean := func(name string, dst *bool) error {
		val, found := lookupEnv(EnvPrefix + name)
		if !found {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("Parsing %s%s: %w", EnvPrefix, name, err)
		}
		*dst = parsed
		return nil
	}
	duration := func(name string, dst *time.Duration) error {
		val, found := lookupEnv(EnvPrefix + name)
		if !found {
			return nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("Parsing %s%s: %w", EnvPrefix, name, err)
		}
		*dst = parsed
		return nil
	}

	str("DIR", &c.ModelDir)
	str("STAMP_KEY", &c.StampKey)
	list("IDENTITY_FIELDS", &c.IdentityFields)
	list("PATTERNS", &c.Patterns)
	list("REQUIRED", &c.Required)
	str("VERSION_CONSTRAINT", &c.VersionConstraint)
	str("NEW_FILE_DIR", &c.NewFileDir)
	str("NAMES", &c.Names)
	str("LISTEN_ADDR", &c.ListenAddr)

	if err := boolean("ALLOW_MULTIPLE_DOCS", &c.AllowMultipleDocs); err != nil {
		return c, err
	}
	if err := duration("REQUEST_TIMEOUT", &c.RequestTimeout); err != nil {
		return c, err
	}
	if err := duration("WATCH_DEBOUNCE", &c.WatchDebounce); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []string

	if len(c.ModelDir) == 0 {
		errs = append(errs, "Expected model directory to be non-empty")
	}
	if len(c.StampKey) == 0 {
		errs = append(errs, "Expected stamp key to be non-empty")
	}
	if len(c.IdentityFields) == 0 {
		errs = append(errs, "Expected at least one identity field")
	}
	for _, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Sprintf("Invalid document pattern '%s'", pattern))
		}
	}
	if len(c.VersionConstraint) > 0 {
		if _, err := version.NewConstraint(c.VersionConstraint); err != nil {
			errs = append(errs, fmt.Sprintf("Invalid version constraint '%s': %s", c.VersionConstraint, err))
		}
	}
	if err := files.ValidateRelativePath(c.NewFileDir); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Names != NamesRandom && c.Names != NamesSequential {
		errs = append(errs, fmt.Sprintf("Expected names to be '%s' or '%s', but was '%s'", NamesRandom, NamesSequential, c.Names))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "Expected request timeout to be positive")
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, "Expected watch debounce to be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("Invalid configuration:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c Config) Conventions() model.Conventions {
	return model.Conventions{
		StampKey:          c.StampKey,
		IdentityFields:    c.IdentityFields,
		AllowMultipleDocs: c.AllowMultipleDocs,
	}
}

func (c Config) LoadOpts(ui files.UI) model.LoadOpts {
	return model.LoadOpts{
		Conventions:       c.Conventions(),
		Patterns:          c.Patterns,
		Required:          c.Required,
		VersionConstraint: c.VersionConstraint,
		UI:                ui,
	}
}

func (c Config) WriteOpts(dryRun bool, ui files.UI) model.WriteOpts {
	opts := model.WriteOpts{
		Conventions: c.Conventions(),
		NewFileDir:  c.NewFileDir,
		DryRun:      dryRun,
		UI:          ui,
	}
	if c.Names == NamesSequential {
		opts.Names = model.SequentialNames{}
	}
	return opts
}

func normalizeList(in []string) []string {
	out := []string{}
	for _, item := range in {
		if val := strings.TrimSpace(item); len(val) > 0 {
			out = append(out, val)
		}
	}
	return out
}
