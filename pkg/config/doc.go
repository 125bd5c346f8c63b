// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package config reads inputmodel settings from an optional TOML file,
a .env file and INPUTMODEL_* environment variables, in that order of
increasing precedence.
*/
package config
