// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to the full set of inputmodel's "commands" -- instances of
cobra.Command (not to be confused with ./cmd which contains the bootstrapping
for executing inputmodel).

For a list of commands run:

	$ inputmodel help

Every command that touches a model accepts the same ModelFlags: the model
directory, a TOML settings file and env files feeding INPUTMODEL_* overrides.
*/
package cmd
