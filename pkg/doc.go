// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of
inputmodel.

inputmodel reads a directory of YAML documents as one logical input model,
remembers which document contributed which part of every section, and writes
an edited model back so that content stays in the document it came from.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

From top-down, code is layered in this way:

# Entry Point

	./cmd/inputmodel           // a command-line tool

# Commands

Commands load configuration, build the engine options and print results.
"serve" and "watch" hand off to the long running surfaces below.

	(1) => pkg/cmd => (8)
	(2) => pkg/cmd/ui => (1)
	(1) => pkg/config => (2)

# Long running surfaces

	(1) => pkg/server => (4)
	(1) => pkg/watch => (2)

# The Model Engine

Loading builds the logical model and its provenance side table (FileInfo).
Writing projects an edited model through that table, places content no
document claims, and classifies every document as ADDED, CHANGED, DELETED or
IGNORED before touching the directory.

	(4) => pkg/model => (3)

# Documents

YAML parsing into ordered maps and printing back out, plus enumerating and
atomically writing documents in a model directory.

	(3) => pkg/document => (1)
	(6) => pkg/files => (0)
	(2) => pkg/orderedmap => (0)

# Utilities

	(1) => pkg/version => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/cmd/ui
	- pkg/config
	- pkg/document
	- pkg/files
	- pkg/model
	- pkg/server
	- pkg/version
	- pkg/watch
	pkg/cmd/ui:
	- pkg/files
	pkg/config:
	- pkg/files
	- pkg/model
	pkg/server:
	- pkg/cmd/ui
	- pkg/document
	- pkg/files
	- pkg/model
	pkg/watch:
	- pkg/files
	- pkg/model
	pkg/model:
	- pkg/document
	- pkg/files
	- pkg/orderedmap
	pkg/document:
	- pkg/orderedmap
*/
package pkg
