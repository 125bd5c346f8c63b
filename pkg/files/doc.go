// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files provides primitives for enumerating and loading the documents
of a model directory and for writing documents back to it.

This allows the rest of inputmodel to process a directory as an ordered list
of named byte sources without becoming entangled in the details of how to
read or write them.

Documents are addressed by their slash-separated path relative to the model
directory (e.g. "data/servers.yml"); that relative path is the identity used
by the provenance index.
*/
package files
