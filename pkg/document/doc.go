// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package document converts model documents between YAML bytes and
*orderedmap.Map roots.

Every model document is a single YAML mapping. Parsing keeps key order
and resolves aliases; printing uses a fixed two space indent so that files
written by inputmodel look the same regardless of who wrote them last.
*/
package document
