// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a map implementation where the order of keys is
maintained (unlike the native Go map).

This flavor of map is crucial in keeping rewritten model documents stable:
a file that inputmodel writes back keeps the key order its author chose, and
only the sections that actually changed move.
*/
package orderedmap
