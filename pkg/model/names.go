// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const newFileExt = ".yml"

// NameGenerator produces the disambiguating suffix of new file names.
// attempt increases while a generated name is already taken.
type NameGenerator interface {
	Suffix(section string, attempt int) string
}

type RandomNames struct{}

var _ NameGenerator = RandomNames{}

func (RandomNames) Suffix(string, int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

type SequentialNames struct{}

var _ NameGenerator = SequentialNames{}

func (SequentialNames) Suffix(_ string, attempt int) string {
	return strconv.Itoa(attempt + 1)
}

type nameAllocator struct {
	gen   NameGenerator
	taken map[string]struct{}
}

func newNameAllocator(gen NameGenerator, existing []string) *nameAllocator {
	taken := map[string]struct{}{}
	for _, name := range existing {
		taken[name] = struct{}{}
	}
	return &nameAllocator{gen, taken}
}

// Allocate returns <dir>/<section>_<suffix>.yml not used so far.
func (a *nameAllocator) Allocate(dir, section string) string {
	base := fileBaseName(section)

	for attempt := 0; ; attempt++ {
		name := base + "_" + a.gen.Suffix(section, attempt) + newFileExt
		if len(dir) > 0 {
			name = path.Join(dir, name)
		}
		if _, found := a.taken[name]; !found {
			a.taken[name] = struct{}{}
			return name
		}
	}
}

func fileBaseName(section string) string {
	result := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, section)

	result = strings.Trim(result, ".")
	if len(result) == 0 {
		return "section"
	}
	return result
}
