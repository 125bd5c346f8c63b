// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"strings"

	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/orderedmap"
	"github.com/hashicorp/go-version"
)

const stampVersionKey = "version"

// Document is a parsed model document addressed by its relative path.
type Document struct {
	Name string
	Root *orderedmap.Map
}

// Load reads every document of dir and merges them into one Model.
// Any missing directory, malformed document or conflict fails the load.
func Load(dir string, opts LoadOpts) (*Model, error) {
	opts = opts.withDefaults()

	docFiles, err := files.NewDocumentFiles(dir, files.DocumentOpts{
		Patterns: opts.Patterns,
		Required: opts.Required,
	})
	if err != nil {
		return nil, err
	}

	docs, err := ReadDocuments(docFiles, opts.Conventions)
	if err != nil {
		return nil, err
	}

	return LoadDocuments(docs, opts)
}

// ReadDocuments parses docFiles in order, naming each by its relative path.
func ReadDocuments(docFiles []*files.File, conventions Conventions) ([]Document, error) {
	parser := document.NewParser(conventions.parserOpts())

	var result []Document
	for _, docFile := range docFiles {
		bs, err := docFile.Bytes()
		if err != nil {
			return nil, err
		}

		root, err := parser.ParseBytes(bs, docFile.RelativePath())
		if err != nil {
			return nil, err
		}

		result = append(result, Document{Name: docFile.RelativePath(), Root: root})
	}
	return result, nil
}

// LoadDocuments merges already parsed documents in the given order.
func LoadDocuments(docs []Document, opts LoadOpts) (*Model, error) {
	opts = opts.withDefaults()

	l := &loader{
		opts:      opts,
		tree:      orderedmap.NewMap(),
		fileInfo:  NewFileInfo(),
		sections:  map[string]*sectionState{},
		docOrders: map[string][]string{},
	}

	if len(opts.VersionConstraint) > 0 {
		constraint, err := version.NewConstraint(opts.VersionConstraint)
		if err != nil {
			return nil, fmt.Errorf("Parsing version constraint '%s': %w", opts.VersionConstraint, err)
		}
		l.constraint = constraint
	}

	for _, doc := range docs {
		err := l.addDocument(doc)
		if err != nil {
			return nil, err
		}
	}

	l.buildDescriptors()

	return &Model{InputModel: l.tree, FileInfo: l.fileInfo}, nil
}

type loader struct {
	opts       LoadOpts
	constraint version.Constraints

	tree     *orderedmap.Map
	fileInfo *FileInfo
	hasStamp bool

	sections  map[string]*sectionState
	docOrders map[string][]string
}

// sectionState tracks who contributed what to one section while loading.
type sectionState struct {
	owners       []string
	placeholders map[string]struct{}
	valueSet     bool

	// sequence sections
	identities map[string]string
	fileItems  map[string][]string

	// mapping sections
	owner *ownerNode
}

func (l *loader) addDocument(doc Document) error {
	if l.fileInfo.HasFile(doc.Name) {
		return fmt.Errorf("Document '%s' was loaded more than once", doc.Name)
	}

	l.opts.UI.Debugf("loading: %s\n", doc.Name)
	l.fileInfo.Files = append(l.fileInfo.Files, doc.Name)

	return doc.Root.IterateErr(func(key string, val interface{}) error {
		if key == l.opts.StampKey {
			return l.addStamp(doc.Name, val)
		}
		l.docOrders[doc.Name] = append(l.docOrders[doc.Name], key)
		return l.addSection(doc.Name, key, val)
	})
}

func (l *loader) addStamp(docName string, stamp interface{}) error {
	if l.constraint != nil {
		err := l.checkVersion(docName, stamp)
		if err != nil {
			return err
		}
	}
	if !l.hasStamp {
		l.tree.Set(l.opts.StampKey, orderedmap.DeepCopyValue(stamp))
		l.hasStamp = true
	}
	return nil
}

func (l *loader) checkVersion(docName string, stamp interface{}) error {
	typedStamp, ok := stamp.(*orderedmap.Map)
	if !ok {
		return fmt.Errorf("Document '%s': expected '%s' to be a map, but was %T: %w",
			docName, l.opts.StampKey, stamp, ErrUnsupportedVersion)
	}

	verVal, found := typedStamp.Get(stampVersionKey)
	if !found || verVal == nil {
		return fmt.Errorf("Document '%s': expected '%s' to have key '%s': %w",
			docName, l.opts.StampKey, stampVersionKey, ErrUnsupportedVersion)
	}

	ver, err := version.NewVersion(fmt.Sprintf("%v", verVal))
	if err != nil {
		return fmt.Errorf("Document '%s': parsing version '%v': %s: %w", docName, verVal, err, ErrUnsupportedVersion)
	}

	if !l.constraint.Check(ver) {
		return fmt.Errorf("Document '%s': version '%s' does not satisfy '%s': %w",
			docName, ver, l.constraint, ErrUnsupportedVersion)
	}
	return nil
}

func (l *loader) addSection(docName, section string, val interface{}) error {
	state, found := l.sections[section]
	if !found {
		state = &sectionState{
			placeholders: map[string]struct{}{},
			identities:   map[string]string{},
			fileItems:    map[string][]string{},
		}
		l.sections[section] = state
		l.tree.Set(section, nil)
	}

	state.owners = append(state.owners, docName)
	l.fileInfo.Sections[section] = append(l.fileInfo.Sections[section], docName)

	existing, _ := l.tree.Get(section)

	if val == nil {
		if state.valueSet && kindOf(existing) == scalarKind {
			return l.conflict(section, nil, docName)
		}
		state.placeholders[docName] = struct{}{}
		return nil
	}

	if !state.valueSet {
		state.valueSet = true
		l.tree.Set(section, orderedmap.DeepCopyValue(val))

		switch typedVal := val.(type) {
		case []interface{}:
			return l.addItems(state, section, docName, typedVal)
		case *orderedmap.Map:
			state.owner = &ownerNode{file: docName}
			return nil
		default:
			if len(state.owners) > 1 {
				return l.conflict(section, nil, docName)
			}
			return nil
		}
	}

	if kindOf(existing) != kindOf(val) {
		return fmt.Errorf("Section '%s' in '%s' is a %s, but was a %s in '%s': %w",
			section, docName, kindOf(val), kindOf(existing), l.lastValueOwner(state, docName), ErrLoadConflict)
	}

	switch typedVal := val.(type) {
	case []interface{}:
		err := l.addItems(state, section, docName, typedVal)
		if err != nil {
			return err
		}
		items := existing.([]interface{})
		for _, item := range typedVal {
			items = append(items, orderedmap.DeepCopyValue(item))
		}
		l.tree.Set(section, items)
		return nil

	case *orderedmap.Map:
		return state.owner.merge(existing.(*orderedmap.Map), typedVal, docName, []string{section})

	default:
		return l.conflict(section, nil, docName)
	}
}

func (l *loader) addItems(state *sectionState, section, docName string, items []interface{}) error {
	ident := identifier{l.opts.IdentityFields}

	for _, item := range items {
		id, err := ident.Identity(item)
		if err != nil {
			return err
		}
		if prevDoc, found := state.identities[id]; found {
			if prevDoc == docName {
				continue
			}
			return fmt.Errorf("Section '%s' item '%s' is contributed by both '%s' and '%s': %w",
				section, id, prevDoc, docName, ErrLoadConflict)
		}
		state.identities[id] = docName
		state.fileItems[docName] = append(state.fileItems[docName], id)
	}
	return nil
}

func (l *loader) lastValueOwner(state *sectionState, docName string) string {
	for i := len(state.owners) - 1; i >= 0; i-- {
		owner := state.owners[i]
		if _, found := state.placeholders[owner]; !found && owner != docName {
			return owner
		}
	}
	for _, owner := range state.owners {
		if owner != docName {
			return owner
		}
	}
	return ""
}

func (l *loader) conflict(section string, path []string, docName string) error {
	return fmt.Errorf("Section '%s' is contributed by both '%s' and '%s': %w",
		strings.Join(append([]string{section}, path...), "."), l.lastValueOwner(l.sections[section], docName),
		docName, ErrLoadConflict)
}

// buildDescriptors records each file's sections in the file's own order,
// at the finest grain observed across all files.
func (l *loader) buildDescriptors() {
	for _, docName := range l.fileInfo.Files {
		descs := []SectionDescriptor{}

		for _, section := range l.docOrders[docName] {
			state := l.sections[section]

			if len(state.owners) == 1 {
				descs = append(descs, SectionDescriptor{Section: section})
				continue
			}

			desc := SectionDescriptor{Section: section, Fragments: []Fragment{}}

			if _, found := state.placeholders[docName]; !found {
				switch {
				case state.owner != nil:
					val, _ := l.tree.Get(section)
					state.owner.split(val.(*orderedmap.Map))
					desc.Fragments = append(desc.Fragments, state.owner.fragments(docName, nil)...)
				default:
					for _, id := range state.fileItems[docName] {
						desc.Fragments = append(desc.Fragments, Fragment{id})
					}
				}
			}

			descs = append(descs, desc)
		}

		l.fileInfo.FileSectionMap[docName] = descs
	}
}

// ownerNode records which file owns a mapping subtree. A node with a file
// owns everything below it; otherwise ownership is held by its children.
// Shells are files that contributed this map while it was empty.
type ownerNode struct {
	file     string
	shells   []string
	keys     []string
	children map[string]*ownerNode
}

func (n *ownerNode) split(current *orderedmap.Map) {
	if n.file == "" {
		return
	}
	prevFile := n.file
	n.file = ""
	n.children = map[string]*ownerNode{}
	if current.Len() == 0 {
		n.addShell(prevFile)
	}
	for _, key := range current.Keys() {
		n.addChild(key, &ownerNode{file: prevFile})
	}
}

func (n *ownerNode) addShell(docName string) {
	for _, shell := range n.shells {
		if shell == docName {
			return
		}
	}
	n.shells = append(n.shells, docName)
}

func (n *ownerNode) addChild(key string, child *ownerNode) {
	n.keys = append(n.keys, key)
	n.children[key] = child
}

func (n *ownerNode) merge(dst, src *orderedmap.Map, docName string, path []string) error {
	n.split(dst)
	if src.Len() == 0 {
		n.addShell(docName)
	}

	return src.IterateErr(func(key string, val interface{}) error {
		existing, found := dst.Get(key)
		if !found {
			dst.Set(key, orderedmap.DeepCopyValue(val))
			n.addChild(key, &ownerNode{file: docName})
			return nil
		}

		child := n.children[key]
		typedExisting, existingIsMap := existing.(*orderedmap.Map)
		typedVal, valIsMap := val.(*orderedmap.Map)
		if !existingIsMap || !valIsMap {
			return fmt.Errorf("Section '%s' is contributed by both '%s' and '%s': %w",
				strings.Join(append(path, key), "."), child.anyFile(), docName, ErrLoadConflict)
		}

		return child.merge(typedExisting, typedVal, docName, append(append([]string{}, path...), key))
	})
}

func (n *ownerNode) fragments(docName string, path []string) []Fragment {
	if n.file != "" {
		if n.file == docName && len(path) > 0 {
			return []Fragment{append(Fragment{}, path...)}
		}
		return nil
	}

	var result []Fragment
	if len(path) > 0 {
		for _, shell := range n.shells {
			if shell == docName {
				result = append(result, append(Fragment{}, path...))
			}
		}
	}
	for _, key := range n.keys {
		childPath := append(append([]string{}, path...), key)
		result = append(result, n.children[key].fragments(docName, childPath)...)
	}
	return result
}

func (n *ownerNode) anyFile() string {
	if n.file != "" {
		return n.file
	}
	for _, key := range n.keys {
		if file := n.children[key].anyFile(); file != "" {
			return file
		}
	}
	if len(n.shells) > 0 {
		return n.shells[0]
	}
	return ""
}
