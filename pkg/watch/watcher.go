// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package watch reloads a model directory whenever its documents change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Event is delivered after a burst of changes has settled. Exactly one of
// Model and Err is set.
type Event struct {
	// Changed lists relative paths of documents touched since the last event.
	Changed []string
	Model   *model.Model
	Err     error
}

type WatcherOpts struct {
	Dir      string
	Debounce time.Duration
	LoadOpts model.LoadOpts
	// OnChange is called from the watcher goroutine, one event at a time.
	OnChange func(Event)
}

type Watcher struct {
	opts    WatcherOpts
	watcher *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
	// last time an event was added to pending
	lastEvent time.Time
}

func NewWatcher(opts WatcherOpts) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OnChange == nil {
		opts.OnChange = func(Event) {}
	}
	if len(opts.LoadOpts.Patterns) == 0 {
		opts.LoadOpts.Patterns = files.DefaultDocumentPatterns
	}

	info, err := os.Stat(opts.Dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("Model directory '%s': %w", opts.Dir, files.ErrNotFound)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		opts:    opts,
		watcher: fsw,
		pending: map[string]fsnotify.Op{},
	}

	err = w.addWatchesRecursive(opts.Dir)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w.ui().Debugf("watching: %s\n", opts.Dir)

	return w, nil
}

// Run delivers events until ctx is done and then releases the watches.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.opts.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.ui().Debugf("watch error: %s\n", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// documents may be created in the new directory before the
			// watch is in place, so the whole tree is reloaded
			err := w.addWatchesRecursive(event.Name)
			if err != nil {
				w.ui().Debugf("watch error: %s\n", err)
			}
			w.addPending(event.Name, event.Op)
			return
		}
	}

	relPath, err := filepath.Rel(w.opts.Dir, event.Name)
	if err != nil || !w.isDocument(filepath.ToSlash(relPath)) {
		return
	}
	w.addPending(event.Name, event.Op)
}

func (w *Watcher) isDocument(relPath string) bool {
	for _, pattern := range w.opts.LoadOpts.Patterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) addPending(path string, op fsnotify.Op) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] |= op
	w.lastEvent = time.Now()
}

// flushPending reloads once no event arrived for a full debounce period.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 || time.Since(w.lastEvent) < w.opts.Debounce {
		w.pendingMu.Unlock()
		return
	}

	var changed []string
	for path := range w.pending {
		relPath, err := filepath.Rel(w.opts.Dir, path)
		if err != nil {
			relPath = path
		}
		changed = append(changed, filepath.ToSlash(relPath))
	}
	w.pending = map[string]fsnotify.Op{}
	w.pendingMu.Unlock()

	sort.Strings(changed)

	m, err := model.Load(w.opts.Dir, w.opts.LoadOpts)
	w.opts.OnChange(Event{Changed: changed, Model: m, Err: err})
}

func (w *Watcher) ui() files.UI {
	if w.opts.LoadOpts.UI == nil {
		return noopUI{}
	}
	return w.opts.LoadOpts.UI
}
