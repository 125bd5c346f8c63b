// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"path/filepath"
	"sync"
)

// dirs is shared by every Server in the process so that two servers on
// the same directory still serialize.
var dirs = &dirLocks{locks: map[string]*sync.Mutex{}}

type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock blocks until dir is free and returns the matching unlock.
func (l *dirLocks) Lock(dir string) func() {
	key := filepath.Clean(dir)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}

	l.mu.Lock()
	lock, found := l.locks[key]
	if !found {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
