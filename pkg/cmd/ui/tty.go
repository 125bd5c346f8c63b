// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TTY writes to stdout and stderr. Writes from concurrent goroutines
// (server handlers, watcher callbacks) are serialized.
type TTY struct {
	debug  bool
	stdout io.Writer
	stderr io.Writer
	mu     *sync.Mutex
}

var _ UI = TTY{}

func NewTTY(debug bool) TTY {
	return NewCustomWriterTTY(debug, nil, nil)
}

// NewCustomWriterTTY is used in tests to capture output.
func NewCustomWriterTTY(debug bool, stdout, stderr io.Writer) TTY {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return TTY{debug, stdout, stderr, &sync.Mutex{}}
}

func (t TTY) Printf(str string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.stdout, str, args...)
}

func (t TTY) Warnf(str string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.stderr, "Warning: "+str, args...)
}

func (t TTY) Debugf(str string, args ...interface{}) {
	if t.debug {
		t.mu.Lock()
		defer t.mu.Unlock()
		fmt.Fprintf(t.stderr, str, args...)
	}
}

func (t TTY) DebugWriter() io.Writer {
	if t.debug {
		return lockedWriter{t.stderr, t.mu}
	}
	return io.Discard
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (w lockedWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(data)
}
