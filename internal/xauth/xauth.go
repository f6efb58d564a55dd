// Copyright 2026 The xseatd Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package xauth writes and removes the X authority file that backs a
// running display, spec.md §4.C. The X authority wire format itself is
// out of scope (spec.md Non-goals); this package only owns the file's
// lifecycle relative to the server it belongs to.
package xauth

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Record is the external X authority codec collaborator contract named
// in spec.md §6: "X authority writer: write(record, mode=REPLACE,
// path)". Its on-disk format is not this package's concern.
type Record interface {
	WriteReplace(path string) error
}

// Writer materializes an in-memory authority Record to a file under a
// runtime directory and deletes it on stop. It is spec.md's
// AuthorityArtifact plus the ensure_written/remove operations of §4.C.
type Writer struct {
	runDir string
	path   string
}

// New returns a Writer rooted at runDir (LightDM.run-directory).
func New(runDir string) *Writer {
	return &Writer{runDir: runDir}
}

// Path returns the path last written, or "" if none.
func (w *Writer) Path() string {
	return w.path
}

// EnsureWritten writes record to <run-directory>/root/<address>. The
// path is computed on the first call and cached; every call, including
// later ones, rewrites the file at that path. A nil record is a no-op.
// Failures to create the parent directory or write the file are logged
// as warnings and leave Path() empty, so the caller proceeds without
// authentication, per spec.md §7's AuthorityDirFailed/AuthorityWriteFailed
// policy.
func (w *Writer) EnsureWritten(record Record, address string, log *logrus.Entry) {
	if record == nil {
		return
	}

	if w.path == "" {
		dir := filepath.Join(w.runDir, "root")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.WithError(err).Warnf("failed to make authority directory %s", dir)
			return
		}
		w.path = filepath.Join(dir, address)
	}

	log.Debugf("writing X server authority to %s", w.path)
	if err := record.WriteReplace(w.path); err != nil {
		log.WithError(err).Warn("failed to write authority")
		w.path = ""
	}
}

// Remove unlinks the last-written authority file, if any, and forgets
// the path. Always safe to call; failures are logged, never raised
// (spec.md §4.C).
func (w *Writer) Remove(log *logrus.Entry) {
	if w.path == "" {
		return
	}
	log.Debugf("removing X server authority %s", w.path)
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to remove authority file")
	}
	w.path = ""
}
