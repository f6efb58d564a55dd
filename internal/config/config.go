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

// Package config is the read-only configuration store collaborator named
// in spec.md §6: a section/key document holding the LightDM.* settings
// that the rest of the daemon consults (minimum display number, run and
// log directories, log rotation mode, and the optional per-display
// cgroup knobs).
package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/mattbaird/jsonpatch"

	"github.com/seatkeeper/xseatd/internal/xlog"
)

// Store is a read-only, reloadable TOML document of [Section] Key = value
// pairs. The zero value is an empty store whose getters fall back to
// their documented defaults.
type Store struct {
	mu   sync.RWMutex
	path string
	doc  map[string]map[string]any
}

// Load reads a TOML document from path. An empty path is not an error:
// callers get a Store that serves defaults. A non-empty path that does
// not exist or cannot be decoded is reported as an error.
func Load(path string) (*Store, error) {
	s := &Store{path: path, doc: map[string]map[string]any{}}
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s.doc); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return s, nil
}

// Reload re-reads the backing file and logs a diff of what changed. It
// never mutates servers already under construction: per spec.md, a
// LocalXServerConfig is snapshotted from the store once, at controller
// construction time, and all setters are no-ops after start.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	before, err := toJSON(s)
	if err != nil {
		return err
	}

	next := map[string]map[string]any{}
	if _, err := toml.DecodeFile(s.path, &next); err != nil {
		return fmt.Errorf("config: reloading %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.doc = next
	s.mu.Unlock()

	after, err := toJSON(s)
	if err != nil {
		return err
	}
	patch, err := jsonpatch.CreatePatch(before, after)
	if err != nil {
		xlog.WithPrefix("config").WithError(err).Debug("could not compute reload diff")
		return nil
	}
	if len(patch) > 0 {
		xlog.WithPrefix("config").WithField("changes", len(patch)).Debug("config reloaded with changes")
	}
	return nil
}

func toJSON(s *Store) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.doc)
}

func (s *Store) get(section, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.doc[section]
	if !ok {
		return nil, false
	}
	v, ok := sec[key]
	return v, ok
}

// Int returns an integer config value, or def if the key is absent or
// not integer-shaped.
func (s *Store) Int(section, key string, def int64) int64 {
	v, ok := s.get(section, key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return def
	}
}

// String returns a string config value, or def if absent.
func (s *Store) String(section, key string, def string) string {
	v, ok := s.get(section, key)
	if !ok {
		return def
	}
	str, ok := v.(string)
	if !ok {
		return def
	}
	return str
}

// Bool returns a boolean config value, or def if absent.
func (s *Store) Bool(section, key string, def bool) bool {
	v, ok := s.get(section, key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Well-known keys from spec.md §6, plus the §4.K cgroup additions.
const (
	SectionLightDM = "LightDM"

	KeyMinimumDisplayNumber = "minimum-display-number"
	KeyRunDirectory         = "run-directory"
	KeyLogDirectory         = "log-directory"
	KeyBackupLogs           = "backup-logs"

	KeyCgroupParent           = "cgroup-parent"
	KeyCgroupCPUShares        = "cgroup-cpu-shares"
	KeyCgroupMemoryLimitBytes = "cgroup-memory-limit-bytes"
)

// Defaults mirror the historical LightDM defaults.
const (
	DefaultMinimumDisplayNumber = 0
	DefaultRunDirectory         = "/var/run/xseatd"
	DefaultLogDirectory         = "/var/log/xseatd"
	DefaultBackupLogs           = true
)
