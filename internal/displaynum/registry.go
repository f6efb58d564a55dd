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

// Package displaynum implements the display-number registry, spec.md
// §4.A: leasing unique ":N" X-server display numbers across this
// process and any concurrent foreign X servers already holding
// /tmp/.X<N>-lock files.
package displaynum

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/btree"
	"golang.org/x/sys/unix"
)

// lockFileFmt is the well-known X server lock-file naming convention;
// read-only here, per spec.md §6 — never created or removed by xseatd.
const lockFileFmt = "/tmp/.X%d-lock"

type numberItem uint32

func (a numberItem) Less(b btree.Item) bool {
	return a < b.(numberItem)
}

// Registry is the in-process lease table (display_numbers_in_use in
// spec.md §3). It is safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	tree *btree.BTree

	// probeLock, when set, is consulted instead of statting /tmp; used by
	// tests to simulate foreign lock files without touching the real
	// filesystem.
	probeLock func(n uint32) (bool, error)
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{tree: btree.New(8)}
}

// Acquire returns the smallest display number >= minimum that is not
// already leased in-process and not held by a live foreign X server,
// then leases it. Scan order is strictly ascending (spec.md §4.A).
func (r *Registry) Acquire(minimum uint32) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for n := minimum; ; n++ {
		if n > minimum+1<<20 {
			// Defensive bound: a runaway scan means something is very
			// wrong with the lock-file probe, not that displays ran out.
			return 0, fmt.Errorf("displaynum: no free display number found above %d", minimum)
		}
		inUse, err := r.inUse(n)
		if err != nil {
			return 0, err
		}
		if inUse {
			continue
		}
		r.tree.ReplaceOrInsert(numberItem(n))
		return n, nil
	}
}

// Release removes a display number from the in-process lease table. It
// is a no-op if n was not leased (spec.md §4.A), matching the idempotent
// release requirement of spec.md §8.
func (r *Registry) Release(n uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree.Delete(numberItem(n))
}

// InUse returns the display numbers currently leased by this registry,
// in ascending order. It reflects only in-process leases, not foreign
// lock files; intended for introspection (e.g. a "displays" CLI
// subcommand), not for deciding whether a number is free.
func (r *Registry) InUse() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint32, 0, r.tree.Len())
	r.tree.Ascend(func(item btree.Item) bool {
		out = append(out, uint32(item.(numberItem)))
		return true
	})
	return out
}

// ProbeRange reports which display numbers in [min, max] currently have
// a live foreign lock file, independent of any particular Registry's
// in-process leases. Read-only diagnostic; never used to make leasing
// decisions.
func ProbeRange(min, max uint32) []uint32 {
	var out []uint32
	for n := min; n <= max; n++ {
		if lockFileHoldsLiveProcess(n) {
			out = append(out, n)
		}
	}
	return out
}

func (r *Registry) inUse(n uint32) (bool, error) {
	if r.tree.Has(numberItem(n)) {
		return true, nil
	}
	if r.probeLock != nil {
		return r.probeLock(n)
	}
	return lockFileHoldsLiveProcess(n), nil
}

// lockFileHoldsLiveProcess implements the second half of spec.md §4.A's
// "in use" definition: the lock file exists and either can't be parsed,
// or parses to a PID that is still alive. A stale lock (parses cleanly
// to a PID that kill(pid, 0) reports ESRCH for) does not block reuse.
func lockFileHoldsLiveProcess(n uint32) bool {
	path := fmt.Sprintf(lockFileFmt, n)
	data, err := os.ReadFile(path)
	if err != nil {
		// File doesn't exist (or unreadable for another reason): treat
		// "doesn't exist" as free, anything else as conservatively in use.
		return !os.IsNotExist(err)
	}
	return lockFileHoldsLiveProcessData(data)
}

// lockFileHoldsLiveProcessData parses already-read lock-file contents and
// reports whether they point at a still-live process. Split out from
// lockFileHoldsLiveProcess so tests can exercise the parsing/kill logic
// against a temp file without touching the real /tmp/.X<N>-lock names.
func lockFileHoldsLiveProcessData(data []byte) bool {
	pid, err := strconv.Atoi(strings.TrimSpace(firstLine(string(data))))
	if err != nil {
		// Unparsable contents: can't prove it's stale, so treat as in use.
		return true
	}
	if pid < 0 {
		return true
	}

	err = unix.Kill(pid, 0)
	if err == unix.ESRCH {
		return false
	}
	// Either alive (err == nil) or some other error (e.g. EPERM, which
	// still proves the process exists) — in both cases treat as live.
	return true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
