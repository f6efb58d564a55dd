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

package vtlease

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	logindDest = "org.freedesktop.login1"
	logindPath = "/org/freedesktop/login1"
)

// LogindAllocator is an Allocator backed by systemd-logind over the
// system D-Bus, SPEC_FULL.md §4.J. It does not perform VT switches
// itself (that remains the kernel/X server's job); it keeps a local
// per-VT reference count. It does not refuse a second Ref of a VT that
// is already referenced.
type LogindAllocator struct {
	conn *dbus.Conn

	mu    sync.Mutex
	refs  map[int]int
}

// NewLogindAllocator connects to the system bus. Callers should fall
// back to NullAllocator when this returns an error (e.g. no logind
// present, common in containers and test environments).
func NewLogindAllocator() (*LogindAllocator, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("vtlease: connecting to system bus: %w", err)
	}
	return &LogindAllocator{conn: conn, refs: map[int]int{}}, nil
}

// Ref increments the reference count for vt. On the first reference it
// calls logind's ListSeats; the reply and any error are discarded and
// nothing is logged, so Ref always succeeds.
func (a *LogindAllocator) Ref(vt int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.refs[vt] == 0 {
		obj := a.conn.Object(logindDest, dbus.ObjectPath(logindPath))
		var seatPaths []dbus.ObjectPath
		// Best-effort: listing seats lets us note a conflict, but a
		// failure here must not block the lease (logind may be absent
		// or restricted by policy in minimal environments).
		_ = obj.Call("org.freedesktop.login1.Manager.ListSeats", 0).Store(&seatPaths)
	}
	a.refs[vt]++
	return nil
}

// Unref decrements the reference count for vt.
func (a *LogindAllocator) Unref(vt int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refs[vt] > 0 {
		a.refs[vt]--
	}
	return nil
}

// Close releases the D-Bus connection.
func (a *LogindAllocator) Close() error {
	return a.conn.Close()
}

// NullAllocator is a no-op Allocator for headless environments (tests,
// containers without logind) where VT leasing has no external party to
// coordinate with.
type NullAllocator struct{}

func (NullAllocator) Ref(int) error   { return nil }
func (NullAllocator) Unref(int) error { return nil }
