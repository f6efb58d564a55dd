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

// Package vtlease implements the VT reference holder, spec.md §4.B: a
// thin lease over an external VT allocator so that a server owning
// virtual terminal k keeps it pinned for its lifetime.
package vtlease

// Allocator is the external VT allocator collaborator contract named in
// spec.md §6: "VT allocator: ref(vt), unref(vt)". xseatd does not decide
// VT allocation policy; it only needs to tell the allocator when a VT
// becomes owned and when it is released.
type Allocator interface {
	Ref(vt int) error
	Unref(vt int) error
}

// Lease tracks a single VTLease as defined in spec.md §3:
// { vt: int|none, held: bool }, with the invariant held ⇔ vt > 0.
type Lease struct {
	allocator Allocator
	vt        int
	held      bool
}

// New returns an unheld lease bound to the given allocator.
func New(allocator Allocator) *Lease {
	return &Lease{allocator: allocator, vt: -1}
}

// VT returns the current VT number, or -1 if none is assigned.
func (l *Lease) VT() int {
	return l.vt
}

// Held reports whether a VT is currently leased.
func (l *Lease) Held() bool {
	return l.held
}

// Set releases any currently-held VT, then, if v > 0, acquires a lease
// on v. Setting v <= 0 simply records "unassigned" and holds nothing,
// matching spec.md §4.B exactly.
func (l *Lease) Set(v int) error {
	if err := l.Release(); err != nil {
		return err
	}
	if v <= 0 {
		l.vt = -1
		return nil
	}
	l.vt = v
	if err := l.allocator.Ref(v); err != nil {
		l.vt = -1
		return err
	}
	l.held = true
	return nil
}

// Release releases the current lease if held. Safe to call repeatedly.
func (l *Lease) Release() error {
	if !l.held {
		return nil
	}
	err := l.allocator.Unref(l.vt)
	l.held = false
	l.vt = -1
	return err
}
