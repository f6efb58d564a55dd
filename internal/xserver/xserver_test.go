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

package xserver

import (
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/seatkeeper/xseatd/internal/displaynum"
	"github.com/seatkeeper/xseatd/internal/xversion"
)

type fakeVT struct {
	mu   sync.Mutex
	refs map[int]int
}

func newFakeVT() *fakeVT { return &fakeVT{refs: map[int]int{}} }

func (f *fakeVT) Ref(vt int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[vt]++
	return nil
}

func (f *fakeVT) Unref(vt int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[vt]--
	return nil
}

func newTestLocal(t *testing.T, registry *displaynum.Registry, cmd string) *Local {
	t.Helper()
	cfg := Config{Command: cmd, VT: -1}
	version := xversion.NewFixed(xversion.Version{Major: 1, Minor: 20, OK: true})
	return NewLocal(cfg, registry, newFakeVT(), version, t.TempDir(), t.TempDir(), false)
}

func TestStartMissingBinarySynthesizesStoppedOnce(t *testing.T) {
	registry := displaynum.New()
	l := newTestLocal(t, registry, "nonexistent-xyz-binary-does-not-exist")

	stopped := 0
	l.OnStopped = func() { stopped++ }

	err := l.Start(6000, nil)
	if err != ErrBinaryNotFound {
		t.Fatalf("err = %v, want ErrBinaryNotFound", err)
	}
	if stopped != 1 {
		t.Fatalf("stopped fired %d times, want 1", stopped)
	}
	if l.haveDisplay {
		t.Fatal("display number lease was not released on spawn failure")
	}

	// The leased number must be available again.
	n, err := registry.Acquire(6000)
	if err != nil || n != 6000 {
		t.Fatalf("Acquire after spawn failure = (%d, %v), want (6000, nil)", n, err)
	}
}

func TestReadyIdempotence(t *testing.T) {
	registry := displaynum.New()
	l := newTestLocal(t, registry, "sleep 100")
	defer l.Stop()

	started := 0
	l.OnStarted = func() { started++ }

	if err := l.Start(6100, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	l.handleSignal(int(syscall.SIGUSR1))
	l.handleSignal(int(syscall.SIGUSR1))
	l.handleSignal(int(syscall.SIGUSR1))

	if started != 1 {
		t.Fatalf("OnStarted fired %d times, want 1", started)
	}
	if !l.readyObserved {
		t.Fatal("readyObserved should be true")
	}
}

func TestIgnoresNonUSR1Signals(t *testing.T) {
	registry := displaynum.New()
	l := newTestLocal(t, registry, "sleep 100")
	defer l.Stop()

	started := 0
	l.OnStarted = func() { started++ }

	if err := l.Start(6200, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	l.handleSignal(int(syscall.SIGTERM))
	if started != 0 {
		t.Fatal("a non-SIGUSR1 signal must not trigger OnStarted")
	}
}

func TestStopIdempotentAndReleasesLeases(t *testing.T) {
	registry := displaynum.New()
	l := newTestLocal(t, registry, "sleep 100")

	var mu sync.Mutex
	stopped := 0
	done := make(chan struct{}, 1)
	l.OnStopped = func() {
		mu.Lock()
		stopped++
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}

	if err := l.Start(6300, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stopped event was not delivered within the deadline")
	}

	// A second, direct delivery (as could race the supervisor's own
	// wait-goroutine) must not release anything twice.
	l.handleStopped()

	mu.Lock()
	n := stopped
	mu.Unlock()
	if n != 1 {
		t.Fatalf("stopped fired %d times, want 1", n)
	}

	freed, err := registry.Acquire(6300)
	if err != nil || freed != 6300 {
		t.Fatalf("Acquire after stop = (%d, %v), want (6300, nil)", freed, err)
	}

	if err := l.Stop(); err != nil {
		t.Fatalf("Stop after already-stopped should be a no-op, got: %v", err)
	}
}

func TestFinalizeToleratesAlreadyStopped(t *testing.T) {
	registry := displaynum.New()
	l := newTestLocal(t, registry, "nonexistent-xyz-binary-does-not-exist")
	_ = l.Start(6400, nil)
	l.Finalize()
	l.Finalize()
}
