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

// Package xserver implements the local X-server controller, spec.md
// §4.G: it orchestrates the display-number registry, VT lease,
// authority writer, command builder, version probe and process
// supervisor into the start/ready/stop lifecycle of a single local X
// server.
package xserver

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seatkeeper/xseatd/internal/displaynum"
	"github.com/seatkeeper/xseatd/internal/procsup"
	"github.com/seatkeeper/xseatd/internal/vtlease"
	"github.com/seatkeeper/xseatd/internal/xauth"
	"github.com/seatkeeper/xseatd/internal/xcommand"
	"github.com/seatkeeper/xseatd/internal/xlog"
	"github.com/seatkeeper/xseatd/internal/xversion"
)

// Config is the per-server configuration, the union of
// LocalXServerConfig fields from spec.md §3 plus the XDMCP-query
// extension of §4.D.
type Config struct {
	Command     string
	ConfigFile  string
	Layout      string
	XDGSeat     string
	AllowTCP    bool
	Background  string
	XDMCPServer string
	XDMCPPort   uint16
	XDMCPKey    string
	VT          int // -1 = unassigned; vt<N> is passed for N >= 0, a VT lease is held only for N > 0
	Cgroup      procsup.CgroupBudget

	// ExtraArgs is the add_args extension point of spec.md §4.D/§9.
	ExtraArgs []string
}

// Local is the DisplayServer capability set of spec.md §4.G/§9,
// implemented as a concrete type rather than an interface+subclass: the
// add_args extension point of the original is the Config.ExtraArgs
// field instead of a virtual method. get_run_function and get_log_stdout
// have no counterpart here.
type Local struct {
	mu sync.Mutex

	cfg        Config
	displays   *displaynum.Registry
	vt         *vtlease.Lease
	version    *xversion.Probe
	runDir     string
	logDir     string
	backupLogs bool

	displayNum    uint32
	haveDisplay   bool
	auth          *xauth.Writer
	authRecord    xauth.Record
	sup           *procsup.Supervisor
	started       bool
	readyObserved bool
	stoppedFired  bool
	log           *logrus.Entry

	// OnStarted fires the first time SIGUSR1 arrives (spec.md §4.G
	// "Ready"). OnStopped fires exactly once per Start, whether the
	// process crashed, exited, or was asked to stop, or the spawn itself
	// failed (spec.md §5's documented re-entrant case).
	OnStarted func()
	OnStopped func()
}

// NewLocal returns a Local bound to its collaborators. displays and
// vtAllocator are typically process-wide singletons shared across every
// Local on the host; version is typically shared too, since "X
// -version" output does not vary per display.
func NewLocal(cfg Config, displays *displaynum.Registry, vtAllocator vtlease.Allocator, version *xversion.Probe, runDir, logDir string, backupLogs bool) *Local {
	// Snapshot the caller's config by value: per spec.md §9, a server's
	// configuration is fixed at construction time, and mutating the
	// struct the caller passed in afterward must not reach back into an
	// already-started server.
	snapshot := deepcopy.Copy(cfg).(Config)
	return &Local{
		cfg:        snapshot,
		displays:   displays,
		vt:         vtlease.New(vtAllocator),
		version:    version,
		runDir:     runDir,
		logDir:     logDir,
		backupLogs: backupLogs,
		displayNum: ^uint32(0),
	}
}

// DisplayNumber returns the leased display number. Only meaningful once
// Start has succeeded.
func (l *Local) DisplayNumber() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.displayNum
}

// GetVT returns the currently leased VT, or -1 if none.
func (l *Local) GetVT() int {
	return l.vt.VT()
}

// Start acquires a display number at or above minimumDisplay, leases a
// VT if configured, writes authRecord (if non-nil) to the authority
// file, builds the server command line, and spawns it — spec.md §4.G
// steps 1-8.
func (l *Local) Start(minimumDisplay uint32, authRecord xauth.Record) error {
	n, err := l.displays.Acquire(minimumDisplay)
	if err != nil {
		return fmt.Errorf("xserver: acquiring display number: %w", err)
	}

	log := xlog.WithPrefix(fmt.Sprintf("XServer %d", n))
	l.mu.Lock()
	l.displayNum = n
	l.haveDisplay = true
	l.readyObserved = false
	l.stoppedFired = false
	l.log = log
	l.mu.Unlock()

	if l.cfg.VT > 0 {
		if err := l.vt.Set(l.cfg.VT); err != nil {
			log.WithError(err).Warn("failed to acquire VT lease")
		}
	}

	address := fmt.Sprintf(":%d", n)
	authPath := ""
	if authRecord != nil {
		w := xauth.New(l.runDir)
		w.EnsureWritten(authRecord, address, log)
		authPath = w.Path()
		l.mu.Lock()
		l.auth = w
		l.authRecord = authRecord
		l.mu.Unlock()
	}

	procsup.PreflightCapabilities(l.cfg.VT >= 0)

	cmd, err := xcommand.Build(xcommand.Inputs{
		Command:       l.cfg.Command,
		DisplayNum:    n,
		ConfigFile:    l.cfg.ConfigFile,
		Layout:        l.cfg.Layout,
		XDGSeat:       l.cfg.XDGSeat,
		AuthorityPath: authPath,
		AllowTCP:      l.cfg.AllowTCP,
		XDMCPServer:   l.cfg.XDMCPServer,
		XDMCPPort:     l.cfg.XDMCPPort,
		XDMCPKey:      l.cfg.XDMCPKey,
		VT:            l.cfg.VT,
		Background:    l.cfg.Background,
		Version:       l.version.Version(),
		ExtraArgs:     l.cfg.ExtraArgs,
	})
	if err != nil {
		log.WithError(err).Warn("X server binary not found")
		l.handleStopped()
		return ErrBinaryNotFound
	}

	logPath := filepath.Join(l.logDir, fmt.Sprintf("x-%d.log", n))
	logMode := procsup.LogAppend
	if l.backupLogs {
		logMode = procsup.LogBackupAndTruncate
	}
	env := procsup.ChildEnv(func(k string) (string, bool) { return os.LookupEnv(k) })

	sup := procsup.New()
	sup.OnSignal = l.handleSignal
	sup.OnStopped = l.handleStopped

	l.mu.Lock()
	l.sup = sup
	l.mu.Unlock()

	if err := sup.Start(cmd, env, logPath, logMode); err != nil {
		log.WithError(err).Warn("failed to spawn X server")
		l.handleStopped()
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	procsup.PlaceInCgroup(sup.Pid(), n, l.cfg.Cgroup)

	l.mu.Lock()
	l.started = true
	l.mu.Unlock()
	return nil
}

// handleSignal is the got_signal event sink. Only SIGUSR1 carries
// meaning here; anything else is ignored (spec.md §4.G "Ready").
func (l *Local) handleSignal(signum int) {
	if signum != int(syscall.SIGUSR1) {
		return
	}
	l.mu.Lock()
	if l.readyObserved {
		l.mu.Unlock()
		return
	}
	l.readyObserved = true
	cb := l.OnStarted
	l.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Stop forwards a stop request to the process supervisor. It is a
// no-op if the server was never started or has already stopped.
func (l *Local) Stop() error {
	l.mu.Lock()
	sup := l.sup
	started := l.started
	l.mu.Unlock()
	if !started || sup == nil {
		return nil
	}
	return sup.Stop()
}

// handleStopped is the stopped event sink, and also what Start calls
// directly on a synchronous spawn failure (spec.md §5). It releases the
// VT lease, display number and authority file concurrently via
// errgroup, exactly once per Start (spec.md §8's lease-symmetry and
// idempotent-stop properties).
func (l *Local) handleStopped() {
	l.mu.Lock()
	if l.stoppedFired {
		l.mu.Unlock()
		return
	}
	l.stoppedFired = true
	l.started = false

	vt := l.vt
	displays := l.displays
	displayNum := l.displayNum
	haveDisplay := l.haveDisplay
	l.haveDisplay = false
	auth := l.auth
	authRecord := l.authRecord
	l.authRecord = nil
	log := l.log
	cb := l.OnStopped
	l.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		if err := vt.Release(); err != nil && log != nil {
			log.WithError(err).Warn("failed to release VT lease")
		}
		return nil
	})
	g.Go(func() error {
		if haveDisplay {
			displays.Release(displayNum)
		}
		return nil
	})
	g.Go(func() error {
		if auth != nil && authRecord != nil && log != nil {
			auth.Remove(log)
		}
		return nil
	})
	g.Wait() //nolint:errcheck // the three goroutines above never return an error

	if cb != nil {
		cb()
	}
}

// Finalize disconnects supervisor event handlers, drops the process
// handle, and releases the VT lease if still held. It tolerates being
// called whether or not stopped already fired (spec.md §4.G
// "Finalization").
func (l *Local) Finalize() {
	l.mu.Lock()
	sup := l.sup
	l.sup = nil
	l.cfg.Background = ""
	l.mu.Unlock()

	if sup != nil {
		sup.OnSignal = nil
		sup.OnStopped = nil
	}
	l.vt.Release()
}
