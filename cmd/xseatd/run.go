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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/gofrs/flock"
	"github.com/google/subcommands"

	"github.com/seatkeeper/xseatd/internal/config"
	"github.com/seatkeeper/xseatd/internal/displaynum"
	"github.com/seatkeeper/xseatd/internal/procsup"
	"github.com/seatkeeper/xseatd/internal/vtlease"
	"github.com/seatkeeper/xseatd/internal/xlog"
	"github.com/seatkeeper/xseatd/internal/xserver"
	"github.com/seatkeeper/xseatd/internal/xversion"
)

// runCommand supervises a single local X server for the lifetime of the
// process, SPEC_FULL.md §4.M. Seat enumeration, session brokering and
// the XDMCP/greeter protocols that a full display manager would add
// around this are explicitly out of scope (spec.md Non-goals).
type runCommand struct {
	configPath string
	command    string
	vt         int
	allowTCP   bool
	xdmcpHost  string
	seat       string
}

func (*runCommand) Name() string     { return "run" }
func (*runCommand) Synopsis() string { return "supervise a single local X server until signaled to stop" }
func (*runCommand) Usage() string {
	return "run [flags]\n  spawn and supervise one X server, per the LightDM.* config keys\n"
}

func (c *runCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to the TOML config file (optional)")
	f.StringVar(&c.command, "command", "X", "X server command line")
	f.IntVar(&c.vt, "vt", -1, "virtual terminal to take, or -1 for none")
	f.BoolVar(&c.allowTCP, "allow-tcp", false, "allow TCP connections to the X server")
	f.StringVar(&c.xdmcpHost, "xdmcp-server", "", "XDMCP host to query instead of running a local session")
	f.StringVar(&c.seat, "xdg-seat", "", "XDG seat identifier to pass to the X server")
}

func (c *runCommand) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		xlog.Log.WithError(err).Error("loading config")
		return subcommands.ExitFailure
	}

	runDir := cfg.String(config.SectionLightDM, config.KeyRunDirectory, config.DefaultRunDirectory)
	logDir := cfg.String(config.SectionLightDM, config.KeyLogDirectory, config.DefaultLogDirectory)
	backupLogs := cfg.Bool(config.SectionLightDM, config.KeyBackupLogs, config.DefaultBackupLogs)
	minimumDisplay := cfg.Int(config.SectionLightDM, config.KeyMinimumDisplayNumber, config.DefaultMinimumDisplayNumber)
	cgroupBudget := procsup.CgroupBudget{
		Parent:      cfg.String(config.SectionLightDM, config.KeyCgroupParent, ""),
		MemoryLimit: cfg.Int(config.SectionLightDM, config.KeyCgroupMemoryLimitBytes, 0),
	}
	if shares := cfg.Int(config.SectionLightDM, config.KeyCgroupCPUShares, 0); shares > 0 {
		cgroupBudget.CPUShares = uint64(shares)
	}

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		xlog.Log.WithError(err).Errorf("creating run directory %s", runDir)
		return subcommands.ExitFailure
	}

	lockPath := filepath.Join(runDir, "xseatd.lock")
	instanceLock := flock.New(lockPath)
	locked, err := instanceLock.TryLock()
	if err != nil {
		xlog.Log.WithError(err).Error("acquiring single-instance lock")
		return subcommands.ExitFailure
	}
	if !locked {
		xlog.Log.Errorf("another xseatd instance already holds %s", lockPath)
		return subcommands.ExitFailure
	}
	defer instanceLock.Unlock()

	vtAllocator, err := vtlease.NewLogindAllocator()
	if err != nil {
		xlog.Log.WithError(err).Warn("logind unavailable, VT leasing will be a local no-op")
		vtAllocator = nil
	}
	var allocator vtlease.Allocator = vtlease.NullAllocator{}
	if vtAllocator != nil {
		allocator = vtAllocator
		defer vtAllocator.Close()
	}

	local := xserver.NewLocal(xserver.Config{
		Command:     c.command,
		XDGSeat:     c.seat,
		AllowTCP:    c.allowTCP,
		XDMCPServer: c.xdmcpHost,
		XDMCPPort:   177,
		VT:          c.vt,
		Cgroup:      cgroupBudget,
	}, displaynum.New(), allocator, xversion.New(), runDir, logDir, backupLogs)

	stopped := make(chan struct{})
	local.OnStarted = func() { xlog.Log.Info("X server is ready") }
	local.OnStopped = func() { close(stopped) }

	if err := local.Start(uint32(minimumDisplay), nil); err != nil {
		xlog.Log.WithError(err).Error("failed to start X server")
		return subcommands.ExitFailure
	}
	defer local.Finalize()

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		xlog.Log.WithError(err).Debug("systemd readiness notification failed (likely not running under systemd)")
	}
	xlog.Log.Infof("supervising X server on display :%d", local.DisplayNumber())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		xlog.Log.Infof("received %s, stopping X server", sig)
		if err := local.Stop(); err != nil {
			xlog.Log.WithError(err).Warn("failed to signal X server to stop")
		}
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			xlog.Log.Warn("X server did not stop within grace period")
		}
	case <-stopped:
		xlog.Log.Warn("X server exited unexpectedly")
		return subcommands.ExitFailure
	case <-ctx.Done():
		return subcommands.ExitFailure
	}

	fmt.Fprintln(os.Stderr, "xseatd: shut down")
	return subcommands.ExitSuccess
}
