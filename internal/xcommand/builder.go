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

// Package xcommand builds the X-server argv string, spec.md §4.D. It is
// a pure function of its inputs: given the same config, version and
// display number it always produces the same command (spec.md §8's
// "command determinism" property).
package xcommand

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/seatkeeper/xseatd/internal/xversion"
)

// Inputs gathers everything the builder needs, mirroring
// LocalXServerConfig plus the derived display number and authority path.
type Inputs struct {
	Command     string // e.g. "X" or "X -nopn"
	DisplayNum  uint32
	ConfigFile  string
	Layout      string
	XDGSeat     string
	AuthorityPath string // "" if none
	AllowTCP    bool
	XDMCPServer string
	XDMCPPort   uint16
	XDMCPKey    string
	VT          int // -1 = unassigned
	Background  string

	Version xversion.Version

	// ExtraArgs is the "subclass-contributed args" extension point of
	// spec.md §4.D, populated by a specialization's add_args hook.
	ExtraArgs []string
}

// ErrBinaryNotFound is returned by Build when the first word of
// Inputs.Command cannot be resolved against PATH.
var ErrBinaryNotFound = fmt.Errorf("xcommand: X server binary not found in PATH")

// lookPath is overridable in tests.
var lookPath = exec.LookPath

// Build resolves the absolute binary path and assembles the full
// argument list, in the exact order specified by spec.md §4.D (the X
// server parses ":N" positionally, so ordering is load-bearing).
func Build(in Inputs) (string, error) {
	fields := strings.Fields(in.Command)
	if len(fields) == 0 {
		return "", ErrBinaryNotFound
	}
	abs, err := lookPath(fields[0])
	if err != nil {
		return "", ErrBinaryNotFound
	}

	parts := []string{abs}
	parts = append(parts, fields[1:]...)
	parts = append(parts, fmt.Sprintf(":%d", in.DisplayNum))

	if in.ConfigFile != "" {
		parts = append(parts, "-config", in.ConfigFile)
	}
	if in.Layout != "" {
		parts = append(parts, "-layout", in.Layout)
	}
	if in.XDGSeat != "" {
		parts = append(parts, "-seat", in.XDGSeat)
	}
	if in.AuthorityPath != "" {
		parts = append(parts, "-auth", in.AuthorityPath)
	}

	switch {
	case in.XDMCPServer != "":
		if in.XDMCPPort != 0 {
			parts = append(parts, "-port", fmt.Sprintf("%d", in.XDMCPPort))
		}
		parts = append(parts, "-query", in.XDMCPServer)
		if in.XDMCPKey != "" {
			parts = append(parts, "-cookie", in.XDMCPKey)
		}
	case in.AllowTCP:
		// Legacy (< 1.17) X servers listened on TCP by default, so no
		// flag is emitted for them; an unknown version is conservatively
		// treated the same way (spec.md §9's resolved open question).
		if in.Version.Compare(1, 17) >= 0 {
			parts = append(parts, "-listen", "tcp")
		}
	default:
		parts = append(parts, "-nolisten", "tcp")
	}

	if in.VT >= 0 {
		parts = append(parts, fmt.Sprintf("vt%d", in.VT), "-novtswitch")
	}

	if in.Background != "" {
		parts = append(parts, "-background", in.Background)
	}

	parts = append(parts, in.ExtraArgs...)

	return strings.Join(parts, " "), nil
}
