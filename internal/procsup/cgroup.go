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

package procsup

import (
	"fmt"

	"github.com/containerd/cgroups"
	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/seatkeeper/xseatd/internal/xlog"
)

// CgroupBudget is the operator-configured per-display resource budget of
// spec.md §4.K. A zero value for either field leaves that control
// unset.
type CgroupBudget struct {
	Parent      string
	CPUShares   uint64
	MemoryLimit int64
}

// PlaceInCgroup joins pid into a dedicated "<budget.Parent>/x-<display>"
// cgroup, with CPU shares and a memory limit if configured.
// It is additive: a zero CgroupBudget is the caller's signal to skip
// this step entirely, and any failure here is logged and swallowed
// rather than failing the display (spec.md §7's tolerant policy).
func PlaceInCgroup(pid int, display uint32, budget CgroupBudget) {
	if budget.Parent == "" {
		return
	}
	log := xlog.WithPrefix(fmt.Sprintf("XServer %d", display))

	path := cgroups.StaticPath(fmt.Sprintf("%s/x-%d", budget.Parent, display))
	res := &specs.LinuxResources{}
	if budget.CPUShares > 0 {
		shares := budget.CPUShares
		res.CPU = &specs.LinuxCPU{Shares: &shares}
	}
	if budget.MemoryLimit > 0 {
		limit := budget.MemoryLimit
		res.Memory = &specs.LinuxMemory{Limit: &limit}
	}

	cg, err := cgroups.New(cgroups.V1, path, res)
	if err != nil {
		log.WithError(err).Warn("could not create cgroup for X server")
		return
	}
	if err := cg.Add(cgroups.Process{Pid: pid}); err != nil {
		log.WithError(err).Warn("could not place X server into its cgroup")
	}
}
