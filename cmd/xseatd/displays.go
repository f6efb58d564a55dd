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

	"github.com/google/subcommands"

	"github.com/seatkeeper/xseatd/internal/displaynum"
)

type displaysCommand struct {
	min uint
	max uint
}

func (*displaysCommand) Name() string     { return "displays" }
func (*displaysCommand) Synopsis() string { return "list display numbers currently held by a live X server" }
func (*displaysCommand) Usage() string {
	return "displays [-min N] [-max N]\n  scan /tmp/.X<N>-lock for N in [min, max] and report live ones\n"
}

func (c *displaysCommand) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.min, "min", 0, "lowest display number to probe")
	f.UintVar(&c.max, "max", 63, "highest display number to probe")
}

func (c *displaysCommand) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	live := displaynum.ProbeRange(uint32(c.min), uint32(c.max))
	if len(live) == 0 {
		fmt.Println("no live X servers found")
		return subcommands.ExitSuccess
	}
	for _, n := range live {
		fmt.Printf(":%d\n", n)
	}
	return subcommands.ExitSuccess
}
