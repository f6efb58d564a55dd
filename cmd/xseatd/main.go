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

// Command xseatd is the process entrypoint of SPEC_FULL.md §4.M: a
// single-instance daemon that supervises one local X server per
// invocation, plus diagnostic subcommands.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

// buildVersion is overridden at link time with -ldflags
// "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&runCommand{}, "")
	subcommands.Register(&versionCommand{}, "")
	subcommands.Register(&displaysCommand{}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
