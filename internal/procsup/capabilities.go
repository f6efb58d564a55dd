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
	"github.com/syndtr/gocapability/capability"

	"github.com/seatkeeper/xseatd/internal/xlog"
)

// PreflightCapabilities is the advisory check of spec.md §4.L: it warns,
// but never blocks, if the supervisor's own effective set lacks the
// capabilities an X server taking a VT typically needs. wantVT should be
// true whenever the upcoming spawn will request a VT (vt<N> -novtswitch
// in the built command).
func PreflightCapabilities(wantVT bool) {
	if !wantVT {
		return
	}
	log := xlog.WithPrefix("procsup")

	caps, err := capability.NewPid2(0)
	if err != nil {
		log.WithError(err).Debug("could not inspect own capability set")
		return
	}
	if err := caps.Load(); err != nil {
		log.WithError(err).Debug("could not load own capability set")
		return
	}

	for _, want := range []capability.Cap{capability.CAP_SYS_TTY_CONFIG, capability.CAP_SYS_ADMIN} {
		if !caps.Get(capability.EFFECTIVE, want) {
			log.Warnf("missing capability %s needed for VT switching; the X server may fail its own privilege checks", want)
		}
	}
}
