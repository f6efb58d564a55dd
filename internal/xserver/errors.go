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
	"errors"

	"github.com/seatkeeper/xseatd/internal/xcommand"
)

// The six error kinds of spec.md §7. BinaryNotFound and SpawnFailed are
// returned from Start and also drive a synthesized stopped event, per
// the propagation policy. The remaining four are never returned or
// logged by this package: AuthorityDirFailed/AuthorityWriteFailed are
// swallowed as warnings by the xauth package itself, VersionProbeFailed
// is swallowed as "unknown version" by xversion, and
// ProcessExitedBeforeReady is never distinguished from a normal stop.
var (
	ErrBinaryNotFound           = xcommand.ErrBinaryNotFound
	ErrSpawnFailed              = errors.New("xserver: failed to spawn X server process")
	ErrAuthorityWriteFailed     = errors.New("xserver: failed to write X authority file")
	ErrAuthorityDirFailed       = errors.New("xserver: failed to create X authority directory")
	ErrVersionProbeFailed       = errors.New("xserver: X server version probe failed")
	ErrProcessExitedBeforeReady = errors.New("xserver: process exited before signaling ready")
)
