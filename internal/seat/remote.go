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

package seat

import "github.com/seatkeeper/xseatd/internal/xauth"

// RemoteXServer is the DisplayServer for an XDMCP session: a handle onto
// an X server the client already runs on its own host. xseatd never
// spawns or owns the process behind it, only the bookkeeping (host,
// display number, authority) needed to address it.
type RemoteXServer struct {
	host          string
	displayNumber uint32
	authority     xauth.Record
}

// NewRemoteXServer returns a handle addressing the X server a client is
// already running at host:displayNumber, authenticated with authority.
func NewRemoteXServer(host string, displayNumber uint32, authority xauth.Record) *RemoteXServer {
	return &RemoteXServer{host: host, displayNumber: displayNumber, authority: authority}
}

// Host returns the client host this server was reached at.
func (r *RemoteXServer) Host() string { return r.host }

// DisplayNumber returns the display number on Host.
func (r *RemoteXServer) DisplayNumber() uint32 { return r.displayNumber }

// Authority returns the X authority record used to address the server.
func (r *RemoteXServer) Authority() xauth.Record { return r.authority }

// Stop is a no-op. xseatd has no process to kill: the client's X server
// runs and exits on its own, outside this daemon's supervision.
func (r *RemoteXServer) Stop() error { return nil }

// GetVT always reports -1: a remote X server has no virtual terminal on
// this host.
func (r *RemoteXServer) GetVT() int { return -1 }
