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

// Package seat implements the XDMCP-session seat specialization of
// spec.md §4.H, and the DisplayServer capability set that the
// DisplayServer/XServer/XServerLocal class hierarchy of the original
// collapses to (spec.md §9): once constructed, callers drive either a
// local or an XDMCP-remote X server through the same narrow interface.
package seat

import (
	"sync"

	"github.com/seatkeeper/xseatd/internal/xauth"
)

// DisplayServer is the capability set common to every display-server
// variant: stop it, and ask which VT it owns. Starting a display server
// is necessarily variant-specific (a local server needs a minimum
// display number and an authority record; an XDMCP-remote one derives
// both from the session), so it is not part of this interface — a
// DisplayServer value returned from CreateDisplayServer is already
// running.
type DisplayServer interface {
	Stop() error
	GetVT() int
}

// Session is the external XDMCP-session collaborator contract named in
// spec.md §6: accessors for the session type, host InetAddress, display
// number and authority record.
type Session interface {
	Type() string
	HostAddress() string
	DisplayNumber() uint32
	Authority() xauth.Record
}

// XDMCP is the seat specialization of spec.md §4.H. It maintains at
// most one cached remote X-server handle for its entire lifetime
// (spec.md §8's "XDMCP seat uniqueness" property): XDMCP clients
// reconnect to the same remote server on logout rather than getting a
// fresh one each time.
type XDMCP struct {
	mu      sync.Mutex
	remote  DisplayServer
	factory func(Session) (DisplayServer, error)
}

// NewXDMCP returns a seat that constructs its (at most one) remote
// X-server handle via factory.
func NewXDMCP(factory func(Session) (DisplayServer, error)) *XDMCP {
	return &XDMCP{factory: factory}
}

// CreateDisplayServer implements spec.md §4.H's create_display_server
// override. ok is false whenever the request is "not applicable": the
// session isn't an X session, or a remote server already exists from an
// earlier call. A factory error is not cached, so a later session may
// retry construction.
func (s *XDMCP) CreateDisplayServer(session Session) (server DisplayServer, ok bool, err error) {
	if session.Type() != "x" {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remote != nil {
		return nil, false, nil
	}

	ds, err := s.factory(session)
	if err != nil {
		return nil, false, err
	}
	s.remote = ds
	return ds, true, nil
}
