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

// RemoteXDMCPFactory builds the factory function NewXDMCP needs. An
// XDMCP session's display server is never spawned by xseatd: the client
// is already running its own X server and reached it via the XDMCP
// query that produced this session, so the factory only wraps the
// session's own host/display-number/authority into a RemoteXServer
// handle.
func RemoteXDMCPFactory() func(Session) (DisplayServer, error) {
	return func(session Session) (DisplayServer, error) {
		return NewRemoteXServer(session.HostAddress(), session.DisplayNumber(), session.Authority()), nil
	}
}
