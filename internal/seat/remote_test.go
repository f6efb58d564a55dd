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

import "testing"

func TestRemoteXServerStopIsNoop(t *testing.T) {
	r := NewRemoteXServer("192.168.1.5", 12, nil)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}
}

func TestRemoteXServerHasNoVT(t *testing.T) {
	r := NewRemoteXServer("192.168.1.5", 12, nil)
	if got := r.GetVT(); got != -1 {
		t.Errorf("GetVT() = %d, want -1", got)
	}
}

func TestRemoteXDMCPFactoryDoesNotSpawnAProcess(t *testing.T) {
	factory := RemoteXDMCPFactory()
	ds, err := factory(fakeSession{sessionType: "x", host: "10.0.0.9"})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	remote, ok := ds.(*RemoteXServer)
	if !ok {
		t.Fatalf("factory returned %T, want *RemoteXServer", ds)
	}
	if remote.Host() != "10.0.0.9" {
		t.Errorf("Host() = %q, want 10.0.0.9", remote.Host())
	}
	if remote.GetVT() != -1 {
		t.Errorf("GetVT() = %d, want -1 (no local VT for a remote server)", remote.GetVT())
	}
}
