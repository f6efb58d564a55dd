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

package xversion

import "testing"

func probeWith(stderr string, exitOK bool, err error) *Probe {
	calls := 0
	p := &Probe{}
	p.run = func() (string, bool, error) {
		calls++
		return stderr, exitOK, err
	}
	return p
}

func TestVersionParsesStandardLine(t *testing.T) {
	p := probeWith("Some preamble\nX.Org X Server 1.20.13\nmore noise\n", true, nil)
	v := p.Version()
	if !v.OK {
		t.Fatalf("expected OK version, got %+v", v)
	}
	if v.Major != 1 || v.Minor != 20 {
		t.Fatalf("Major/Minor = %d.%d, want 1.20", v.Major, v.Minor)
	}
	if v.Raw != "1.20.13" {
		t.Fatalf("Raw = %q, want %q", v.Raw, "1.20.13")
	}
}

func TestVersionCachesAcrossCalls(t *testing.T) {
	calls := 0
	p := &Probe{}
	p.run = func() (string, bool, error) {
		calls++
		return "X.Org X Server 1.19.0\n", true, nil
	}
	p.Version()
	p.Version()
	if calls != 1 {
		t.Fatalf("run called %d times, want 1 (cached)", calls)
	}
}

func TestVersionNoMatchingLineIsUnknown(t *testing.T) {
	p := probeWith("nothing relevant here\n", true, nil)
	v := p.Version()
	if v.OK {
		t.Fatalf("expected unknown version, got %+v", v)
	}
}

func TestVersionExitFailureIsUnknown(t *testing.T) {
	p := probeWith("", false, nil)
	v := p.Version()
	if v.OK {
		t.Fatalf("expected unknown version on nonzero exit, got %+v", v)
	}
}

func TestCompareUnknownVersionIsAlwaysLess(t *testing.T) {
	var v Version
	if v.Compare(0, 0) >= 0 {
		t.Fatalf("unknown version must compare less than everything, got %d", v.Compare(0, 0))
	}
	if v.Compare(1, 17) >= 0 {
		t.Fatalf("unknown version must not satisfy version-gated >= checks")
	}
}

func TestCompareMajorMinorOrdering(t *testing.T) {
	v := Version{Major: 1, Minor: 17, OK: true}
	if v.Compare(1, 17) != 0 {
		t.Fatalf("Compare(1,17) = %d, want 0", v.Compare(1, 17))
	}
	if v.Compare(1, 16) <= 0 {
		t.Fatalf("Compare(1,16) should be > 0")
	}
	if v.Compare(1, 18) >= 0 {
		t.Fatalf("Compare(1,18) should be < 0")
	}
	if v.Compare(2, 0) >= 0 {
		t.Fatalf("Compare(2,0) should be < 0 (major differs)")
	}
}
