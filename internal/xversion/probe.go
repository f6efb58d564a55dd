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

// Package xversion implements the one-shot, cached X-server version
// probe, spec.md §4.E.
package xversion

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/seatkeeper/xseatd/internal/xlog"
)

const versionPrefix = "X.Org X Server "

// Version is a parsed "major.minor.patch" result. OK is false when no
// version could be determined; per spec.md §9's resolved open question,
// callers must treat !OK as "unknown", never as major=0, minor=0.
type Version struct {
	Raw   string
	Major uint
	Minor uint
	OK    bool
}

// Probe lazily runs and caches "X -version" for the lifetime of the
// process (the process-wide xorg_version cache of spec.md §3).
type Probe struct {
	once   sync.Once
	result Version

	// run is overridable in tests; defaults to actually exec'ing "X -version".
	run func() (stderr string, exitOK bool, err error)
}

// New returns a Probe that will exec the real "X -version" on first use.
func New() *Probe {
	return &Probe{run: runXVersion}
}

// NewFixed returns a Probe whose Version() always returns v without
// ever running an external command. Intended for other packages' tests
// that need a deterministic, injectable version and have no reason to
// reach into this package's internals.
func NewFixed(v Version) *Probe {
	p := &Probe{}
	p.once.Do(func() { p.result = v })
	return p
}

func runXVersion() (string, bool, error) {
	cmd := exec.Command("X", "-version")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return stderr.String(), false, nil
		}
		return "", false, err
	}
	return stderr.String(), true, nil
}

// Version returns the cached probe result, running the probe at most
// once. A transient spawn error (e.g. fork momentarily failing under
// load) is retried a couple of times with a short backoff before giving
// up and caching "unknown" — grounded on the same cenkalti/backoff
// constant-backoff idiom the supervisor uses to wait out process exit.
func (p *Probe) Version() Version {
	p.once.Do(func() {
		p.result = p.probeWithRetry()
	})
	return p.result
}

func (p *Probe) probeWithRetry() Version {
	log := xlog.WithPrefix("xversion")

	var stderr string
	var exitOK bool
	op := func() error {
		out, ok, err := p.run()
		stderr, exitOK = out, ok
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	b := backoff.WithContext(backoff.NewConstantBackOff(50*time.Millisecond), ctx)
	if err := backoff.Retry(op, b); err != nil {
		log.WithError(err).Warn("could not run X -version")
		return Version{}
	}
	if !exitOK {
		log.Warn("X -version exited non-zero")
		return Version{}
	}

	raw, ok := findVersionLine(stderr)
	if !ok {
		log.Warn("X -version produced no recognizable version line")
		return Version{}
	}

	major, minor, ok := parseMajorMinor(raw)
	if !ok {
		log.Warnf("could not parse X server version %q", raw)
		return Version{Raw: raw}
	}
	return Version{Raw: raw, Major: major, Minor: minor, OK: true}
}

// findVersionLine fixes the original daemon's defect (spec.md §9): it
// returns ok=false, never a dereferenced-nil string, when no line
// begins with the expected prefix.
func findVersionLine(stderrText string) (string, bool) {
	for _, line := range strings.Split(stderrText, "\n") {
		if strings.HasPrefix(line, versionPrefix) {
			return strings.TrimPrefix(line, versionPrefix), true
		}
	}
	return "", false
}

func parseMajorMinor(raw string) (major, minor uint, ok bool) {
	tokens := strings.SplitN(raw, ".", 3)
	if len(tokens) < 2 {
		return 0, 0, false
	}
	maj, err1 := strconv.Atoi(tokens[0])
	min, err2 := strconv.Atoi(tokens[1])
	if err1 != nil || err2 != nil || maj < 0 || min < 0 {
		return 0, 0, false
	}
	return uint(maj), uint(min), true
}

// Compare returns the sign of (detected - requested), comparing major
// first and minor only when majors match, per spec.md §4.E. An unknown
// version compares as "less than everything", so version-gated callers
// that check `Compare(...) >= 0` correctly omit the gated behavior.
func (v Version) Compare(major, minor uint) int {
	if !v.OK {
		return -1
	}
	if v.Major != major {
		return sign(int(v.Major) - int(major))
	}
	return sign(int(v.Minor) - int(minor))
}

func sign(d int) int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}
