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

// Package xlog centralizes the structured logger used across xseatd.
//
// Every component that needs a prefix (spec.md's "logging-prefix hook",
// e.g. "XServer 0: ...") gets one via WithPrefix rather than formatting
// the prefix into the message itself, so the prefix survives as a
// structured field for anyone consuming JSON output.
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Tests may swap its level/output.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("XSEATD_DEBUG") != "" {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// WithPrefix returns an entry carrying prefix as a structured field,
// matching the "XServer <display_number>: " prefix convention of the
// original daemon's logger interface.
func WithPrefix(prefix string) *logrus.Entry {
	return Log.WithField("prefix", prefix)
}
