// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package torrent

// Logger is the abstract collaborator this package reports diagnostics
// through. The core never formats for a terminal or a file directly; it
// only calls Info/Error, leaving presentation to the caller.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// ProgressSink is the abstract collaborator Hasher and Verifier report
// progress through. It must be safe to call Inc concurrently from
// multiple worker goroutines; it is the only cross-goroutine mutable
// collaborator in the hashing/verification pipeline.
type ProgressSink interface {
	SetTotal(n int)
	Inc(delta int)
	Finish()

	// Jobs returns the caller's preferred worker-pool size, 0 meaning
	// "implementation default" (typically GOMAXPROCS).
	Jobs() int
}

// nopLogger and nopProgress satisfy Logger/ProgressSink without doing
// anything, for callers (and tests) that have no presentation layer.
type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// NopLogger is a Logger that discards everything.
var NopLogger Logger = nopLogger{}

type nopProgress struct{}

func (nopProgress) SetTotal(int)  {}
func (nopProgress) Inc(int)       {}
func (nopProgress) Finish()       {}
func (nopProgress) Jobs() int     { return 0 }

// NopProgress is a ProgressSink that discards everything and requests the
// implementation default worker count.
var NopProgress ProgressSink = nopProgress{}
