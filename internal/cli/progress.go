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

package cli

import (
	"os"
	"runtime"

	"github.com/schollz/progressbar/v3"

	"github.com/raklaptudirm/tormake/pkg/torrent"
)

// barSink implements torrent.ProgressSink on top of schollz/progressbar,
// safe to call Inc from multiple hasher/verifier workers concurrently
// (the underlying bar guards its own state).
type barSink struct {
	bar   *progressbar.ProgressBar
	jobs  int
	label string
}

func newProgress(label string, quiet bool, jobs int) *barSink {
	var bar *progressbar.ProgressBar
	if quiet {
		bar = progressbar.NewOptions(-1, progressbar.OptionSetVisibility(false))
	} else {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	return &barSink{bar: bar, jobs: jobs, label: label}
}

func (b *barSink) SetTotal(n int) { b.bar.ChangeMax(n) }

//nolint:errcheck // progress updates are best-effort
func (b *barSink) Inc(delta int) { b.bar.Add(delta) }

//nolint:errcheck
func (b *barSink) Finish() { b.bar.Finish() }

func (b *barSink) Jobs() int {
	if b.jobs > 0 {
		return b.jobs
	}
	return runtime.GOMAXPROCS(0)
}

var _ torrent.ProgressSink = (*barSink)(nil)
