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
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/raklaptudirm/tormake/pkg/torrent"
)

// stdLogger implements torrent.Logger on top of the standard library's
// log package, the idiom this pack's own torrent-handling code
// (martymcquaid-omnicloud2024/internal/torrent) reaches for rather than a
// structured logging library.
type stdLogger struct {
	quiet  bool
	errLog *log.Logger
	infLog *log.Logger
}

func newLogger(quiet bool) *stdLogger {
	return &stdLogger{
		quiet:  quiet,
		errLog: log.New(os.Stderr, "", 0),
		infLog: log.New(os.Stdout, "", 0),
	}
}

func (l *stdLogger) Infof(format string, args ...any) {
	if l.quiet {
		return
	}
	l.infLog.Printf(format, args...)
}

func (l *stdLogger) Errorf(format string, args ...any) {
	l.errLog.Println(color.RedString(format, args...))
}

var _ torrent.Logger = (*stdLogger)(nil)
