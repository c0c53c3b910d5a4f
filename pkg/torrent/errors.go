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

import (
	"fmt"
	"unicode/utf8"

	"github.com/raklaptudirm/tormake/pkg/bencode"
)

// Kind classifies the errors this package returns, independent of the
// underlying Go error type, so callers can branch on errors.As without
// depending on which concrete type carried a given failure.
type Kind int

const (
	// KindIO covers any filesystem or read failure.
	KindIO Kind = iota
	// KindInvalidPath covers a target with no usable name, that is
	// neither a file nor a directory, or whose name is not representable.
	KindInvalidPath
	// KindInvalidTorrent covers malformed metainfo structure: missing
	// required keys or a field of the wrong variant.
	KindInvalidTorrent
	// KindMissingField covers a structurally present but semantically
	// required field absent at use time.
	KindMissingField
	// KindParse covers bencode tokenization/structural errors.
	KindParse
	// KindEncoding covers byte-to-text conversion failures for fields
	// that must be text.
	KindEncoding
	// KindAlreadyExists covers WriteFile called without Force against an
	// existing path.
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidPath:
		return "invalid path"
	case KindInvalidTorrent:
		return "invalid torrent"
	case KindMissingField:
		return "missing field"
	case KindParse:
		return "parse"
	case KindEncoding:
		return "encoding"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned throughout this package. It
// carries a Kind for programmatic branching plus an optional wrapped
// cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("torrent: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("torrent: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// textValue extracts field's string value from a bencode dictionary,
// requiring it to be valid UTF-8. Bencode byte strings carry no charset
// guarantee; the original implementation's field accessors run every
// human-facing string through String::from_utf8 and surface a dedicated
// encoding error on failure rather than silently keeping invalid bytes,
// so this mirrors that rather than Go's permissive string([]byte)
// conversion.
func textValue(v bencode.Value, field string) (string, error) {
	if v.Kind != bencode.KindBytes {
		return "", newErr(KindInvalidTorrent, field+" is not a string", nil)
	}
	if !utf8.Valid(v.Bytes) {
		return "", newErr(KindEncoding, field+" is not valid UTF-8", nil)
	}
	return string(v.Bytes), nil
}
