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
	"bytes"
	"os"
)

// FailureReport is the result of Verify: the pieces and files that did not
// match, with the subset of files that were missing or size-mismatched
// (and therefore never re-hashed at all) broken out separately.
type FailureReport struct {
	FailedPieces  map[int]struct{}
	FailedFiles   map[int]struct{}
	KnownBadFiles map[int]struct{}
}

// OK reports whether verification found no discrepancies at all.
func (r FailureReport) OK() bool {
	return len(r.FailedPieces) == 0 && len(r.FailedFiles) == 0
}

func newFailureReport() *FailureReport {
	return &FailureReport{
		FailedPieces:  make(map[int]struct{}),
		FailedFiles:   make(map[int]struct{}),
		KnownBadFiles: make(map[int]struct{}),
	}
}

// Verify re-hashes root against the piece hashes recorded in info and
// reports any mismatches. It never writes to root and is idempotent: two
// runs over the same unmodified content and info always agree.
//
// The file list is reconstructed from info's own recorded order, not a
// fresh walk of root (§4.5's "no re-walk" rule) — a target that has been
// reorganized on disk but not renamed still verifies against the order
// the torrent was created with.
func Verify(root string, info InfoBlock, jobs int, sink ProgressSink) (*FailureReport, error) {
	files := info.FileEntries()
	plan := Plan(files, info.PieceLength)
	report := newFailureReport()

	// pre-check pass: stat every file once, mark missing/size-mismatched
	// files as known bad and drop every piece touching them from the
	// hash pass entirely.
	sizes := make([]int64, len(files))
	bad := make([]bool, len(files))
	for i, f := range files {
		path := filePath(root, f)
		st, err := os.Stat(path)
		switch {
		case err != nil:
			bad[i] = true
			report.KnownBadFiles[i] = struct{}{}
			report.FailedFiles[i] = struct{}{}
		case st.Size() != f.Length:
			bad[i] = true
			sizes[i] = st.Size()
			report.KnownBadFiles[i] = struct{}{}
			report.FailedFiles[i] = struct{}{}
		default:
			sizes[i] = st.Size()
		}
	}

	var toHash PieceMap
	hashIndex := make([]int, 0, len(plan))
	for i, spans := range plan {
		known := false
		for _, span := range spans {
			if bad[span.FileIndex] {
				known = true
				report.FailedPieces[i] = struct{}{}
				for _, s := range spans {
					report.FailedFiles[s.FileIndex] = struct{}{}
				}
				break
			}
		}
		if !known {
			toHash = append(toHash, spans)
			hashIndex = append(hashIndex, i)
		}
	}

	if len(toHash) == 0 {
		sink.SetTotal(0)
		sink.Finish()
		return report, nil
	}

	digests, err := HashPieces(root, files, toHash, info.PieceLength, jobs, sink)
	if err != nil {
		return nil, err
	}

	for k, pieceIdx := range hashIndex {
		got := digests[20*k : 20*k+20]
		want := info.Pieces[20*pieceIdx : 20*pieceIdx+20]
		if !bytes.Equal(got, want) {
			report.FailedPieces[pieceIdx] = struct{}{}
			for _, span := range plan[pieceIdx] {
				report.FailedFiles[span.FileIndex] = struct{}{}
			}
		}
	}

	return report, nil
}
