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

// FileSpan is one (file_index, file_offset, length) triple contributing
// bytes to a piece.
type FileSpan struct {
	FileIndex  int
	FileOffset int64
	Length     int64
}

// PieceMap maps each piece index to the ordered file spans it is made of.
type PieceMap [][]FileSpan

// PieceCount returns ceil(total / pieceLength), the number of pieces total
// bytes of length total split into at pieceLength, with the degenerate
// case total == 0 yielding zero pieces.
func PieceCount(total, pieceLength int64) int {
	if total == 0 {
		return 0
	}
	return int((total + pieceLength - 1) / pieceLength)
}

// Plan computes the mapping from piece index to the file spans composing
// it, walking files left to right and greedily filling each piece to
// pieceLength before starting the next. It is a pure function of its
// arguments: the same files and pieceLength always produce the same map.
func Plan(files []FileEntry, pieceLength int64) PieceMap {
	var total int64
	for _, f := range files {
		total += f.Length
	}

	count := PieceCount(total, pieceLength)
	if count == 0 {
		return PieceMap{}
	}

	pm := make(PieceMap, count)
	pieceIdx := 0
	unfilled := pieceLength

	for fi, f := range files {
		remaining := f.Length
		offset := int64(0)
		for remaining > 0 {
			if unfilled == 0 {
				pieceIdx++
				unfilled = pieceLength
			}
			use := remaining
			if unfilled < use {
				use = unfilled
			}
			pm[pieceIdx] = append(pm[pieceIdx], FileSpan{
				FileIndex:  fi,
				FileOffset: offset,
				Length:     use,
			})
			offset += use
			remaining -= use
			unfilled -= use
		}
	}

	return pm
}

// pieceLengthTable maps a total-size threshold to the recommended piece
// length exponent for targets up to that size, mirroring the doubling
// curve real-world torrent creators use: 32 KiB up to 50 MiB, doubling
// per size band, up to 2^24 (16 MiB) for content above 16 GiB.
var pieceLengthTable = []struct {
	maxSize  int64
	exponent uint
}{
	{50 << 20, 15},   // <= 50MiB: 32KiB
	{150 << 20, 16},  // <= 150MiB: 64KiB
	{350 << 20, 17},  // <= 350MiB: 128KiB
	{512 << 20, 18},  // <= 512MiB: 256KiB
	{1 << 30, 19},    // <= 1GiB: 512KiB
	{2 << 30, 20},    // <= 2GiB: 1MiB
	{4 << 30, 21},    // <= 4GiB: 2MiB
	{8 << 30, 22},    // <= 8GiB: 4MiB
	{16 << 30, 23},   // <= 16GiB: 8MiB
	{32 << 30, 24},   // <= 32GiB: 16MiB
}

// RecommendedPieceLength suggests a piece-length exponent (piece length =
// 2^exponent) for totalSize bytes of content, advisory only: the CLI surfaces it when the caller did not
// pass an explicit piece-length exponent. It never overrides an explicit
// request, keeping piece-size auto-selection a presentation-layer
// convenience rather than a core behavior.
func RecommendedPieceLength(totalSize int64) uint {
	for _, row := range pieceLengthTable {
		if totalSize <= row.maxSize {
			return row.exponent
		}
	}
	return 24
}
