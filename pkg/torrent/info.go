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
	"github.com/raklaptudirm/tormake/pkg/bencode"
)

// InfoBlock is the content-describing dictionary a torrent's info_hash is
// computed over. Exactly one of Files and Length is meaningful, selected
// by whether the torrent is multi-file.
type InfoBlock struct {
	Name        string
	PieceLength int64
	Pieces      []byte // concatenated 20-byte SHA-1 digests
	Private     bool

	Files  []FileEntry // multi-file form
	Length int64       // single-file form
}

// MultiFile reports whether this InfoBlock uses the multi-file form (a
// non-nil Files list), whatever the number of files in that list.
func (i InfoBlock) MultiFile() bool {
	return i.Files != nil
}

// bencodeInfo is the wire shape of the info dictionary. Key order on
// encode falls naturally in ascending byte order (files, length, name,
// piece length, pieces, private), which happens to match the canonical
// order this format requires, so the generic struct-tag encoder needs no
// special casing here (unlike the top-level Torrent dictionary, see
// torrent.go).
// Length is a pointer, not a plain int64: a single-file torrent whose
// file happens to be zero bytes long must still emit "length" (it is the
// only thing distinguishing the single-file form from multi-file), which
// a value-typed omitempty field could not express since zero and absent
// would look identical.
type bencodeInfo struct {
	Files       []bencodeFile `bencode:"files,omitempty"`
	Length      *int64        `bencode:"length,omitempty"`
	Name        string        `bencode:"name"`
	PieceLength int64         `bencode:"piece length"`
	Pieces      []byte        `bencode:"pieces"`
	Private     bool          `bencode:"private,omitempty"`
}

func (i InfoBlock) toBencode() bencodeInfo {
	b := bencodeInfo{
		Name:        i.Name,
		PieceLength: i.PieceLength,
		Pieces:      i.Pieces,
		Private:     i.Private,
	}
	if i.MultiFile() {
		b.Files = make([]bencodeFile, len(i.Files))
		for idx, f := range i.Files {
			b.Files[idx] = f.toBencode()
		}
	} else {
		length := i.Length
		b.Length = &length
	}
	return b
}

// encode returns the canonical bencoded form of the info dictionary. This
// is the exact byte slice info_hash is computed over when an InfoBlock is
// built by Create; when a Torrent is parsed instead, the source byte span
// recorded by the decoder is used in its place (see Decode in torrent.go).
func (i InfoBlock) encode() []byte {
	b, err := bencode.Marshal(i.toBencode())
	if err != nil {
		// toBencode only ever produces plain structs, slices and
		// strings, all of which are supported by Marshal.
		panic(err)
	}
	return b
}

// infoFromValue validates and converts a decoded bencode.Value into an
// InfoBlock, enforcing the required-field and exactly-one-of-files-or-
// length invariants from the wire format.
func infoFromValue(v bencode.Value) (InfoBlock, error) {
	if v.Kind != bencode.KindDict {
		return InfoBlock{}, newErr(KindInvalidTorrent, "info is not a dictionary", nil)
	}

	var info InfoBlock

	name, ok := v.Get("name")
	if !ok {
		return InfoBlock{}, newErr(KindMissingField, "info.name", nil)
	}
	nameStr, err := textValue(name, "info.name")
	if err != nil {
		return InfoBlock{}, err
	}
	info.Name = nameStr

	pieceLength, ok := v.Get("piece length")
	if !ok || pieceLength.Kind != bencode.KindInt {
		return InfoBlock{}, newErr(KindMissingField, "info.piece length", nil)
	}
	info.PieceLength = pieceLength.Int

	pieces, ok := v.Get("pieces")
	if !ok || pieces.Kind != bencode.KindBytes {
		return InfoBlock{}, newErr(KindMissingField, "info.pieces", nil)
	}
	if len(pieces.Bytes)%20 != 0 {
		return InfoBlock{}, newErr(KindInvalidTorrent, "info.pieces length not a multiple of 20", nil)
	}
	info.Pieces = pieces.Bytes

	if private, ok := v.Get("private"); ok {
		if private.Kind != bencode.KindInt {
			return InfoBlock{}, newErr(KindInvalidTorrent, "info.private is not an integer", nil)
		}
		info.Private = private.Int != 0
	}

	files, hasFiles := v.Get("files")
	length, hasLength := v.Get("length")

	switch {
	case hasFiles && hasLength:
		return InfoBlock{}, newErr(KindInvalidTorrent, "info has both files and length", nil)
	case hasFiles:
		if files.Kind != bencode.KindList {
			return InfoBlock{}, newErr(KindInvalidTorrent, "info.files is not a list", nil)
		}
		info.Files = make([]FileEntry, 0, len(files.List))
		for _, item := range files.List {
			fe, err := fileEntryFromValue(item)
			if err != nil {
				return InfoBlock{}, err
			}
			info.Files = append(info.Files, fe)
		}
	case hasLength:
		if length.Kind != bencode.KindInt {
			return InfoBlock{}, newErr(KindInvalidTorrent, "info.length is not an integer", nil)
		}
		info.Length = length.Int
	default:
		return InfoBlock{}, newErr(KindMissingField, "info has neither files nor length", nil)
	}

	return info, nil
}

func fileEntryFromValue(v bencode.Value) (FileEntry, error) {
	if v.Kind != bencode.KindDict {
		return FileEntry{}, newErr(KindInvalidTorrent, "file entry is not a dictionary", nil)
	}
	length, ok := v.Get("length")
	if !ok || length.Kind != bencode.KindInt {
		return FileEntry{}, newErr(KindMissingField, "file.length", nil)
	}
	pathVal, ok := v.Get("path")
	if !ok || pathVal.Kind != bencode.KindList {
		return FileEntry{}, newErr(KindMissingField, "file.path", nil)
	}
	path := make([]string, 0, len(pathVal.List))
	for _, seg := range pathVal.List {
		segStr, err := textValue(seg, "file.path segment")
		if err != nil {
			return FileEntry{}, err
		}
		path = append(path, segStr)
	}
	return FileEntry{Length: length.Int, Path: path}, nil
}

// TotalLength returns the sum of all file lengths described by the info
// block, regardless of single- or multi-file form.
func (i InfoBlock) TotalLength() int64 {
	if !i.MultiFile() {
		return i.Length
	}
	var total int64
	for _, f := range i.Files {
		total += f.Length
	}
	return total
}

// FileEntries returns the info block's files in on-disk order as a flat
// FileEntry slice, synthesizing the single implicit entry for the
// single-file form.
func (i InfoBlock) FileEntries() []FileEntry {
	if i.MultiFile() {
		return i.Files
	}
	return []FileEntry{{Length: i.Length}}
}
