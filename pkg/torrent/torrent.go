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
	"crypto/sha1" //nolint:gosec // see hash.go
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/raklaptudirm/tormake/pkg/bencode"
	"github.com/raklaptudirm/tormake/pkg/walk"
)

// Torrent is the top-level metainfo value: everything outside info plus
// the info block itself and the info_hash derived from it. Once built by
// Create or Decode, it is never mutated.
type Torrent struct {
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate *int64
	Encoding     string
	Hash         string // nonstandard pass-through hex info_hash, "" if absent

	Info     InfoBlock
	InfoHash [20]byte

	infoRaw []byte // exact bytes info_hash was computed over
}

// CreateOptions configures Create.
type CreateOptions struct {
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate *int64
	Encoding     string
	Private      bool
	PieceLength  int64
	WalkMode     walk.Mode
	Jobs         int

	Logger   Logger
	Progress ProgressSink
}

// Create builds a Torrent from a filesystem target: the Walker enumerates
// root under opts.WalkMode, the planner maps the resulting files onto
// pieces of opts.PieceLength bytes, the Hasher computes their digests, and
// the info_hash is taken over the freshly encoded info dictionary.
func Create(root string, opts CreateOptions) (*Torrent, error) {
	if opts.PieceLength <= 0 {
		return nil, newErr(KindInvalidPath, "piece length must be positive", nil)
	}
	logger, sink := loggerOrNop(opts.Logger), progressOrNop(opts.Progress)

	name, entries, err := walk.Walk(root, opts.WalkMode)
	if err != nil {
		return nil, newErr(KindIO, fmt.Sprintf("walking %s", root), err)
	}
	if name == "" {
		return nil, newErr(KindInvalidPath, fmt.Sprintf("%s has no usable name", root), nil)
	}
	logger.Infof("enumerated %d file(s) under %s", len(entries), root)

	files := make([]FileEntry, len(entries))
	for i, e := range entries {
		files[i] = FileEntry{Length: e.Length, Path: e.Path}
	}

	plan := Plan(files, opts.PieceLength)
	pieces, err := HashPieces(root, files, plan, opts.PieceLength, opts.Jobs, sink)
	if err != nil {
		return nil, err
	}

	info := InfoBlock{
		Name:        name,
		PieceLength: opts.PieceLength,
		Pieces:      pieces,
		Private:     opts.Private,
	}
	if len(files) == 1 && len(files[0].Path) == 0 {
		info.Length = files[0].Length
	} else {
		info.Files = files
	}

	infoRaw := info.encode()
	hash := sha1.Sum(infoRaw) //nolint:gosec // see hash.go

	t := &Torrent{
		Announce:     opts.Announce,
		AnnounceList: opts.AnnounceList,
		Comment:      opts.Comment,
		CreatedBy:    opts.CreatedBy,
		CreationDate: opts.CreationDate,
		Encoding:     opts.Encoding,
		Info:         info,
		InfoHash:     hash,
		infoRaw:      infoRaw,
	}

	// backward compatibility: if only announce-list was supplied, mirror
	// its first tier's first URL into the single-URL announce field.
	if t.Announce == "" && len(t.AnnounceList) > 0 && len(t.AnnounceList[0]) > 0 {
		t.Announce = t.AnnounceList[0][0]
	}

	return t, nil
}

// Decode parses a bencoded metainfo byte stream into a Torrent. info_hash
// is computed over the exact source byte span that decoded as info, never
// by re-encoding the parsed tree, so nonstandard-but-valid key orderings
// in the input do not silently change the hash.
func Decode(data []byte) (*Torrent, error) {
	root, _, err := bencode.ParseValue(data)
	if err != nil {
		return nil, newErr(KindParse, "decoding metainfo", err)
	}
	if root.Kind != bencode.KindDict {
		return nil, newErr(KindInvalidTorrent, "metainfo is not a dictionary", nil)
	}

	infoVal, ok := root.Get("info")
	if !ok {
		return nil, newErr(KindMissingField, "info", nil)
	}
	info, err := infoFromValue(infoVal)
	if err != nil {
		return nil, err
	}

	infoRaw := data[infoVal.Start:infoVal.End]
	hash := sha1.Sum(infoRaw) //nolint:gosec // see hash.go

	t := &Torrent{
		Info:     info,
		InfoHash: hash,
		infoRaw:  append([]byte(nil), infoRaw...),
	}

	if v, ok := root.Get("announce"); ok {
		if t.Announce, err = textValue(v, "announce"); err != nil {
			return nil, err
		}
	}
	if v, ok := root.Get("announce-list"); ok && v.Kind == bencode.KindList {
		for _, tier := range v.List {
			if tier.Kind != bencode.KindList {
				continue
			}
			var urls []string
			for _, u := range tier.List {
				url, err := textValue(u, "announce-list entry")
				if err != nil {
					return nil, err
				}
				urls = append(urls, url)
			}
			t.AnnounceList = append(t.AnnounceList, urls)
		}
	}
	if v, ok := root.Get("comment"); ok {
		if t.Comment, err = textValue(v, "comment"); err != nil {
			return nil, err
		}
	}
	if v, ok := root.Get("created by"); ok {
		if t.CreatedBy, err = textValue(v, "created by"); err != nil {
			return nil, err
		}
	}
	if v, ok := root.Get("creation date"); ok && v.Kind == bencode.KindInt {
		d := v.Int
		t.CreationDate = &d
	}
	if v, ok := root.Get("encoding"); ok {
		if t.Encoding, err = textValue(v, "encoding"); err != nil {
			return nil, err
		}
	}
	if v, ok := root.Get("hash"); ok {
		if t.Hash, err = textValue(v, "hash"); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Encode returns the canonical bencoded metainfo byte stream for t. Field
// order is written out explicitly rather than via the generic
// struct-tag encoder: the nonstandard hash field, when present, must be
// written after info even though "hash" < "info" in byte order, which a
// pure ascending-key-sort encoder could not produce.
func (t *Torrent) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte('d')

	writeBytesField(&buf, "announce", t.Announce)
	writeAnnounceList(&buf, t.AnnounceList)
	writeBytesField(&buf, "comment", t.Comment)
	writeBytesField(&buf, "created by", t.CreatedBy)
	if t.CreationDate != nil {
		writeIntField(&buf, "creation date", *t.CreationDate)
	}
	writeBytesField(&buf, "encoding", t.Encoding)

	writeKey(&buf, "info")
	buf.Write(t.infoRawOrEncode())

	writeBytesField(&buf, "hash", t.Hash)

	buf.WriteByte('e')
	return buf.Bytes()
}

func (t *Torrent) infoRawOrEncode() []byte {
	if t.infoRaw != nil {
		return t.infoRaw
	}
	return t.Info.encode()
}

func writeKey(buf *bytes.Buffer, key string) {
	buf.WriteString(strconv.Itoa(len(key)))
	buf.WriteByte(':')
	buf.WriteString(key)
}

func writeBytesField(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	writeKey(buf, key)
	buf.WriteString(strconv.Itoa(len(value)))
	buf.WriteByte(':')
	buf.WriteString(value)
}

func writeIntField(buf *bytes.Buffer, key string, value int64) {
	writeKey(buf, key)
	buf.WriteByte('i')
	buf.WriteString(strconv.FormatInt(value, 10))
	buf.WriteByte('e')
}

func writeAnnounceList(buf *bytes.Buffer, tiers [][]string) {
	if len(tiers) == 0 {
		return
	}
	writeKey(buf, "announce-list")
	buf.WriteByte('l')
	for _, tier := range tiers {
		buf.WriteByte('l')
		for _, url := range tier {
			buf.WriteString(strconv.Itoa(len(url)))
			buf.WriteByte(':')
			buf.WriteString(url)
		}
		buf.WriteByte('e')
	}
	buf.WriteByte('e')
}

// WriteFile writes t's encoding to path, refusing to overwrite an
// existing file unless force is true. The write is atomic: output is
// staged under a uniquely named temp file in the same directory and
// renamed into place, so a failed or interrupted write never leaves a
// truncated file at path.
func WriteFile(t *Torrent, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return newErr(KindAlreadyExists, path, nil)
		}
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, t.Encode(), 0o644); err != nil {
		return newErr(KindIO, fmt.Sprintf("writing %s", tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newErr(KindIO, fmt.Sprintf("renaming %s to %s", tmp, path), err)
	}
	return nil
}

// InfoHashHex returns the info_hash as lowercase hex, the same encoding
// the nonstandard Hash field uses.
func (t *Torrent) InfoHashHex() string {
	return hex.EncodeToString(t.InfoHash[:])
}

func loggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger
	}
	return l
}

func progressOrNop(p ProgressSink) ProgressSink {
	if p == nil {
		return NopProgress
	}
	return p
}
